package eip712

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/emb-protocol/issuance/pkg/sign"
)

// Authorizer produces mint authorizations. It is the off-chain counterpart
// of Verifier and is used by tooling and tests.
type Authorizer struct {
	signer sign.Signer
	hasher *DomainHasher
	scheme Scheme
}

func NewAuthorizer(signer sign.Signer, hasher *DomainHasher, scheme Scheme) *Authorizer {
	if scheme == "" {
		scheme = SchemeTypedData
	}
	return &Authorizer{signer: signer, hasher: hasher, scheme: scheme}
}

func (a *Authorizer) Address() common.Address { return a.signer.Address() }

// Digest returns the EIP-712 digest for a Support(recipient, amount) message.
func (a *Authorizer) Digest(recipient common.Address, amount *uint256.Int) common.Hash {
	return TypedDataDigest(a.hasher.Separator(), HashStruct(SupportTypeHash, recipient, amount))
}

// Authorize signs a Support(recipient, amount) message under the hasher's domain.
func (a *Authorizer) Authorize(recipient common.Address, amount *uint256.Int) (sign.Signature, error) {
	digest := a.Digest(recipient, amount)
	sig, err := a.signer.Sign(a.scheme.SigningHash(digest))
	if err != nil {
		return nil, fmt.Errorf("failed to sign authorization: %w", err)
	}
	return sig, nil
}
