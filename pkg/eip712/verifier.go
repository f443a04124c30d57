package eip712

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/emb-protocol/issuance/pkg/sign"
)

// Verifier checks mint authorizations against a single registered signer.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	signer common.Address
	scheme Scheme
}

func NewVerifier(signer common.Address, scheme Scheme) *Verifier {
	if scheme == "" {
		scheme = SchemeTypedData
	}
	return &Verifier{signer: signer, scheme: scheme}
}

func (v *Verifier) Signer() common.Address { return v.signer }

func (v *Verifier) Scheme() Scheme { return v.scheme }

// Verify recomputes the struct hash from recipient and amount, derives the
// digest under separator and recovers the address that produced signature.
// The recovered address is returned only when it equals the registered
// signer. A signature made over any other recipient, amount, domain or type
// recovers a different address and fails with ErrUnauthorizedSigner.
func (v *Verifier) Verify(separator DomainSeparator, typeHash common.Hash, recipient common.Address, amount *uint256.Int, signature []byte) (common.Address, error) {
	digest := TypedDataDigest(separator, HashStruct(typeHash, recipient, amount))

	recovered, err := sign.RecoverAddressFromHash(v.scheme.SigningHash(digest), signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrMalformedSignature, err)
	}
	if recovered != v.signer {
		return common.Address{}, &SignerMismatchError{Expected: v.signer, Recovered: recovered}
	}
	return recovered, nil
}
