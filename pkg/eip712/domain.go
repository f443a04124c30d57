package eip712

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	DefaultName    = "Protocol"
	DefaultVersion = "v1"

	DomainTypeDescriptor = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
)

// DomainTypeHash is keccak256 of DomainTypeDescriptor.
var DomainTypeHash = crypto.Keccak256Hash([]byte(DomainTypeDescriptor))

var (
	bytes32Type = mustNewType("bytes32")
	uint256Type = mustNewType("uint256")
	addressType = mustNewType("address")

	// typeHash, keccak(name), keccak(version), chainId, verifyingContract
	domainArguments = abi.Arguments{
		{Type: bytes32Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
		{Type: uint256Type},
		{Type: addressType},
	}
)

// DomainSeparator binds signatures to one deployment of the protocol.
type DomainSeparator [32]byte

func (d DomainSeparator) Bytes() []byte  { return d[:] }
func (d DomainSeparator) Hex() string    { return hexutil.Encode(d[:]) }
func (d DomainSeparator) String() string { return d.Hex() }

// Domain identifies a deployment: protocol name and version, the chain it
// runs on and the address of the verifying instance.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// ComputeDomainSeparator returns
// keccak256(typeHash ‖ keccak256(name) ‖ keccak256(version) ‖ chainId ‖ verifyingContract)
// with every field ABI-encoded as a 32-byte word.
//
// chainID must be non-nil, non-negative and fit in 256 bits; anything else
// panics.
func ComputeDomainSeparator(name, version string, chainID *big.Int, verifyingContract common.Address) DomainSeparator {
	if chainID == nil || chainID.Sign() < 0 || chainID.BitLen() > 256 {
		panic(fmt.Sprintf("eip712: chain id %v is not a uint256", chainID))
	}

	encoded := mustPack(domainArguments,
		[32]byte(DomainTypeHash),
		[32]byte(crypto.Keccak256Hash([]byte(name))),
		[32]byte(crypto.Keccak256Hash([]byte(version))),
		chainID,
		verifyingContract,
	)
	return DomainSeparator(crypto.Keccak256Hash(encoded))
}

// Separator computes the separator of d.
func (d Domain) Separator() DomainSeparator {
	return ComputeDomainSeparator(d.Name, d.Version, d.ChainID, d.VerifyingContract)
}

// DomainHasher computes a domain separator once and serves it for the
// lifetime of the deployment. It is safe for concurrent use.
type DomainHasher struct {
	domain    Domain
	separator DomainSeparator
}

func NewDomainHasher(domain Domain) *DomainHasher {
	if domain.ChainID != nil {
		domain.ChainID = new(big.Int).Set(domain.ChainID)
	}
	return &DomainHasher{
		domain:    domain,
		separator: domain.Separator(),
	}
}

// Domain returns a copy of the hashed domain.
func (h *DomainHasher) Domain() Domain {
	d := h.domain
	d.ChainID = new(big.Int).Set(h.domain.ChainID)
	return d
}

func (h *DomainHasher) Separator() DomainSeparator {
	return h.separator
}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("eip712: abi type %s: %v", t, err))
	}
	return typ
}

// mustPack ABI-encodes static values. A failure means a caller passed a value
// of the wrong Go type, which is a programming error.
func mustPack(args abi.Arguments, values ...any) []byte {
	encoded, err := args.Pack(values...)
	if err != nil {
		panic(fmt.Sprintf("eip712: encoding failed: %v", err))
	}
	return encoded
}
