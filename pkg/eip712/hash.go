package eip712

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// SupportTypeDescriptor is the typed-data struct a mint authorization signs.
const SupportTypeDescriptor = "Support(address recipient,uint256 amount)"

// SupportTypeHash is keccak256 of SupportTypeDescriptor.
var SupportTypeHash = crypto.Keccak256Hash([]byte(SupportTypeDescriptor))

// typeHash, recipient, amount
var supportArguments = abi.Arguments{
	{Type: bytes32Type},
	{Type: addressType},
	{Type: uint256Type},
}

// HashStruct returns keccak256(typeHash ‖ pad32(recipient) ‖ uint256(amount)).
// amount must not be nil.
func HashStruct(typeHash common.Hash, recipient common.Address, amount *uint256.Int) common.Hash {
	encoded := mustPack(supportArguments, [32]byte(typeHash), recipient, amount.ToBig())
	return crypto.Keccak256Hash(encoded)
}

// TypedDataDigest returns keccak256(0x19 ‖ 0x01 ‖ separator ‖ structHash).
func TypedDataDigest(separator DomainSeparator, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, separator[:], structHash[:])
}
