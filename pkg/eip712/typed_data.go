package eip712

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"
)

const SupportPrimaryType = "Support"

var typedDataTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	SupportPrimaryType: {
		{Name: "recipient", Type: "address"},
		{Name: "amount", Type: "uint256"},
	},
}

// TypedData builds the eth_signTypedData_v4 payload for a Support message.
// Wallets signing it produce signatures accepted under SchemeTypedData.
func (h *DomainHasher) TypedData(recipient common.Address, amount *uint256.Int) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: SupportPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              h.domain.Name,
			Version:           h.domain.Version,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(h.domain.ChainID)),
			VerifyingContract: h.domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"recipient": recipient.Hex(),
			"amount":    amount.ToBig(),
		},
	}
}
