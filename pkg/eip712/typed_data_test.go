package eip712

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedData_MatchesWalletHashing(t *testing.T) {
	authorizer, verifier, hasher := setupAuthority(t, SchemeTypedData)
	amount, err := uint256.FromDecimal("1000000000000000000000")
	require.NoError(t, err)

	td := hasher.TypedData(testRecipient, amount)

	domainHash, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	require.NoError(t, err)
	assert.Equal(t, hasher.Separator().Bytes(), []byte(domainHash))

	digest, _, err := apitypes.TypedDataAndHash(td)
	require.NoError(t, err)
	assert.Equal(t, authorizer.Digest(testRecipient, amount).Bytes(), digest)

	// a wallet signing the payload is accepted by the verifier
	key, err := crypto.HexToECDSA(authorityKeyHex[2:])
	require.NoError(t, err)
	sig, err := crypto.Sign(digest, key)
	require.NoError(t, err)

	recovered, err := verifier.Verify(hasher.Separator(), SupportTypeHash, testRecipient, amount, sig)
	require.NoError(t, err)
	assert.Equal(t, authorizer.Address(), recovered)
}

func TestTypedData_JSONRoundTrip(t *testing.T) {
	hasher := NewDomainHasher(Domain{
		Name:              DefaultName,
		Version:           DefaultVersion,
		ChainID:           big.NewInt(31337),
		VerifyingContract: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	})
	td := hasher.TypedData(testRecipient, uint256.NewInt(100))

	raw, err := json.Marshal(td)
	require.NoError(t, err)

	var decoded apitypes.TypedData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, SupportPrimaryType, decoded.PrimaryType)

	want, _, err := apitypes.TypedDataAndHash(td)
	require.NoError(t, err)
	got, _, err := apitypes.TypedDataAndHash(decoded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
