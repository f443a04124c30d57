package sign

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func setupSigner(t *testing.T) *EthereumSigner {
	t.Helper()
	signer, err := NewEthereumSigner(testPrivKey)
	require.NoError(t, err)
	return signer
}

func TestEthereumSigner(t *testing.T) {
	t.Run("with 0x prefix", func(t *testing.T) {
		signer, err := NewEthereumSigner(testPrivKey)
		require.NoError(t, err)
		assert.Equal(t, testAddress, signer.Address().Hex())
	})

	t.Run("without 0x prefix", func(t *testing.T) {
		signer, err := NewEthereumSigner(strings.TrimPrefix(testPrivKey, "0x"))
		require.NoError(t, err)
		assert.Equal(t, testAddress, signer.Address().Hex())
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := NewEthereumSigner("0xinvalidkey")
		assert.Error(t, err)
	})

	t.Run("v uses 27/28", func(t *testing.T) {
		signer := setupSigner(t)
		sig, err := signer.Sign(ethcrypto.Keccak256([]byte("mint")))
		require.NoError(t, err)
		require.Len(t, sig, SignatureLength)
		assert.Contains(t, []byte{27, 28}, sig[64])
	})
}

func TestSignAndRecover(t *testing.T) {
	signer := setupSigner(t)
	hash := ethcrypto.Keccak256([]byte("authorization digest"))

	sig, err := signer.Sign(hash)
	require.NoError(t, err)

	t.Run("27/28 recovery id", func(t *testing.T) {
		recovered, err := RecoverAddressFromHash(hash, sig)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), recovered)
	})

	t.Run("0/1 recovery id", func(t *testing.T) {
		raw := append(Signature(nil), sig...)
		raw[64] -= 27
		recovered, err := RecoverAddressFromHash(hash, raw)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), recovered)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		before := append(Signature(nil), sig...)
		_, err := RecoverAddressFromHash(hash, sig)
		require.NoError(t, err)
		assert.Equal(t, before, sig)
	})

	t.Run("different hash recovers different address", func(t *testing.T) {
		recovered, err := RecoverAddressFromHash(ethcrypto.Keccak256([]byte("other")), sig)
		if err == nil {
			assert.NotEqual(t, signer.Address(), recovered)
		}
	})
}

func TestRecoveryErrors(t *testing.T) {
	signer := setupSigner(t)
	hash := ethcrypto.Keccak256([]byte("some data to sign"))
	sig, err := signer.Sign(hash)
	require.NoError(t, err)

	secp256k1N, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

	tcs := []struct {
		name   string
		mutate func(Signature) Signature
	}{
		{"short", func(s Signature) Signature { return s[:64] }},
		{"long", func(s Signature) Signature { return append(s, 0x00) }},
		{"empty", func(Signature) Signature { return Signature{} }},
		{"bad recovery id", func(s Signature) Signature { s[64] = 29; return s }},
		{"zero r", func(s Signature) Signature { copy(s[:32], make([]byte, 32)); return s }},
		{"high s", func(s Signature) Signature {
			sv := new(big.Int).SetBytes(s[32:64])
			high := new(big.Int).Sub(secp256k1N, sv)
			copy(s[32:64], leftPad32(high.Bytes()))
			return s
		}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			mutated := tc.mutate(append(Signature(nil), sig...))
			_, err := RecoverAddressFromHash(hash, mutated)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSignature))
		})
	}
}

func leftPad32(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func TestSignatureEncoding(t *testing.T) {
	sig := Signature{0x01, 0x02, 0x03}

	data, err := json.Marshal(sig)
	require.NoError(t, err)
	assert.Equal(t, `"0x010203"`, string(data))

	var decoded Signature
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sig, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"0xzz"`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`12`), &decoded))

	parsed, err := ParseSignature("0x0a0b")
	require.NoError(t, err)
	assert.Equal(t, Signature{0x0a, 0x0b}, parsed)

	_, err = ParseSignature("not-hex")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
