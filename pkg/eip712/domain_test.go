package eip712

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func manualSeparator(name, version string, chainID *big.Int, contract common.Address) common.Hash {
	return crypto.Keccak256Hash(
		crypto.Keccak256([]byte(DomainTypeDescriptor)),
		crypto.Keccak256([]byte(name)),
		crypto.Keccak256([]byte(version)),
		math.U256Bytes(new(big.Int).Set(chainID)),
		common.LeftPadBytes(contract.Bytes(), 32),
	)
}

func TestComputeDomainSeparator_EIP712MailVector(t *testing.T) {
	sep := ComputeDomainSeparator(
		"Ether Mail", "1", big.NewInt(1),
		common.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"),
	)
	assert.Equal(t, "0xf2cee375fa42b42143804025fc449deafd50cc031ca257e0b194a650a912090f", sep.Hex())
}

func TestComputeDomainSeparator_MatchesWordEncoding(t *testing.T) {
	chainID := big.NewInt(31337)
	sep := ComputeDomainSeparator(DefaultName, DefaultVersion, chainID, testContract)

	assert.Equal(t, manualSeparator(DefaultName, DefaultVersion, chainID, testContract).Bytes(), sep.Bytes())
	assert.Equal(t, int64(31337), chainID.Int64(), "chain id must not be modified")
}

func TestComputeDomainSeparator_Deterministic(t *testing.T) {
	domain := Domain{Name: DefaultName, Version: DefaultVersion, ChainID: big.NewInt(31337), VerifyingContract: testContract}

	first := NewDomainHasher(domain)
	second := NewDomainHasher(domain)

	assert.Equal(t, first.Separator(), second.Separator())
	assert.Equal(t, first.Separator(), domain.Separator())
}

func TestComputeDomainSeparator_Isolation(t *testing.T) {
	base := ComputeDomainSeparator(DefaultName, DefaultVersion, big.NewInt(1), testContract)

	tcs := []struct {
		name string
		sep  DomainSeparator
	}{
		{"chain id", ComputeDomainSeparator(DefaultName, DefaultVersion, big.NewInt(2), testContract)},
		{"contract", ComputeDomainSeparator(DefaultName, DefaultVersion, big.NewInt(1), common.HexToAddress("0x01"))},
		{"name", ComputeDomainSeparator("Other", DefaultVersion, big.NewInt(1), testContract)},
		{"version", ComputeDomainSeparator(DefaultName, "v2", big.NewInt(1), testContract)},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, base, tc.sep)
		})
	}
}

func TestComputeDomainSeparator_PanicsOnBadChainID(t *testing.T) {
	assert.Panics(t, func() {
		ComputeDomainSeparator(DefaultName, DefaultVersion, nil, testContract)
	})
	assert.Panics(t, func() {
		ComputeDomainSeparator(DefaultName, DefaultVersion, big.NewInt(-1), testContract)
	})
	assert.Panics(t, func() {
		ComputeDomainSeparator(DefaultName, DefaultVersion, new(big.Int).Lsh(big.NewInt(1), 256), testContract)
	})
}

func TestDomainHasher_DomainIsCopied(t *testing.T) {
	chainID := big.NewInt(10)
	h := NewDomainHasher(Domain{Name: DefaultName, Version: DefaultVersion, ChainID: chainID, VerifyingContract: testContract})
	sep := h.Separator()

	chainID.SetInt64(11)
	d := h.Domain()
	require.Equal(t, int64(10), d.ChainID.Int64())

	d.ChainID.SetInt64(12)
	assert.Equal(t, int64(10), h.Domain().ChainID.Int64())
	assert.Equal(t, sep, h.Domain().Separator())
}
