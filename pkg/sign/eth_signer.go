package sign

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var _ Signer = (*EthereumSigner)(nil)

// EthereumSigner signs with a secp256k1 private key held in memory.
type EthereumSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewEthereumSigner parses a hex private key, with or without 0x prefix.
func NewEthereumSigner(privateKeyHex string) (*EthereumSigner, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse ethereum private key: %w", err)
	}
	return NewEthereumSignerFromKey(key), nil
}

func NewEthereumSignerFromKey(key *ecdsa.PrivateKey) *EthereumSigner {
	return &EthereumSigner{
		privateKey: key,
		address:    ethcrypto.PubkeyToAddress(key.PublicKey),
	}
}

func (s *EthereumSigner) Address() common.Address { return s.address }

// Sign expects hash to be a 32-byte digest.
func (s *EthereumSigner) Sign(hash []byte) (Signature, error) {
	sig, err := ethcrypto.Sign(hash, s.privateKey)
	if err != nil {
		return nil, err
	}
	// ecrecover-compatible v
	sig[64] += 27
	return Signature(sig), nil
}

// RecoverAddressFromHash recovers the address that signed hash. Both 0/1 and
// 27/28 recovery ids are accepted. Signatures with r or s out of range, or
// with s in the upper half of the curve order, are rejected with
// ErrInvalidSignature. sig is not modified.
func RecoverAddressFromHash(hash []byte, sig Signature) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d, want %d", ErrInvalidSignature, len(sig), SignatureLength)
	}

	localSig := make([]byte, SignatureLength)
	copy(localSig, sig)
	if localSig[64] >= 27 {
		localSig[64] -= 27
	}

	r := new(big.Int).SetBytes(localSig[:32])
	s := new(big.Int).SetBytes(localSig[32:64])
	if !ethcrypto.ValidateSignatureValues(localSig[64], r, s, true) {
		return common.Address{}, fmt.Errorf("%w: r, s or v out of range", ErrInvalidSignature)
	}

	pubKey, err := ethcrypto.SigToPub(hash, localSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}
