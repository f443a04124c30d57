package eip712

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
)

// Scheme selects which hash of the typed-data digest the authority signs.
type Scheme string

const (
	// SchemeTypedData signs the EIP-712 digest directly (eth_signTypedData_v4).
	SchemeTypedData Scheme = "typed_data"
	// SchemePersonal signs the EIP-191 personal-message hash of the digest,
	// which is what wallets produce for personal_sign over the 32 digest bytes.
	SchemePersonal Scheme = "personal"
)

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeTypedData, SchemePersonal:
		return Scheme(s), nil
	case "":
		return SchemeTypedData, nil
	default:
		return "", fmt.Errorf("unknown signature scheme %q", s)
	}
}

// SigningHash returns the 32 bytes that are actually passed to ECDSA.
func (s Scheme) SigningHash(digest common.Hash) []byte {
	if s == SchemePersonal {
		return accounts.TextHash(digest[:])
	}
	return digest.Bytes()
}

func (s Scheme) String() string {
	return string(s)
}
