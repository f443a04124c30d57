package eip712

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrMalformedSignature means the bytes do not decode to a recoverable
	// signature. It is never retryable.
	ErrMalformedSignature = errors.New("malformed signature")
	// ErrUnauthorizedSigner means recovery succeeded but the signer is not
	// the registered authority, or the signed recipient/amount differ from
	// the requested ones.
	ErrUnauthorizedSigner = errors.New("unauthorized signer")
)

// SignerMismatchError carries both identities of a rejected authorization so
// callers can audit it. It matches ErrUnauthorizedSigner with errors.Is.
type SignerMismatchError struct {
	Expected  common.Address
	Recovered common.Address
}

func (e *SignerMismatchError) Error() string {
	return fmt.Sprintf("%s: recovered %s, expected %s", ErrUnauthorizedSigner, e.Recovered.Hex(), e.Expected.Hex())
}

func (e *SignerMismatchError) Unwrap() error {
	return ErrUnauthorizedSigner
}
