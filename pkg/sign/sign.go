package sign

import (
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SignatureLength is the size of an r || s || v secp256k1 signature.
const SignatureLength = 65

var (
	// ErrInvalidSignature is returned for any signature encoding that cannot
	// be turned into a recoverable (r, s, v) triple.
	ErrInvalidSignature = errors.New("invalid signature encoding")
)

// Signer signs 32-byte digests on behalf of a single address.
type Signer interface {
	Address() common.Address
	// Sign signs a pre-computed hash. It never hashes its input.
	Sign(hash []byte) (Signature, error)
}

// Signature is a 65-byte r || s || v signature; v is 27/28 when produced here.
type Signature []byte

// MarshalJSON encodes the signature as a 0x-prefixed hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(hexStr)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func (s Signature) String() string {
	return hexutil.Encode(s)
}

// ParseSignature decodes a 0x-prefixed hex signature.
func ParseSignature(hexSig string) (Signature, error) {
	decoded, err := hexutil.Decode(hexSig)
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}
	return Signature(decoded), nil
}
