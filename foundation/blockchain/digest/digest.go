// Package digest provides the fixed size content hash used to identify
// transactions and blocks, and to build merkle roots.
package digest

import (
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Size is the number of bytes in a digest.
const Size = chainhash.HashSize

// Zero represents a digest of zeros.
var Zero Digest

// =============================================================================

// Digest is a SHA-256 hash of some content.
type Digest chainhash.Hash

// Hash returns the digest of the specified bytes.
func Hash(data []byte) Digest {
	return Digest(chainhash.HashH(data))
}

// HashValue returns the digest of the JSON encoding of the value. Struct
// fields are encoded in declaration order, so two field-equal values always
// produce the same digest.
//
// JSON replaces invalid UTF-8 in strings, so callers must hash a form whose
// strings are already byte exact, like the output of HexString. HashValue
// panics if the value can't be encoded.
func HashValue(value any) Digest {
	data, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("digest: HashValue: %s", err))
	}

	return Hash(data)
}

// HexString returns the 0x prefixed hex encoding of the raw bytes of s.
func HexString(s string) string {
	return hexutil.Encode([]byte(s))
}

// HashPair returns the digest of the concatenation of left and right.
func HashPair(left Digest, right Digest) Digest {
	data := make([]byte, 0, 2*Size)
	data = append(data, left[:]...)
	data = append(data, right[:]...)

	return Hash(data)
}

// FromHex decodes a 0x prefixed hex string into a digest.
func FromHex(s string) (Digest, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Zero, err
	}

	if len(b) != Size {
		return Zero, fmt.Errorf("invalid digest length, got %d, exp %d", len(b), Size)
	}

	var d Digest
	copy(d[:], b)

	return d, nil
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, d[:])
	return b
}

// IsZero reports whether the digest is all zeros.
func (d Digest) IsZero() bool {
	return d == Zero
}

// String implements the fmt.Stringer interface.
func (d Digest) String() string {
	return hexutil.Encode(d[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Digest) UnmarshalText(text []byte) error {
	v, err := FromHex(string(text))
	if err != nil {
		return err
	}

	*d = v
	return nil
}
