// Package signature provides helper functions for handling the node identity
// and signing needs of the blockchain.
package signature

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidIdentity is returned when an identity string does not decode
// into a secp256k1 public key.
var ErrInvalidIdentity = errors.New("invalid identity")

// =============================================================================

// GenerateKey produces a new secp256k1 private key for a node.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// Identity returns the public identity for the specified public key. This
// is the compressed public key in hex form.
func Identity(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&publicKey))
}

// ToPublicKey converts a public identity back into its public key.
func ToPublicKey(identity string) (*ecdsa.PublicKey, error) {
	b, err := hexutil.Decode(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}

	publicKey, err := crypto.DecompressPubkey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}

	return publicKey, nil
}

// Sign uses the specified private key to sign the value. The returned
// signature is 65 bytes in the [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) ([]byte, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return nil, err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	return sig, nil
}

// Verify reports whether the signature was produced for the value by the
// private key behind the specified identity.
func Verify(value any, sig []byte, identity string) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}

	publicKey, err := ToPublicKey(identity)
	if err != nil {
		return false
	}

	data, err := stamp(value)
	if err != nil {
		return false
	}

	// The recovery id is not part of the verification.
	return crypto.VerifySignature(crypto.CompressPubkey(publicKey), data, sig[:crypto.RecoveryIDOffset])
}

// FromIdentity extracts the identity of the key that signed the value.
func FromIdentity(value any, sig []byte) (string, error) {
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	return Identity(*publicKey), nil
}

// SignatureString returns the signature as a string.
func SignatureString(sig []byte) string {
	return hexutil.Encode(sig)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this value with
// the chainsim stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the value.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the value into a 32 byte array. This will provide
	// a data length consistency with all values.
	valueHash := crypto.Keccak256(v)

	// Signatures produced by a node are always unique to this chain.
	stamp := []byte("\x19Chainsim Signed Message:\n32")

	return crypto.Keccak256(stamp, valueHash), nil
}
