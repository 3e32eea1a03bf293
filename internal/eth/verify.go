// Package eth implements personal-sign signature verification: it hashes
// a challenge message under the Ethereum signed-message prefix, recovers
// the signer's public key from the recoverable signature and derives the
// signer's address from it.
package eth

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/sigil/core"
)

// PersonalSignHash returns the Keccak-256 digest of the message under the
// personal-sign convention: "\x19Ethereum Signed Message:\n" followed by
// the decimal message length and the message itself.
func PersonalSignHash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

// AddressFromPubkey derives the Ethereum address for a public key:
// Keccak-256 of the uncompressed point without its prefix byte, last 20
// bytes, hex-encoded with a 0x prefix.
func AddressFromPubkey(pub *ecdsa.PublicKey) string {
	raw := crypto.FromECDSAPub(pub)
	hash := crypto.Keccak256(raw[1:])
	return "0x" + hex.EncodeToString(hash[12:])
}

// VerifySignature checks that signatureHex was produced by the key behind
// expectedAddress signing message. The signature must decode to exactly
// 65 bytes: a 64-byte compact signature followed by a one-byte recovery
// indicator (0/1, or the legacy 27/28).
func VerifySignature(signatureHex, message, expectedAddress string) (bool, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", core.ErrInvalidSignature)
	}
	if len(sig) != 65 {
		return false, fmt.Errorf("signature must be 65 bytes, got %d: %w", len(sig), core.ErrInvalidSignature)
	}

	v := sig[64]
	switch v {
	case 27, 28:
		v -= 27
	case 0, 1:
		// already normalized
	default:
		return false, fmt.Errorf("invalid recovery id %d: %w", sig[64], core.ErrInvalidSignature)
	}

	compact := make([]byte, 65)
	copy(compact, sig[:64])
	compact[64] = v

	pub, err := crypto.SigToPub(PersonalSignHash(message), compact)
	if err != nil {
		return false, fmt.Errorf("recover public key: %w", core.ErrInvalidSignature)
	}

	recovered, err := core.NormalizeAddress(AddressFromPubkey(pub))
	if err != nil {
		return false, err
	}
	expected, err := core.NormalizeAddress(expectedAddress)
	if err != nil {
		return false, err
	}

	return recovered == expected, nil
}
