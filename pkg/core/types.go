package core

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	HashLength      = sha256.Size
	PublicKeyLength = 32
	SignatureLength = 64
)

// Hash is a fixed-width SHA-256 digest. The zero value is the all-zero hash.
type Hash [HashLength]byte

// Rehash applies the one-way hash once.
func Rehash(h Hash) Hash {
	return sha256.Sum256(h[:])
}

// ExtendAndHash mixes data into h and returns the digest of the pair.
func ExtendAndHash(h Hash, data []byte) Hash {
	hasher := sha256.New()
	hasher.Write(h[:])
	hasher.Write(data)

	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

// HashBytes digests an arbitrary byte slice.
func HashBytes(data []byte) Hash {
	return sha256.Sum256(data)
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// TerminalString is a short form used in log lines.
func (h Hash) TerminalString() string {
	return hex.EncodeToString(h[:4]) + ".." + hex.EncodeToString(h[HashLength-4:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

func (h *Hash) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash", input, h[:])
}

// PublicKey is an x-only secp256k1 public key (BIP-340).
type PublicKey [PublicKeyLength]byte

func (p PublicKey) String() string {
	return hexutil.Encode(p[:])
}

func (p PublicKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(p[:]).MarshalText()
}

func (p *PublicKey) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("PublicKey", input, p[:])
}

// Signature is a 64 byte schnorr signature.
type Signature [SignatureLength]byte

func (s Signature) Bytes() []byte { return s[:] }

func (s Signature) String() string {
	return hexutil.Encode(s[:])
}

func (s Signature) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

func (s *Signature) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Signature", input, s[:])
}
