package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/LICODX/rnr-poh/pkg/core"
)

var ErrInvalidKey = errors.New("wallet: invalid private key")

// Keypair holds a secp256k1 key used to sign events.
type Keypair struct {
	privateKey *btcec.PrivateKey
	publicKey  core.PublicKey
}

func NewKeypair() (*Keypair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return fromPrivateKey(priv), nil
}

// KeypairFromBytes restores a keypair from a 32 byte scalar.
func KeypairFromBytes(b []byte) (*Keypair, error) {
	if len(b) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, btcec.PrivKeyBytesLen, len(b))
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	if priv.Key.IsZero() {
		return nil, ErrInvalidKey
	}
	return fromPrivateKey(priv), nil
}

func fromPrivateKey(priv *btcec.PrivateKey) *Keypair {
	var pub core.PublicKey
	copy(pub[:], schnorr.SerializePubKey(priv.PubKey()))
	return &Keypair{privateKey: priv, publicKey: pub}
}

func (k *Keypair) PublicKey() core.PublicKey {
	return k.publicKey
}

// Bytes returns the private scalar.
func (k *Keypair) Bytes() []byte {
	return k.privateKey.Serialize()
}

// Sign produces a BIP-340 signature over digest.
func (k *Keypair) Sign(digest core.Hash) (core.Signature, error) {
	var out core.Signature
	sig, err := schnorr.Sign(k.privateKey, digest[:])
	if err != nil {
		return out, fmt.Errorf("failed to sign digest: %w", err)
	}
	copy(out[:], sig.Serialize())
	return out, nil
}

// VerifySignature reports whether sig is a valid signature of digest by pub.
// Malformed keys or signatures verify as false.
func VerifySignature(pub core.PublicKey, digest core.Hash, sig core.Signature) bool {
	pubKey, err := schnorr.ParsePubKey(pub[:])
	if err != nil {
		return false
	}
	parsed, err := schnorr.ParseSignature(sig[:])
	if err != nil {
		return false
	}
	return parsed.Verify(digest[:], pubKey)
}
