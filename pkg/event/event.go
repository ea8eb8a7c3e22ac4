// Package event defines the closed set of events that can be stamped into a
// PoH entry. Every event carries a signature that doubles as the material
// mixed into the entry id, and can check that signature on its own.
package event

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/wallet"
)

// Event is implemented only by Transaction, Signature and Timestamp.
type Event interface {
	Kind() core.EventKind
	// Signature returns the bytes mixed into the entry id.
	Signature() core.Signature
	// Verify reports whether the event's own signature is valid.
	Verify() bool

	isEvent()
}

// IsNil reports whether ev is nil or a nil pointer to one of the variants.
func IsNil(ev Event) bool {
	switch v := ev.(type) {
	case nil:
		return true
	case *Transaction:
		return v == nil
	case *Signature:
		return v == nil
	case *Timestamp:
		return v == nil
	default:
		return false
	}
}

// Signer signs digests on behalf of a public key.
type Signer interface {
	PublicKey() core.PublicKey
	Sign(digest core.Hash) (core.Signature, error)
}

var (
	_ Event = (*Transaction)(nil)
	_ Event = (*Signature)(nil)
	_ Event = (*Timestamp)(nil)
)

// Transaction moves tokens from From to To, pinned to a recent entry id.
type Transaction struct {
	From   core.PublicKey `json:"from"`
	To     core.PublicKey `json:"to"`
	Tokens uint64         `json:"tokens"`
	LastID core.Hash      `json:"last_id"`
	Sig    core.Signature `json:"sig"`
}

func NewTransaction(signer Signer, to core.PublicKey, tokens uint64, lastID core.Hash) (*Transaction, error) {
	tx := &Transaction{
		From:   signer.PublicKey(),
		To:     to,
		Tokens: tokens,
		LastID: lastID,
	}
	sig, err := signer.Sign(tx.SignDigest())
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.Sig = sig
	return tx, nil
}

// SignDigest is the digest covered by the transaction signature.
func (tx *Transaction) SignDigest() core.Hash {
	data, err := rlp.EncodeToBytes(transactionBody{To: tx.To, Tokens: tx.Tokens, LastID: tx.LastID})
	if err != nil {
		// fixed-width arrays and a uint64 cannot fail to encode
		panic(err)
	}
	return core.HashBytes(data)
}

type transactionBody struct {
	To     core.PublicKey
	Tokens uint64
	LastID core.Hash
}

func (tx *Transaction) Kind() core.EventKind      { return core.KindTransaction }
func (tx *Transaction) Signature() core.Signature { return tx.Sig }
func (*Transaction) isEvent()                     {}

func (tx *Transaction) Verify() bool {
	return wallet.VerifySignature(tx.From, tx.SignDigest(), tx.Sig)
}

// Signature is a witness: From attests to the transaction signed TxSig.
type Signature struct {
	From  core.PublicKey `json:"from"`
	TxSig core.Signature `json:"tx_sig"`
	Sig   core.Signature `json:"sig"`
}

func NewSignature(signer Signer, txSig core.Signature) (*Signature, error) {
	ev := &Signature{From: signer.PublicKey(), TxSig: txSig}
	sig, err := signer.Sign(ev.SignDigest())
	if err != nil {
		return nil, fmt.Errorf("failed to sign witness: %w", err)
	}
	ev.Sig = sig
	return ev, nil
}

func (ev *Signature) SignDigest() core.Hash {
	return core.HashBytes(ev.TxSig[:])
}

func (ev *Signature) Kind() core.EventKind      { return core.KindSignature }
func (ev *Signature) Signature() core.Signature { return ev.Sig }
func (*Signature) isEvent()                     {}

func (ev *Signature) Verify() bool {
	return wallet.VerifySignature(ev.From, ev.SignDigest(), ev.Sig)
}

// Timestamp is From's signed claim that At has passed.
type Timestamp struct {
	From core.PublicKey `json:"from"`
	At   time.Time      `json:"at"`
	Sig  core.Signature `json:"sig"`
}

func NewTimestamp(signer Signer, at time.Time) (*Timestamp, error) {
	ev := &Timestamp{From: signer.PublicKey(), At: at.UTC()}
	sig, err := signer.Sign(ev.SignDigest())
	if err != nil {
		return nil, fmt.Errorf("failed to sign timestamp: %w", err)
	}
	ev.Sig = sig
	return ev, nil
}

// SignDigest covers the big-endian nanosecond encoding of At, so sub-second
// precision is part of the signed claim.
func (ev *Timestamp) SignDigest() core.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ev.At.UnixNano()))
	return core.HashBytes(buf[:])
}

func (ev *Timestamp) Kind() core.EventKind      { return core.KindTimestamp }
func (ev *Timestamp) Signature() core.Signature { return ev.Sig }
func (*Timestamp) isEvent()                     {}

func (ev *Timestamp) Verify() bool {
	return wallet.VerifySignature(ev.From, ev.SignDigest(), ev.Sig)
}
