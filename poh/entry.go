// Package poh implements the Proof of History entry chain for the RNR
// protocol. An entry's id is derived from its predecessor's id by repeated
// hashing, so num_hashes records an approximate amount of elapsed time, and
// any events stamped into the entry are mixed into the final hash so they
// cannot be reordered or replaced without changing the id.
package poh

import (
	"errors"
	"fmt"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/event"
)

var (
	ErrInvalidEvent = errors.New("poh: event failed verification")
	ErrIDMismatch   = errors.New("poh: entry id mismatch")
)

// Entry is one link of the chain. NumHashes is the number of hashes
// performed since the previous entry and ID is the result of applying the
// chain rule to the previous entry's id. Events took place shortly after the
// previous id was generated. Entries are values and are never modified once
// built.
type Entry struct {
	NumHashes uint64
	ID        core.Hash
	Events    []event.Event
}

// NewTick builds an event-free entry from a known count and id, as used for
// the genesis entry.
func NewTick(numHashes uint64, id core.Hash) Entry {
	return Entry{NumHashes: numHashes, ID: id}
}

// IsTick reports whether the entry carries no events.
func (e Entry) IsTick() bool { return len(e.Events) == 0 }

// Verify reports whether every event is individually valid and ID is the
// result of NextHash(start, NumHashes, Events).
func (e Entry) Verify(start core.Hash) bool {
	return e.Check(start) == nil
}

// Check is Verify with the reason for rejection. Event checks run in
// parallel; the returned error wraps ErrInvalidEvent or ErrIDMismatch.
func (e Entry) Check(start core.Hash) error {
	if err := verifyEvents(e.Events); err != nil {
		return err
	}
	if id := NextHash(start, e.NumHashes, e.Events); id != e.ID {
		return fmt.Errorf("%w: expected %s, got %s", ErrIDMismatch, id, e.ID)
	}
	return nil
}

func appendEventData(buf []byte, ev event.Event) []byte {
	if event.IsNil(ev) {
		return buf
	}
	sig := ev.Signature()
	buf = append(buf, byte(ev.Kind()))
	return append(buf, sig[:]...)
}

// NextHash hashes start numHashes-1 times. When events are present their
// kind bytes and signatures, in order, are then mixed into the result with
// one final ExtendAndHash. Nil events, typed or not, contribute nothing. With no events and numHashes of 0 or 1, start is
// returned unchanged.
func NextHash(start core.Hash, numHashes uint64, events []event.Event) core.Hash {
	id := start
	for i := uint64(1); i < numHashes; i++ {
		id = core.Rehash(id)
	}

	var data []byte
	if len(events) > 0 {
		data = make([]byte, 0, len(events)*(1+core.SignatureLength))
	}
	for _, ev := range events {
		data = appendEventData(data, ev)
	}

	if len(data) > 0 {
		return core.ExtendAndHash(id, data)
	}
	return id
}

// CreateEntry stamps events onto start. The stored count is curHashes, plus
// one when events are present, but the id only mixes the events into start:
// no idle hashes are folded in here.
func CreateEntry(start core.Hash, curHashes uint64, events []event.Event) Entry {
	numHashes := curHashes
	if len(events) > 0 {
		numHashes++
	}
	return Entry{
		NumHashes: numHashes,
		ID:        NextHash(start, 0, events),
		Events:    events,
	}
}

// CreateEntryMut is CreateEntry that also moves the producer state forward:
// start becomes the new entry's id and curHashes is reset to zero.
func CreateEntryMut(start *core.Hash, curHashes *uint64, events []event.Event) Entry {
	entry := CreateEntry(*start, *curHashes, events)
	*start = entry.ID
	*curHashes = 0
	return entry
}

// NextTick builds the idle entry numHashes after start.
func NextTick(start core.Hash, numHashes uint64) Entry {
	return Entry{
		NumHashes: numHashes,
		ID:        NextHash(start, numHashes, nil),
	}
}
