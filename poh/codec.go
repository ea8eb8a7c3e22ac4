package poh

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/event"
)

// entryRLP is the wire layout: [num_hashes, id, [[kind, payload], ...]].
type entryRLP struct {
	NumHashes uint64
	ID        core.Hash
	Events    []event.Envelope
}

func (e Entry) EncodeRLP(w io.Writer) error {
	enc := entryRLP{
		NumHashes: e.NumHashes,
		ID:        e.ID,
		Events:    make([]event.Envelope, len(e.Events)),
	}
	for i, ev := range e.Events {
		env, err := event.Wrap(ev)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		enc.Events[i] = env
	}
	return rlp.Encode(w, &enc)
}

func (e *Entry) DecodeRLP(s *rlp.Stream) error {
	var dec entryRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}

	var events []event.Event
	if len(dec.Events) > 0 {
		events = make([]event.Event, len(dec.Events))
		for i, env := range dec.Events {
			ev, err := env.Unwrap()
			if err != nil {
				return fmt.Errorf("event %d: %w", i, err)
			}
			events[i] = ev
		}
	}

	*e = Entry{NumHashes: dec.NumHashes, ID: dec.ID, Events: events}
	return nil
}

// EncodeEntries encodes a chain segment as one RLP list.
func EncodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return rlp.EncodeToBytes(entries)
}

func DecodeEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := rlp.DecodeBytes(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

type entryJSON struct {
	NumHashes uint64            `json:"num_hashes"`
	ID        core.Hash         `json:"id"`
	Events    []json.RawMessage `json:"events"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	enc := entryJSON{
		NumHashes: e.NumHashes,
		ID:        e.ID,
		Events:    make([]json.RawMessage, len(e.Events)),
	}
	for i, ev := range e.Events {
		data, err := event.MarshalJSON(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		enc.Events[i] = data
	}
	return json.Marshal(enc)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var dec entryJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}

	var events []event.Event
	if len(dec.Events) > 0 {
		events = make([]event.Event, len(dec.Events))
		for i, raw := range dec.Events {
			ev, err := event.UnmarshalJSON(raw)
			if err != nil {
				return fmt.Errorf("event %d: %w", i, err)
			}
			events[i] = ev
		}
	}

	*e = Entry{NumHashes: dec.NumHashes, ID: dec.ID, Events: events}
	return nil
}
