package poh

import (
	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/event"
)

// Sequencer is the producer side of the chain: the current id and the
// number of idle hashes applied since the last entry. It is not safe for
// concurrent use; callers extending the same chain must serialize.
type Sequencer struct {
	lastID    core.Hash
	numHashes uint64
}

// NewSequencer starts producing after the entry whose id is start.
func NewSequencer(start core.Hash) *Sequencer {
	return &Sequencer{lastID: start}
}

// Hash applies one idle hash.
func (s *Sequencer) Hash() {
	s.lastID = core.Rehash(s.lastID)
	s.numHashes++
}

// HashN applies n idle hashes.
func (s *Sequencer) HashN(n uint64) {
	for i := uint64(0); i < n; i++ {
		s.Hash()
	}
}

// Record stamps events onto the current id and starts a new count. With at
// least one event the entry verifies against the previous entry's id.
func (s *Sequencer) Record(events []event.Event) Entry {
	return CreateEntryMut(&s.lastID, &s.numHashes, events)
}

// Tick emits an idle entry covering the hashes applied since the last
// entry. The claimed count is one more than the hashes performed, matching
// the idle rule in NextHash, so the result equals
// NextTick(previousID, NumHashes).
func (s *Sequencer) Tick() Entry {
	entry := NewTick(s.numHashes+1, s.lastID)
	s.numHashes = 0
	return entry
}

func (s *Sequencer) LastID() core.Hash { return s.lastID }

func (s *Sequencer) NumHashes() uint64 { return s.numHashes }
