package poh

import (
	"fmt"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/logging"
)

// Verifier walks a chain one entry at a time. It is owned by a single
// goroutine.
type Verifier struct {
	currentID core.Hash
	ticks     uint64
	entries   uint64
	logger    *logging.StructuredLogger
}

// NewVerifier starts a walk at start, typically the genesis id.
func NewVerifier(start core.Hash) *Verifier {
	return &Verifier{
		currentID: start,
		logger:    logging.WithField("component", "poh-verifier"),
	}
}

// SetLogger replaces the logger used for rejection messages.
func (v *Verifier) SetLogger(l *logging.StructuredLogger) {
	v.logger = l
}

// VerifyEntry checks entry against the current id and advances to it on
// success. On failure the state is left unchanged.
func (v *Verifier) VerifyEntry(entry Entry) error {
	if err := entry.Check(v.currentID); err != nil {
		v.logger.DebugWithFields("entry rejected", map[string]interface{}{
			"height":     v.entries,
			"prev_id":    v.currentID.TerminalString(),
			"num_hashes": entry.NumHashes,
			"events":     len(entry.Events),
			"reason":     err.Error(),
		})
		return err
	}

	v.currentID = entry.ID
	v.entries++
	if entry.IsTick() {
		v.ticks++
	}
	return nil
}

// VerifyEntries verifies entries in order, stopping at the first failure.
func (v *Verifier) VerifyEntries(entries []Entry) error {
	for i := range entries {
		if err := v.VerifyEntry(entries[i]); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// Reset restarts the walk at id.
func (v *Verifier) Reset(id core.Hash) {
	v.currentID = id
	v.ticks = 0
	v.entries = 0
}

// CurrentID is the id of the last accepted entry.
func (v *Verifier) CurrentID() core.Hash { return v.currentID }

// Ticks counts accepted entries that carried no events.
func (v *Verifier) Ticks() uint64 { return v.ticks }

// Height counts all accepted entries.
func (v *Verifier) Height() uint64 { return v.entries }
