package poh

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/event"
	"github.com/LICODX/rnr-poh/pkg/utils"
)

func workers() int {
	return runtime.GOMAXPROCS(0)
}

func verifyEvent(ev event.Event) bool {
	if event.IsNil(ev) {
		return false
	}
	return utils.SafeCheck("poh.event", ev.Verify)
}

func invalidEvent(idx int, ev event.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: event %d is nil", ErrInvalidEvent, idx)
	}
	return fmt.Errorf("%w: event %d (%s)", ErrInvalidEvent, idx, ev.Kind())
}

// verifyEvents fans the per-event signature checks out over a bounded
// worker pool and stops scheduling new checks after the first failure.
func verifyEvents(events []event.Event) error {
	switch len(events) {
	case 0:
		return nil
	case 1:
		if !verifyEvent(events[0]) {
			return invalidEvent(0, events[0])
		}
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers())
	for i, ev := range events {
		if ctx.Err() != nil {
			break
		}
		i, ev := i, ev
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if !verifyEvent(ev) {
				return invalidEvent(i, ev)
			}
			return nil
		})
	}
	return g.Wait()
}

// VerifyEntries reports whether entries form a valid chain starting at
// start: the first entry verifies against start and every later entry
// against its predecessor's id. An empty slice is valid.
func VerifyEntries(start core.Hash, entries []Entry) bool {
	return CheckEntries(start, entries) == nil
}

// CheckEntries is VerifyEntries with the failing entry index. Entries are
// independent once their predecessor ids are known, so they are checked
// concurrently; when several entries are bad any one of them may be
// reported.
func CheckEntries(start core.Hash, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers())
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		i := i
		prev := start
		if i > 0 {
			prev = entries[i-1].ID
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := entries[i].Check(prev); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}
