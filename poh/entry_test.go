package poh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/event"
	"github.com/LICODX/rnr-poh/pkg/logging"
	"github.com/LICODX/rnr-poh/pkg/wallet"
)

func newKeypair(t *testing.T) *wallet.Keypair {
	t.Helper()
	kp, err := wallet.NewKeypair()
	require.NoError(t, err)
	return kp
}

func newTransaction(t *testing.T, kp *wallet.Keypair, tokens uint64, lastID core.Hash) *event.Transaction {
	t.Helper()
	tx, err := event.NewTransaction(kp, kp.PublicKey(), tokens, lastID)
	require.NoError(t, err)
	return tx
}

func TestEntryVerify(t *testing.T) {
	zero := core.Hash{}
	one := core.Rehash(zero)

	assert.True(t, NewTick(0, zero).Verify(zero))  // base case
	assert.False(t, NewTick(0, zero).Verify(one))  // base case, bad
	assert.True(t, NextTick(zero, 1).Verify(zero)) // inductive step
	assert.False(t, NextTick(zero, 1).Verify(one)) // inductive step, bad
}

func TestNextTickVerifiesOnlyAgainstStart(t *testing.T) {
	start := core.HashBytes([]byte("start"))
	for _, n := range []uint64{1, 2, 3, 10, 100} {
		tick := NextTick(start, n)
		assert.Equal(t, n, tick.NumHashes)
		assert.True(t, tick.IsTick())
		assert.True(t, tick.Verify(start), "n=%d", n)
		assert.False(t, tick.Verify(core.Rehash(start)), "n=%d", n)
		assert.False(t, tick.Verify(core.Hash{}), "n=%d", n)
	}
}

func TestNextHashIdleRule(t *testing.T) {
	zero := core.Hash{}

	assert.Equal(t, zero, NextHash(zero, 0, nil))
	assert.Equal(t, zero, NextHash(zero, 1, nil))
	assert.Equal(t, core.Rehash(zero), NextHash(zero, 2, nil))
	assert.Equal(t, core.Rehash(core.Rehash(zero)), NextHash(zero, 3, nil))
	assert.Equal(t, zero, NextHash(zero, 0, []event.Event{}))
}

func TestNextHashMixesEvents(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)
	tx := newTransaction(t, kp, 0, zero)

	var data []byte
	data = append(data, byte(core.KindTransaction))
	data = append(data, tx.Sig[:]...)

	events := []event.Event{tx}
	assert.Equal(t, core.ExtendAndHash(zero, data), NextHash(zero, 0, events))
	assert.Equal(t, core.ExtendAndHash(zero, data), NextHash(zero, 1, events))
	assert.Equal(t, core.ExtendAndHash(core.Rehash(zero), data), NextHash(zero, 2, events))
}

func TestNextHashDeterministic(t *testing.T) {
	start := core.HashBytes([]byte("seed"))
	kp := newKeypair(t)
	events := []event.Event{newTransaction(t, kp, 7, start)}

	first := NextHash(start, 50, events)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, NextHash(start, 50, events))
	}
}

func TestNextHashKindSensitive(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)
	tx := newTransaction(t, kp, 0, zero)

	asWitness := &event.Signature{From: tx.From, Sig: tx.Sig}
	asTimestamp := &event.Timestamp{From: tx.From, Sig: tx.Sig}

	h0 := NextHash(zero, 0, []event.Event{tx})
	h1 := NextHash(zero, 0, []event.Event{asWitness})
	h2 := NextHash(zero, 0, []event.Event{asTimestamp})
	assert.NotEqual(t, h0, h1)
	assert.NotEqual(t, h0, h2)
	assert.NotEqual(t, h1, h2)
}

func TestEventReorderAttack(t *testing.T) {
	zero := core.Hash{}

	kp := newKeypair(t)
	tr0 := newTransaction(t, kp, 0, zero)
	tr1 := newTransaction(t, kp, 1, zero)
	e0 := CreateEntry(zero, 0, []event.Event{tr0, tr1})
	assert.True(t, e0.Verify(zero))

	e0.Events = []event.Event{tr1, tr0} // attack
	assert.False(t, e0.Verify(zero))
	assert.ErrorIs(t, e0.Check(zero), ErrIDMismatch)
}

func TestWitnessReorderAttack(t *testing.T) {
	zero := core.Hash{}

	kp := newKeypair(t)
	tr0, err := event.NewTimestamp(kp, time.Now())
	require.NoError(t, err)
	tr1, err := event.NewSignature(kp, core.Signature{})
	require.NoError(t, err)
	require.True(t, tr0.Verify())
	require.True(t, tr1.Verify())

	e0 := CreateEntry(zero, 0, []event.Event{tr0, tr1})
	assert.True(t, e0.Verify(zero))

	e0.Events = []event.Event{tr1, tr0} // attack
	assert.False(t, e0.Verify(zero))
}

func TestEventSubstitution(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)

	tx := newTransaction(t, kp, 5, zero)
	e0 := CreateEntry(zero, 0, []event.Event{tx})
	require.True(t, e0.Verify(zero))

	other := newTransaction(t, kp, 6, zero)
	e0.Events = []event.Event{other}
	assert.False(t, e0.Verify(zero))
}

func TestInvalidEventRejected(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)

	tx := newTransaction(t, kp, 3, zero)
	tx.Tokens = 300 // signature no longer matches
	e0 := CreateEntry(zero, 0, []event.Event{tx})

	assert.False(t, e0.Verify(zero))
	assert.ErrorIs(t, e0.Check(zero), ErrInvalidEvent)
}

func TestInvalidEventAmongMany(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)

	events := make([]event.Event, 0, 16)
	for i := 0; i < 16; i++ {
		events = append(events, newTransaction(t, kp, uint64(i), zero))
	}
	e0 := CreateEntry(zero, 0, events)
	require.True(t, e0.Verify(zero))

	bad := *events[11].(*event.Transaction)
	bad.Sig[5] ^= 0x01
	tampered := append([]event.Event(nil), events...)
	tampered[11] = &bad
	e1 := CreateEntry(zero, 0, tampered)

	assert.False(t, e1.Verify(zero))
	assert.ErrorIs(t, e1.Check(zero), ErrInvalidEvent)
}

func TestPanickingEventIsInvalid(t *testing.T) {
	prev := logging.GetDefaultLogger()
	logging.SetDefaultLogger(logging.NewNopLogger())
	t.Cleanup(func() { logging.SetDefaultLogger(prev) })

	zero := core.Hash{}
	e := Entry{NumHashes: 1, ID: zero, Events: []event.Event{(*event.Transaction)(nil)}}
	assert.NotPanics(t, func() {
		assert.False(t, e.Verify(zero))
	})

	e = Entry{NumHashes: 1, ID: zero, Events: []event.Event{nil}}
	assert.ErrorIs(t, e.Check(zero), ErrInvalidEvent)
}

func TestVerifyIdempotent(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)
	e0 := CreateEntry(zero, 0, []event.Event{newTransaction(t, kp, 1, zero)})

	for i := 0; i < 5; i++ {
		assert.True(t, e0.Verify(zero))
		assert.False(t, e0.Verify(core.Rehash(zero)))
	}
}

func TestCreateEntryCounts(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)
	tx := newTransaction(t, kp, 0, zero)

	tick := CreateEntry(zero, 5, nil)
	assert.Equal(t, uint64(5), tick.NumHashes)
	assert.Equal(t, zero, tick.ID)

	withEvents := CreateEntry(zero, 5, []event.Event{tx})
	assert.Equal(t, uint64(6), withEvents.NumHashes)
	assert.Equal(t, NextHash(zero, 0, []event.Event{tx}), withEvents.ID)

	// The id never folds in curHashes, so only a zero count comes back
	// out of Verify.
	assert.True(t, CreateEntry(zero, 0, []event.Event{tx}).Verify(zero))
	assert.True(t, CreateEntry(zero, 0, nil).Verify(zero))
	assert.False(t, withEvents.Verify(zero))
}

func TestCreateEntryMut(t *testing.T) {
	start := core.HashBytes([]byte("producer"))
	numHashes := uint64(9)
	kp := newKeypair(t)
	tx := newTransaction(t, kp, 1, start)

	id := start
	entry := CreateEntryMut(&id, &numHashes, []event.Event{tx})

	assert.Equal(t, uint64(10), entry.NumHashes)
	assert.Equal(t, entry.ID, id)
	assert.Zero(t, numHashes)
	assert.NotEqual(t, start, id)
}

func TestNextTickCount(t *testing.T) {
	zero := core.Hash{}
	assert.Equal(t, uint64(1), NextTick(zero, 1).NumHashes)
}

func TestTypedNilEventsKeepNextHashTotal(t *testing.T) {
	zero := core.Hash{}
	nils := []event.Event{(*event.Transaction)(nil), (*event.Signature)(nil), (*event.Timestamp)(nil), nil}

	assert.NotPanics(t, func() {
		assert.Equal(t, zero, NextHash(zero, 0, nils))
		entry := CreateEntry(zero, 0, nils)
		assert.Equal(t, uint64(1), entry.NumHashes)
		assert.ErrorIs(t, entry.Check(zero), ErrInvalidEvent)
	})
}

func TestEventKindSubstitution(t *testing.T) {
	zero := core.Hash{}
	kp := newKeypair(t)

	ts, err := event.NewTimestamp(kp, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	witness, err := event.NewSignature(kp, ts.Sig)
	require.NoError(t, err)

	e0 := CreateEntry(zero, 0, []event.Event{ts})
	require.True(t, e0.Verify(zero))

	e0.Events = []event.Event{witness}
	assert.True(t, ts.Verify())
	assert.True(t, witness.Verify())
	assert.False(t, e0.Verify(zero))
	assert.ErrorIs(t, e0.Check(zero), ErrIDMismatch)
}
