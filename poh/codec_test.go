package poh

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LICODX/rnr-poh/pkg/core"
	"github.com/LICODX/rnr-poh/pkg/event"
)

func TestEntriesRLP(t *testing.T) {
	start := core.HashBytes([]byte("wire"))
	entries := buildChain(t, start, 6)

	data, err := EncodeEntries(entries)
	require.NoError(t, err)

	decoded, err := DecodeEntries(data)
	require.NoError(t, err)
	require.Len(t, decoded, len(entries))
	assert.Equal(t, entries, decoded)
	assert.True(t, VerifyEntries(start, decoded))
}

func TestEntryRLPLayout(t *testing.T) {
	tick := NewTick(7, core.HashBytes([]byte("x")))
	data, err := rlp.EncodeToBytes(tick)
	require.NoError(t, err)

	var raw struct {
		NumHashes uint64
		ID        core.Hash
		Events    []rlp.RawValue
	}
	require.NoError(t, rlp.DecodeBytes(data, &raw))
	assert.Equal(t, uint64(7), raw.NumHashes)
	assert.Equal(t, tick.ID, raw.ID)
	assert.Empty(t, raw.Events)
}

func TestEntryRLPRejectsUnknownKind(t *testing.T) {
	bad := struct {
		NumHashes uint64
		ID        core.Hash
		Events    []event.Envelope
	}{
		NumHashes: 1,
		Events:    []event.Envelope{{Kind: 7, Payload: rlp.EmptyList}},
	}
	data, err := rlp.EncodeToBytes(&bad)
	require.NoError(t, err)

	var e Entry
	err = rlp.DecodeBytes(data, &e)
	assert.ErrorIs(t, err, event.ErrUnknownKind)
}

func TestEntryJSON(t *testing.T) {
	start := core.HashBytes([]byte("json"))
	entries := buildChain(t, start, 4)

	for _, e := range entries {
		data, err := json.Marshal(e)
		require.NoError(t, err)

		var decoded Entry
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, e.NumHashes, decoded.NumHashes)
		assert.Equal(t, e.ID, decoded.ID)
		assert.Len(t, decoded.Events, len(e.Events))
	}

	var out []Entry
	for _, e := range entries {
		data, err := json.Marshal(e)
		require.NoError(t, err)
		var decoded Entry
		require.NoError(t, json.Unmarshal(data, &decoded))
		out = append(out, decoded)
	}
	assert.True(t, VerifyEntries(start, out))
}
