package core

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRehash(t *testing.T) {
	var zero Hash
	assert.True(t, zero.IsZero())

	one := Rehash(zero)
	assert.Equal(t, Hash(sha256.Sum256(zero[:])), one)
	assert.False(t, one.IsZero())
	assert.NotEqual(t, one, Rehash(one))
}

func TestExtendAndHash(t *testing.T) {
	var zero Hash
	data := []byte{0, 1, 2, 3}

	want := sha256.Sum256(append(zero.Bytes(), data...))
	assert.Equal(t, Hash(want), ExtendAndHash(zero, data))
	assert.NotEqual(t, Rehash(zero), ExtendAndHash(zero, data))
	// an empty buffer adds nothing to the digest
	assert.Equal(t, Rehash(zero), ExtendAndHash(zero, nil))
}

func TestHashText(t *testing.T) {
	h := HashBytes([]byte("abc"))

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `"`+h.String()+`"`, string(data))

	var decoded Hash
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, h, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("0x1234")))
	assert.Error(t, decoded.UnmarshalText([]byte("nothex")))
}

func TestEventKindNames(t *testing.T) {
	for _, k := range []EventKind{KindTransaction, KindSignature, KindTimestamp} {
		parsed, ok := ParseEventKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseEventKind("unknown")
	assert.False(t, ok)

	assert.Equal(t, EventKind(0), KindTransaction)
	assert.Equal(t, EventKind(1), KindSignature)
	assert.Equal(t, EventKind(2), KindTimestamp)
}
