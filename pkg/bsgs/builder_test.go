package bsgs

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhunter/bsgs/pkg/ecc"
)

func TestBuildAndLoad(t *testing.T) {
	dir := t.TempDir()

	const m = 500
	b := NewBuilder(dir, 4)
	parts, entries, err := b.Build(m)
	require.NoError(t, err)
	assert.Equal(t, 1, parts)
	assert.Equal(t, uint64(m), entries)
	assert.Equal(t, uint64(m), b.Steps())

	table, err := LoadTable(dir, nil)
	require.NoError(t, err)
	require.Equal(t, m, table.Len())

	// Spot-check indices across the worker lanes, including both ends.
	for _, i := range []uint64{0, 1, 2, 124, 125, 250, 499} {
		p := ecc.ScalarBaseMult(new(big.Int).SetUint64(i))
		fp := FingerprintOf(ecc.CompressHex(p))
		assert.Contains(t, table.Lookup(fp), i, "baby index %d", i)
	}
}

func TestBuildSingleEntry(t *testing.T) {
	dir := t.TempDir()

	b := NewBuilder(dir, 8)
	parts, entries, err := b.Build(1)
	require.NoError(t, err)
	assert.Equal(t, 1, parts)
	assert.Equal(t, uint64(1), entries)

	table, err := LoadTable(dir, nil)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	// Index 0 is the identity point's fingerprint.
	fp := FingerprintOf(ecc.CompressHex(ecc.Infinity()))
	assert.Contains(t, table.Lookup(fp), uint64(0))
}

func TestBuildDeletesStaleShards(t *testing.T) {
	dir := t.TempDir()

	b := NewBuilder(dir, 2)
	_, _, err := b.Build(50)
	require.NoError(t, err)

	// A rebuild with fewer steps must not leave the old entries behind.
	_, entries, err := b.Build(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), entries)

	table, err := LoadTable(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, table.Len())
}

func TestBuildRejectsZeroSteps(t *testing.T) {
	b := NewBuilder(t.TempDir(), 1)
	_, _, err := b.Build(0)
	assert.Error(t, err)
}
