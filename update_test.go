package ics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: opening an existing version-2 file with "rw", changing a
// dimension order and closing rewrites the header while the body bytes
// survive unchanged at the recorded offset.
func TestUpdateRewritesHeaderKeepsBody(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w2", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)

	d, err := Open(name, "rw")
	require.NoError(t, err)
	assert.Equal(t, FileModeUpdate, d.FileMode)
	require.NoError(t, d.SetOrder(0, "q", "q-position"))
	require.NoError(t, d.Close())

	// No temporary left behind.
	_, err = os.Stat(name + ".tmp")
	assert.True(t, os.IsNotExist(err))

	r, err := Open(name, "r")
	require.NoError(t, err)
	defer r.Close()
	order, label, err := r.GetOrder(0)
	require.NoError(t, err)
	assert.Equal(t, "q", order)
	assert.Equal(t, "q-position", label)

	got := make([]byte, 24)
	require.NoError(t, r.GetData(got))
	assert.Equal(t, payload, got)

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, payload, raw[r.SrcOffset:])
}

func TestUpdateVersion1HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)
	idsBefore, err := os.ReadFile(filepath.Join(dir, "img.ids"))
	require.NoError(t, err)

	d, err := Open(name, "rw")
	require.NoError(t, err)
	require.NoError(t, d.SetPosition(1, 2.5, 0.25, "micron"))
	require.NoError(t, d.Close())

	idsAfter, err := os.ReadFile(filepath.Join(dir, "img.ids"))
	require.NoError(t, err)
	assert.Equal(t, idsBefore, idsAfter)

	r, err := Open(name, "r")
	require.NoError(t, err)
	defer r.Close()
	origin, scale, units, err := r.GetPosition(1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, origin)
	assert.Equal(t, 0.25, scale)
	assert.Equal(t, "micron", units)
}

// Property: an interrupted header rewrite in update mode restores the
// original file byte for byte.
func TestUpdateRollback(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w2", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)
	before, err := os.ReadFile(name)
	require.NoError(t, err)

	d, err := Open(name, "rw")
	require.NoError(t, err)
	// Sabotage the record so the header rewrite fails after the rename.
	d.Dimensions = 0
	err = d.Close()
	require.Error(t, err)

	after, rerr := os.ReadFile(name)
	require.NoError(t, rerr)
	assert.Equal(t, before, after)
	_, serr := os.Stat(name + ".tmp")
	assert.True(t, os.IsNotExist(serr))
}

func TestUpdateReadThenRewrite(t *testing.T) {
	// A streaming read left open at update close is finalised implicitly.
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w2", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)

	d, err := Open(name, "rw")
	require.NoError(t, err)
	row := make([]byte, 8)
	require.NoError(t, d.GetDataBlock(row))
	assert.Equal(t, payload[:8], row)
	require.NoError(t, d.Close())

	r, err := Open(name, "r")
	require.NoError(t, err)
	defer r.Close()
	got := make([]byte, 24)
	require.NoError(t, r.GetData(got))
	assert.Equal(t, payload, got)
}
