package ics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packCodes packs LZW codes LSB-first at the given width.
func packCodes(codes []int, nBits int) []byte {
	var out []byte
	bitPos := 0
	for _, c := range codes {
		for i := 0; i < nBits; i++ {
			if bitPos>>3 >= len(out) {
				out = append(out, 0)
			}
			if c>>i&1 == 1 {
				out[bitPos>>3] |= 1 << (bitPos & 7)
			}
			bitPos++
		}
	}
	return out
}

// writeCompressFixture replaces the dataset's .ids with a .ids.Z holding
// the given code stream, so the sidecar probing selects the legacy
// codec.
func writeCompressFixture(t *testing.T, dir string, body []byte) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(dir, "img.ids")))
	z := append([]byte{0x1f, 0x9d, 0x90}, body...) // block mode, max 16 bits
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.ids.Z"), z, 0666))
}

func TestCompressLiteralCodes(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint8, []int{24}, payload, ComprUncompressed, 0)

	codes := make([]int, len(payload))
	for i, b := range payload {
		codes[i] = int(b)
	}
	writeCompressFixture(t, dir, packCodes(codes, 9))

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()
	got := make([]byte, 24)
	require.NoError(t, d.GetData(got))
	assert.Equal(t, payload, got)
	assert.Equal(t, ComprCompress, d.Compression)
}

func TestCompressDictionaryCodes(t *testing.T) {
	// "ababab" as the code sequence a, b, <ab>, <ab>.
	dir := t.TempDir()
	payload := []byte("ababab")
	name := writeDataset(t, dir, "img", "w1", TypeUint8, []int{6}, payload, ComprUncompressed, 0)
	writeCompressFixture(t, dir, packCodes([]int{'a', 'b', 257, 257}, 9))

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()
	got := make([]byte, 6)
	require.NoError(t, d.GetData(got))
	assert.Equal(t, payload, got)
}

func TestCompressKwKwK(t *testing.T) {
	// "aaa" exercises the code-defined-right-now case: a, <aa>.
	dir := t.TempDir()
	payload := []byte("aaa")
	name := writeDataset(t, dir, "img", "w1", TypeUint8, []int{3}, payload, ComprUncompressed, 0)
	writeCompressFixture(t, dir, packCodes([]int{'a', 257}, 9))

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()
	got := make([]byte, 3)
	require.NoError(t, d.GetData(got))
	assert.Equal(t, payload, got)
}

func TestCompressClearCode(t *testing.T) {
	// The encoder pads to a group of eight codes when it emits a clear;
	// the reader must skip the same padding.
	dir := t.TempDir()
	payload := []byte("aba")
	name := writeDataset(t, dir, "img", "w1", TypeUint8, []int{3}, payload, ComprUncompressed, 0)

	seg1 := packCodes([]int{'a', 'b', lzwClear}, 9)
	for len(seg1) < 9 { // pad to the 8-code group boundary
		seg1 = append(seg1, 0)
	}
	body := append(seg1, packCodes([]int{'a'}, 9)...)
	writeCompressFixture(t, dir, body)

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()
	got := make([]byte, 3)
	require.NoError(t, d.GetData(got))
	assert.Equal(t, payload, got)
}

func TestCompressBlocksNotAllowed(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint8, []int{24}, payload, ComprUncompressed, 0)
	codes := make([]int, len(payload))
	for i, b := range payload {
		codes[i] = int(b)
	}
	writeCompressFixture(t, dir, packCodes(codes, 9))

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()

	got := make([]byte, 24)
	require.NoError(t, d.GetDataBlock(got))
	assert.Equal(t, payload, got)
	// The legacy codec is single shot: no further blocks, no seeks.
	assert.Equal(t, ErrBlockNotAllowed, d.GetDataBlock(make([]byte, 1)))
	assert.Equal(t, ErrBlockNotAllowed, d.SkipDataBlock(4))
}

func TestCompressBadMagic(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(8)
	name := writeDataset(t, dir, "img", "w1", TypeUint8, []int{8}, payload, ComprUncompressed, 0)
	require.NoError(t, os.Remove(filepath.Join(dir, "img.ids")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.ids.Z"), []byte{0x1f, 0x00, 0x90, 0x01}, 0666))

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, ErrCorruptedStream, d.GetData(make([]byte, 8)))
}

func TestCompressTruncated(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint8, []int{24}, payload, ComprUncompressed, 0)
	writeCompressFixture(t, dir, packCodes([]int{0, 1, 2}, 9))

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, ErrEndOfStream, d.GetData(make([]byte, 24)))
}
