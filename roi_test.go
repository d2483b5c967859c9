package ics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROIOffset(t *testing.T) {
	// Scenario: (u16, [4,3]) with offset=[1,0], size=[2,3]: linear byte
	// positions 2,3,4,5, 10,11,12,13, 18,19,20,21.
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()

	got := make([]byte, 12)
	require.NoError(t, d.GetROIData([]int{1, 0}, []int{2, 3}, []int{1, 1}, got))
	want := []byte{2, 3, 4, 5, 10, 11, 12, 13, 18, 19, 20, 21}
	assert.Equal(t, want, got)
}

func TestROISampling(t *testing.T) {
	// Scenario: sampling=[2,1] over the whole image shrinks dimension 0
	// to two samples per row.
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()

	got := make([]byte, 12)
	require.NoError(t, d.GetROIData(nil, nil, []int{2, 1}, got))
	want := []byte{0, 1, 4, 5, 8, 9, 12, 13, 16, 17, 20, 21}
	assert.Equal(t, want, got)
}

// gatherROI extracts the same region from a full contiguous image using
// index arithmetic only, as the reference for GetROIData.
func gatherROI(full []byte, dims, offset, size, sampling []int, imelSize int) []byte {
	stride := make([]int, len(dims))
	stride[0] = 1
	for i := 1; i < len(dims); i++ {
		stride[i] = stride[i-1] * dims[i-1]
	}
	var out []byte
	pos := make([]int, len(dims))
	copy(pos, offset)
	for {
		for x := offset[0]; x < offset[0]+size[0]; x += sampling[0] {
			at := x * stride[0]
			for i := 1; i < len(dims); i++ {
				at += pos[i] * stride[i]
			}
			out = append(out, full[at*imelSize:(at+1)*imelSize]...)
		}
		i := 1
		for ; i < len(dims); i++ {
			pos[i] += sampling[i]
			if pos[i] < offset[i]+size[i] {
				break
			}
			pos[i] = offset[i]
		}
		if i == len(dims) {
			break
		}
	}
	return out
}

// Property: for any ROI, GetROIData returns the same bytes as gathering
// them out of a full GetData read.
func TestROIEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for _, compr := range []Compression{ComprUncompressed, ComprGzip} {
		for trial := 0; trial < 20; trial++ {
			dims := []int{2 + rng.Intn(6), 2 + rng.Intn(5), 1 + rng.Intn(4)}
			dt := TypeUint16
			n := dt.Size()
			for _, s := range dims {
				n *= s
			}
			payload := make([]byte, n)
			rng.Read(payload)

			dir := t.TempDir()
			name := writeDataset(t, dir, "img", "w1", dt, dims, payload, compr, 6)

			offset := make([]int, 3)
			size := make([]int, 3)
			sampling := make([]int, 3)
			for i := range dims {
				offset[i] = rng.Intn(dims[i])
				size[i] = 1 + rng.Intn(dims[i]-offset[i])
				sampling[i] = 1 + rng.Intn(3)
			}

			want := gatherROI(payload, dims, offset, size, sampling, dt.Size())
			d, err := Open(name, "r")
			require.NoError(t, err)
			got := make([]byte, len(want))
			err = d.GetROIData(offset, size, sampling, got)
			require.NoError(t, err, "compr=%v dims=%v offset=%v size=%v sampling=%v",
				compr, dims, offset, size, sampling)
			require.NoError(t, d.Close())
			assert.Equal(t, want, got, "compr=%v dims=%v offset=%v size=%v sampling=%v",
				compr, dims, offset, size, sampling)
		}
	}
}

func TestROIDefaults(t *testing.T) {
	// Nil offset, size and sampling select the whole image.
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()
	got := make([]byte, 24)
	require.NoError(t, d.GetROIData(nil, nil, nil, got))
	assert.Equal(t, payload, got)
}

func TestROIErrors(t *testing.T) {
	dir := t.TempDir()
	payload := seqBytes(24)
	name := writeDataset(t, dir, "img", "w1", TypeUint16, []int{4, 3}, payload, ComprUncompressed, 0)

	d, err := Open(name, "r")
	require.NoError(t, err)
	defer d.Close()

	var roitests = []struct {
		name     string
		offset   []int
		size     []int
		sampling []int
		destLen  int
		want     error
	}{
		{"outside image", []int{3, 0}, []int{2, 3}, nil, 12, ErrIllegalROI},
		{"zero sampling", nil, nil, []int{0, 1}, 24, ErrIllegalROI},
		{"buffer too small", []int{0, 0}, []int{4, 3}, nil, 23, ErrBufferTooSmall},
	}
	for _, rt := range roitests {
		err := d.GetROIData(rt.offset, rt.size, rt.sampling, make([]byte, rt.destLen))
		if err != rt.want {
			t.Errorf("%s: got %v, want %v", rt.name, err, rt.want)
		}
	}

	// An oversize buffer completes the read but warns.
	big := make([]byte, 30)
	err = d.GetROIData(nil, nil, nil, big)
	assert.Equal(t, ErrOutputNotFilled, err)
	assert.True(t, IsWarning(err))
	assert.Equal(t, seqBytes(24), big[:24])
}
