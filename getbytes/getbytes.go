// Package getbytes converts between slices of the sample kinds an ICS
// dataset can hold and their raw byte representation, without copying.
// The byte views alias the original slice memory and are valid only
// while it is.
package getbytes

import (
	"unsafe"
)

// FromSliceUint8 converts a []uint8 to []byte using unsafe
func FromSliceUint8(d []uint8) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), len(d))
}

// FromSliceInt8 converts a []int8 to []byte using unsafe
func FromSliceInt8(d []int8) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), len(d))
}

// FromSliceUint16 converts a []uint16 to []byte using unsafe
func FromSliceUint16(d []uint16) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 2*len(d))
}

// FromSliceInt16 converts a []int16 to []byte using unsafe
func FromSliceInt16(d []int16) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 2*len(d))
}

// FromSliceUint32 converts a []uint32 to []byte using unsafe
func FromSliceUint32(d []uint32) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 4*len(d))
}

// FromSliceInt32 converts a []int32 to []byte using unsafe
func FromSliceInt32(d []int32) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 4*len(d))
}

// FromSliceFloat32 converts a []float32 to []byte using unsafe
func FromSliceFloat32(d []float32) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 4*len(d))
}

// FromSliceFloat64 converts a []float64 to []byte using unsafe
func FromSliceFloat64(d []float64) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 8*len(d))
}

// FromSliceComplex64 converts a []complex64 to []byte using unsafe
func FromSliceComplex64(d []complex64) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 8*len(d))
}

// FromSliceComplex128 converts a []complex128 to []byte using unsafe
func FromSliceComplex128(d []complex128) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), 16*len(d))
}

// ToSliceInt8 views a []byte as a []int8 using unsafe
func ToSliceInt8(d []byte) []int8 {
	if len(d) == 0 {
		return []int8{}
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(&d[0])), len(d))
}

// ToSliceUint16 views a []byte as a []uint16 using unsafe. The length
// of d must be a multiple of 2.
func ToSliceUint16(d []byte) []uint16 {
	if len(d) == 0 {
		return []uint16{}
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&d[0])), len(d)/2)
}

// ToSliceInt16 views a []byte as a []int16 using unsafe
func ToSliceInt16(d []byte) []int16 {
	if len(d) == 0 {
		return []int16{}
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&d[0])), len(d)/2)
}

// ToSliceUint32 views a []byte as a []uint32 using unsafe
func ToSliceUint32(d []byte) []uint32 {
	if len(d) == 0 {
		return []uint32{}
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&d[0])), len(d)/4)
}

// ToSliceInt32 views a []byte as a []int32 using unsafe
func ToSliceInt32(d []byte) []int32 {
	if len(d) == 0 {
		return []int32{}
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&d[0])), len(d)/4)
}

// ToSliceFloat32 views a []byte as a []float32 using unsafe
func ToSliceFloat32(d []byte) []float32 {
	if len(d) == 0 {
		return []float32{}
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&d[0])), len(d)/4)
}

// ToSliceFloat64 views a []byte as a []float64 using unsafe
func ToSliceFloat64(d []byte) []float64 {
	if len(d) == 0 {
		return []float64{}
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&d[0])), len(d)/8)
}

// ToSliceComplex64 views a []byte as a []complex64 using unsafe
func ToSliceComplex64(d []byte) []complex64 {
	if len(d) == 0 {
		return []complex64{}
	}
	return unsafe.Slice((*complex64)(unsafe.Pointer(&d[0])), len(d)/8)
}

// ToSliceComplex128 views a []byte as a []complex128 using unsafe
func ToSliceComplex128(d []byte) []complex128 {
	if len(d) == 0 {
		return []complex128{}
	}
	return unsafe.Slice((*complex128)(unsafe.Pointer(&d[0])), len(d)/16)
}
