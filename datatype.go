package ics

// DataType enumerates the numeric sample kinds an ICS dataset can hold.
type DataType int

// Enumeration of the sample kinds.
const (
	TypeUnknown DataType = iota
	TypeUint8
	TypeSint8
	TypeUint16
	TypeSint16
	TypeUint32
	TypeSint32
	TypeReal32
	TypeReal64
	TypeComplex32 // pair of real32
	TypeComplex64 // pair of real64
)

// Size returns the on-disk width of one imel in bytes, or 0 for
// TypeUnknown. Complex kinds count both components.
func (dt DataType) Size() int {
	switch dt {
	case TypeUint8, TypeSint8:
		return 1
	case TypeUint16, TypeSint16:
		return 2
	case TypeUint32, TypeSint32, TypeReal32:
		return 4
	case TypeReal64, TypeComplex32:
		return 8
	case TypeComplex64:
		return 16
	}
	return 0
}

// reorderSize returns the granularity at which the byte-order engine
// rewrites samples of this kind. Complex kinds are treated as two
// interleaved components.
func (dt DataType) reorderSize() int {
	switch dt {
	case TypeComplex32:
		return 4
	case TypeComplex64:
		return 8
	}
	return dt.Size()
}

func (dt DataType) String() string {
	switch dt {
	case TypeUint8:
		return "uint8"
	case TypeSint8:
		return "sint8"
	case TypeUint16:
		return "uint16"
	case TypeSint16:
		return "sint16"
	case TypeUint32:
		return "uint32"
	case TypeSint32:
		return "sint32"
	case TypeReal32:
		return "real32"
	case TypeReal64:
		return "real64"
	case TypeComplex32:
		return "complex32"
	case TypeComplex64:
		return "complex64"
	}
	return "unknown"
}

// format/sign words used by the .ics header representation category.
func (dt DataType) format() (format, sign string) {
	switch dt {
	case TypeUint8, TypeUint16, TypeUint32:
		return "integer", "unsigned"
	case TypeSint8, TypeSint16, TypeSint32:
		return "integer", "signed"
	case TypeReal32, TypeReal64:
		return "real", "signed"
	case TypeComplex32, TypeComplex64:
		return "complex", "signed"
	}
	return "", ""
}

// dataTypeFromHeader reconstructs the sample kind from the header's
// format and sign words plus the bits entry of the sizes vector.
func dataTypeFromHeader(format, sign string, bits int) DataType {
	signed := sign != "unsigned"
	switch format {
	case "integer":
		switch bits {
		case 8:
			if signed {
				return TypeSint8
			}
			return TypeUint8
		case 16:
			if signed {
				return TypeSint16
			}
			return TypeUint16
		case 32:
			if signed {
				return TypeSint32
			}
			return TypeUint32
		}
	case "real":
		switch bits {
		case 32:
			return TypeReal32
		case 64:
			return TypeReal64
		}
	case "complex":
		switch bits {
		case 64:
			return TypeComplex32
		case 128:
			return TypeComplex64
		}
	}
	return TypeUnknown
}
