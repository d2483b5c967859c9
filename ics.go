// Package ics reads and writes Image Cytometry Standard (ICS) datasets:
// a text header describing an N-dimensional array of numeric samples,
// plus the raw sample bytes either in a companion .ids file (version 1)
// or embedded in the .ics file itself (version 2). Bodies may be
// uncompressed, gzip compressed, or (reading only) compressed with the
// historical compress(1) scheme.
package ics

import (
	"os"
	"path/filepath"
	"strings"
)

// MaxDimensions is the largest number of dimensions a dataset can carry.
const MaxDimensions = 10

// icsBufSize is the scratch size used by the streaming codecs.
const icsBufSize = 16 * 1024

// FileMode is the major state of an open dataset.
type FileMode int

// Enumeration of the file modes.
const (
	FileModeWrite FileMode = iota
	FileModeRead
	FileModeUpdate
)

// Compression enumerates the body encodings.
type Compression int

// Enumeration of the compression methods.
const (
	ComprUncompressed Compression = iota
	ComprGzip
	ComprCompress
)

func (c Compression) String() string {
	switch c {
	case ComprUncompressed:
		return "uncompressed"
	case ComprGzip:
		return "gzip"
	case ComprCompress:
		return "compress"
	}
	return "unknown"
}

// Dimension describes one axis of the image.
type Dimension struct {
	Size   int
	Order  string
	Label  string
	Origin float64
	Scale  float64
	Unit   string
}

// Imel describes the image element (pixel/voxel) representation.
type Imel struct {
	DataType DataType
	SigBits  int
	Origin   float64
	Scale    float64
	Unit     string
}

// Dataset is an open ICS dataset. Allocate one with Open and release it
// with Close; Close flushes pending writes first. A Dataset must not be
// shared between goroutines.
type Dataset struct {
	Version     int
	FileMode    FileMode
	Filename    string
	SrcFile     string
	SrcOffset   int64
	Imel        Imel
	Dimensions  int
	Dim         [MaxDimensions]Dimension
	Coord       string
	ScilType    string
	ByteOrder   [MaxImelSize]int
	Compression Compression
	CompLevel   int

	forceLocale bool

	// write-side source: exactly one of data or SrcFile, set once
	data        []byte
	dataStrides []int

	// non-nil precisely while a streaming read is in flight
	blockRead *blockRead
}

// Open opens an ICS dataset. The mode string is one of "r", "w" or "rw",
// optionally with "f" (force filename, skip suffix synthesis), "l" (do
// not force the C locale) and one of "1" or "2" (format version, used
// when writing) appended; each character may appear once. "rw" opens an
// existing dataset for updating its metadata.
func Open(filename, mode string) (*Dataset, error) {
	version := 0
	forceName := false
	forceLocale := true
	reading := false
	writing := false
	for _, c := range mode {
		switch c {
		case 'r':
			if reading {
				return nil, ErrIllParameter
			}
			reading = true
		case 'w':
			if writing {
				return nil, ErrIllParameter
			}
			writing = true
		case 'f':
			if forceName {
				return nil, ErrIllParameter
			}
			forceName = true
		case 'l':
			if !forceLocale {
				return nil, ErrIllParameter
			}
			forceLocale = false
		case '1':
			if version != 0 {
				return nil, ErrIllParameter
			}
			version = 1
		case '2':
			if version != 0 {
				return nil, ErrIllParameter
			}
			version = 2
		default:
			return nil, ErrIllParameter
		}
	}

	if reading {
		d := new(Dataset)
		d.init()
		if err := d.readIcs(filename, forceName, forceLocale); err != nil {
			return nil, err
		}
		if writing {
			d.FileMode = FileModeUpdate
		} else {
			d.FileMode = FileModeRead
		}
		return d, nil
	}
	if writing {
		d := new(Dataset)
		d.init()
		d.FileMode = FileModeWrite
		if version != 0 {
			d.Version = version
		}
		d.Filename = icsName(filename, forceName)
		d.forceLocale = forceLocale
		return d, nil
	}
	// missing both "r" and "w"
	return nil, ErrIllParameter
}

// init installs the defaults for a fresh dataset record.
func (d *Dataset) init() {
	d.Version = 1
	d.FileMode = FileModeWrite
	d.Compression = ComprUncompressed
	d.CompLevel = 0
	d.Imel.Scale = 1.0
	for i := range d.Dim {
		d.Dim[i].Scale = 1.0
	}
	d.forceLocale = true
}

// Close releases the dataset. In write mode it emits the header and the
// body; in update mode it rewrites the header in place, preserving an
// embedded body via a temporary sibling file. Any in-flight streaming
// read is finalised first.
func (d *Dataset) Close() error {
	var err error
	switch d.FileMode {
	case FileModeRead:
		if d.blockRead != nil {
			err = d.closeIds()
		}
	case FileModeWrite:
		err = d.writeIcs()
		if err == nil {
			err = d.writeIds()
		}
	case FileModeUpdate:
		if d.blockRead != nil {
			err = d.closeIds()
		}
		needCopy := d.Version == 2 && d.SrcFile == d.Filename
		tmpname := d.Filename + ".tmp"
		renamed := false
		if needCopy && err == nil {
			// Clearing the source pointer makes the header end with the
			// "end" keyword, after which the body will be re-appended.
			d.SrcFile = ""
			if renameErr := os.Rename(d.Filename, tmpname); renameErr != nil {
				err = ErrFTempMoveIcs
			} else {
				renamed = true
			}
		}
		if err == nil {
			err = d.writeIcs()
		}
		if err == nil && renamed {
			err = copyIds(tmpname, d.SrcOffset, d.Filename)
			if err == nil {
				os.Remove(tmpname)
			}
		}
		if err != nil && renamed {
			// Put the original file back.
			os.Remove(d.Filename)
			os.Rename(tmpname, d.Filename)
		}
	}
	return err
}

// icsName synthesises the .ics header filename, unless force is set.
func icsName(filename string, force bool) string {
	if force {
		return filename
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ics":
		return filename
	case ".ids":
		return filename[:len(filename)-4] + ".ics"
	}
	return filename + ".ics"
}

// idsName synthesises the version-1 binary filename from the header
// filename, replacing its extension.
func idsName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".ids"
}

// Default order names and display labels for the first dimensions.
var (
	defaultOrders = []string{"x", "y", "z", "t", "probe"}
	defaultLabels = []string{"x-position", "y-position", "z-position", "time", "probe"}
)
