package ics

import (
	"io"
	"os"
)

// blockRead is the state of a streaming read of the binary body. It is
// non-nil on the dataset precisely while such a read is in flight.
type blockRead struct {
	file         *os.File
	zip          *zipReadState
	compressRead bool
}

// existFile reports whether filename can be opened for reading.
func existFile(filename string) bool {
	f, err := os.Open(filename)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// openIds opens the binary body for reading and positions the stream at
// its first byte. An already-open body stream is finalised first. For
// version-1 datasets whose .ids file is missing, the .ids.gz and .ids.Z
// siblings are probed and the compression method adjusted to match.
func (d *Dataset) openIds() error {
	if d.blockRead != nil {
		if err := d.closeIds(); err != nil {
			return err
		}
	}
	var filename string
	var offset int64
	if d.Version == 1 {
		filename = idsName(d.Filename)
		if !existFile(filename) {
			if existFile(filename + ".gz") {
				filename += ".gz"
				d.Compression = ComprGzip
			} else if existFile(filename + ".Z") {
				filename += ".Z"
				d.Compression = ComprCompress
			} else {
				return ErrFOpenIds
			}
		}
	} else {
		if d.SrcFile == "" {
			return ErrMissingData
		}
		filename = d.SrcFile
		offset = d.SrcOffset
	}

	f, err := os.Open(filename)
	if err != nil {
		return ErrFOpenIds
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return ErrFReadIds
	}
	br := &blockRead{file: f}
	d.blockRead = br

	if d.Compression == ComprGzip {
		if err := d.openZip(); err != nil {
			f.Close()
			d.blockRead = nil
			return err
		}
	}
	return nil
}

// closeIds finalises the body stream. A close failure does not mask an
// earlier codec error.
func (d *Dataset) closeIds() error {
	br := d.blockRead
	var err error
	if br.zip != nil {
		err = d.closeZip()
	}
	if br.file != nil {
		if cerr := br.file.Close(); cerr != nil && err == nil {
			err = ErrFCloseIds
		}
	}
	d.blockRead = nil
	return err
}

// readIdsBlock reads exactly len(dest) decoded bytes from the body and
// rewrites their byte order to the host's. Legacy compress bodies permit
// a single read only.
func (d *Dataset) readIdsBlock(dest []byte) error {
	br := d.blockRead
	var err error
	switch d.Compression {
	case ComprUncompressed:
		if _, rerr := io.ReadFull(br.file, dest); rerr != nil {
			if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
				err = ErrEndOfStream
			} else {
				err = ErrFReadIds
			}
		}
	case ComprGzip:
		err = d.readZipBlock(dest)
	case ComprCompress:
		if br.compressRead {
			err = ErrBlockNotAllowed
		} else {
			err = d.readCompress(dest)
			br.compressRead = true
		}
	default:
		err = ErrUnknownCompression
	}
	if err == nil {
		err = reorderIds(dest, d.ByteOrder, d.Imel.DataType.reorderSize())
	}
	return err
}

// skipIdsBlock skips n decoded bytes of the body.
func (d *Dataset) skipIdsBlock(n int64) error {
	return d.setIdsBlock(n, io.SeekCurrent)
}

// setIdsBlock repositions the body stream. Plain bodies seek directly;
// gzip bodies emulate the seek by rewinding and/or reading and
// discarding. whence SEEK_END is not supported; legacy compress bodies
// refuse all seeks.
func (d *Dataset) setIdsBlock(offset int64, whence int) error {
	br := d.blockRead
	switch d.Compression {
	case ComprUncompressed:
		switch whence {
		case io.SeekStart, io.SeekCurrent:
			if _, err := br.file.Seek(offset, whence); err != nil {
				return ErrFReadIds
			}
			return nil
		default:
			return ErrIllParameter
		}
	case ComprGzip:
		switch whence {
		case io.SeekStart, io.SeekCurrent:
			return d.setZipBlock(offset, whence)
		default:
			return ErrIllParameter
		}
	case ComprCompress:
		return ErrBlockNotAllowed
	default:
		return ErrUnknownCompression
	}
}

// readIds reads the whole body in one go: open, read, close.
func (d *Dataset) readIds(dest []byte) error {
	if err := d.openIds(); err != nil {
		return err
	}
	err := d.readIdsBlock(dest)
	if cerr := d.closeIds(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// writeIds writes the binary body: to the sibling .ids file for version
// 1, appended to the .ics file itself for version 2. A version-2 dataset
// with an external source has no body to write.
func (d *Dataset) writeIds() error {
	var filename string
	appendBody := false
	if d.Version == 1 {
		filename = idsName(d.Filename)
	} else {
		if d.SrcFile != "" {
			// The data lives in another file somewhere.
			return nil
		}
		filename = d.Filename
		appendBody = true
	}
	if d.data == nil {
		return ErrMissingData
	}

	flags := os.O_WRONLY | os.O_CREATE
	if appendBody {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(filename, flags, 0666)
	if err != nil {
		return ErrFOpenIds
	}

	dims := make([]int, d.Dimensions)
	for i := range dims {
		dims[i] = d.Dim[i].Size
	}

	var werr error
	switch d.Compression {
	case ComprUncompressed:
		if d.dataStrides != nil {
			werr = writePlainWithStrides(d.data, dims, d.dataStrides, d.Imel.DataType.Size(), f)
		} else {
			werr = writePlainChunked(d.data, f)
		}
	case ComprGzip:
		if d.dataStrides != nil {
			werr = writeZipWithStrides(d.data, dims, d.dataStrides, d.Imel.DataType.Size(), f, d.CompLevel)
		} else {
			werr = writeZip(d.data, f, d.CompLevel)
		}
	default:
		werr = ErrUnknownCompression
	}

	if cerr := f.Close(); cerr != nil && werr == nil {
		werr = ErrFCloseIds
	}
	return werr
}

// writePlainChunked writes src contiguously, in blocks of at most 1 GiB.
// Some C library fwrite implementations misbehave on larger single
// writes; the chunking is cheap and kept for the same reason.
func writePlainChunked(src []byte, f *os.File) error {
	const chunk = 1024 * 1024 * 1024
	for len(src) > 0 {
		n := len(src)
		if n > chunk {
			n = chunk
		}
		if _, err := f.Write(src[:n]); err != nil {
			return ErrFWriteIds
		}
		src = src[n:]
	}
	return nil
}

// writePlainWithStrides writes uncompressed data gathered through the
// caller's element strides, one line along dimension 0 at a time.
func writePlainWithStrides(src []byte, dims, stride []int, nBytes int, f *os.File) error {
	w := newLineWalker(dims)
	for {
		data := w.dataOffset(stride) * nBytes
		if stride[0] == 1 {
			if _, err := f.Write(src[data : data+dims[0]*nBytes]); err != nil {
				return ErrFWriteIds
			}
		} else {
			for j := 0; j < dims[0]; j++ {
				if _, err := f.Write(src[data : data+nBytes]); err != nil {
					return ErrFWriteIds
				}
				data += stride[0] * nBytes
			}
		}
		if !w.advance() {
			break
		}
	}
	return nil
}

// copyIds appends the body bytes found in infilename at inoffset to
// outfilename. Used by the update transaction to restore an embedded
// body behind a freshly written header.
func copyIds(infilename string, inoffset int64, outfilename string) error {
	in, err := os.Open(infilename)
	if err != nil {
		return ErrFCopyIds
	}
	defer in.Close()
	if _, err := in.Seek(inoffset, io.SeekStart); err != nil {
		return ErrFCopyIds
	}
	out, err := os.OpenFile(outfilename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return ErrFCopyIds
	}
	defer out.Close()

	buf := make([]byte, icsBufSize)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return ErrFCopyIds
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return ErrFCopyIds
		}
	}
}
