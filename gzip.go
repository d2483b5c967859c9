package ics

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"runtime"

	"github.com/klauspost/compress/flate"
)

// The body of a gzip-compressed IDS stream is a minimal gzip envelope:
// the two magic bytes, the deflate method byte, a zero flags byte, five
// zero bytes (mtime, xflags) and the OS code, then a raw deflate
// stream, then the little-endian CRC-32 and length of the uncompressed
// data. No extra field, no name, no comment, no header CRC.

const (
	gzMagic1        = 0x1f
	gzMagic2        = 0x8b
	gzMethodDeflate = 8

	// gzip flag byte
	gzHeadCRC    = 0x02
	gzExtraField = 0x04
	gzOrigName   = 0x08
	gzComment    = 0x10
	gzReserved   = 0xe0
)

func gzOSCode() byte {
	if runtime.GOOS == "windows" {
		return 0x0b
	}
	return 0x03 // assume Unix
}

func writeGzipHeader(f *os.File) error {
	hdr := [10]byte{gzMagic1, gzMagic2, gzMethodDeflate, 0, 0, 0, 0, 0, 0, gzOSCode()}
	if _, err := f.Write(hdr[:]); err != nil {
		return ErrFWriteIds
	}
	return nil
}

// writeGzipTrailer writes the CRC and the original data length. The
// length is kept as a 32 bit value for compatibility, truncating
// oversize inputs modulo 2^32.
func writeGzipTrailer(f *os.File, crc uint32, totalCount int64) error {
	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc)
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(totalCount))
	if _, err := f.Write(trailer[:]); err != nil {
		return ErrFWriteIds
	}
	return nil
}

// writeZip writes src as one gzip-framed deflate stream. Input is fed in
// chunks of the scratch size with the CRC updated per chunk.
func writeZip(src []byte, f *os.File, level int) error {
	fw, err := flate.NewWriter(f, level)
	if err != nil {
		return ErrCompressionProblem
	}
	if err := writeGzipHeader(f); err != nil {
		return err
	}
	crc := uint32(0)
	for done := 0; done < len(src); {
		n := len(src) - done
		if n > icsBufSize {
			n = icsBufSize
		}
		chunk := src[done : done+n]
		crc = crc32.Update(crc, crc32.IEEETable, chunk)
		if _, werr := fw.Write(chunk); werr != nil {
			return ErrFWriteIds
		}
		done += n
	}
	if err := fw.Close(); err != nil {
		return ErrCompressionProblem
	}
	return writeGzipTrailer(f, crc, int64(len(src)))
}

// writeZipWithStrides writes a gzip-framed deflate stream gathered
// through the caller's element strides. Contiguous lines are fed
// zero-copy; otherwise a per-line scratch is populated. The CRC is
// updated line by line.
func writeZipWithStrides(src []byte, dims, stride []int, nBytes int, f *os.File, level int) error {
	fw, err := flate.NewWriter(f, level)
	if err != nil {
		return ErrCompressionProblem
	}
	if err := writeGzipHeader(f); err != nil {
		return err
	}
	contiguousLine := stride[0] == 1
	var lineBuf []byte
	if !contiguousLine {
		lineBuf = make([]byte, dims[0]*nBytes)
	}
	crc := uint32(0)
	totalCount := int64(0)
	w := newLineWalker(dims)
	for {
		data := w.dataOffset(stride) * nBytes
		var line []byte
		if contiguousLine {
			line = src[data : data+dims[0]*nBytes]
		} else {
			for j := 0; j < dims[0]; j++ {
				copy(lineBuf[j*nBytes:(j+1)*nBytes], src[data:data+nBytes])
				data += stride[0] * nBytes
			}
			line = lineBuf
		}
		crc = crc32.Update(crc, crc32.IEEETable, line)
		totalCount += int64(len(line))
		if _, werr := fw.Write(line); werr != nil {
			return ErrFWriteIds
		}
		if !w.advance() {
			break
		}
	}
	if err := fw.Close(); err != nil {
		return ErrCompressionProblem
	}
	return writeGzipTrailer(f, crc, totalCount)
}

// zipReadState is the open inflate context of a streaming gzip read.
type zipReadState struct {
	br       *bufio.Reader
	fr       io.ReadCloser
	crc      uint32
	totalOut int64
	eos      bool
}

// openZip checks the gzip header and sets up the inflate context. The
// input buffer is read through br so that unused input can be handed
// back to the file on close.
func (d *Dataset) openZip() error {
	br := d.blockRead
	zr := bufio.NewReaderSize(br.file, icsBufSize)

	hdr := make([]byte, 4)
	if _, err := io.ReadFull(zr, hdr); err != nil {
		return ErrCorruptedStream
	}
	if hdr[0] != gzMagic1 || hdr[1] != gzMagic2 {
		return ErrCorruptedStream
	}
	method, flags := hdr[2], hdr[3]
	if method != gzMethodDeflate || flags&gzReserved != 0 {
		return ErrCorruptedStream
	}
	// Discard time, xflags and OS code.
	if _, err := zr.Discard(6); err != nil {
		return ErrCorruptedStream
	}
	if flags&gzExtraField != 0 {
		var lenBytes [2]byte
		if _, err := io.ReadFull(zr, lenBytes[:]); err != nil {
			return ErrCorruptedStream
		}
		if _, err := zr.Discard(int(binary.LittleEndian.Uint16(lenBytes[:]))); err != nil {
			return ErrCorruptedStream
		}
	}
	if flags&gzOrigName != 0 {
		if _, err := zr.ReadBytes(0); err != nil {
			return ErrCorruptedStream
		}
	}
	if flags&gzComment != 0 {
		if _, err := zr.ReadBytes(0); err != nil {
			return ErrCorruptedStream
		}
	}
	if flags&gzHeadCRC != 0 {
		if _, err := zr.Discard(2); err != nil {
			return ErrCorruptedStream
		}
	}

	br.zip = &zipReadState{br: zr, fr: flate.NewReader(zr)}
	return nil
}

// closeZip tears down the inflate context. If the stream did not run to
// its end, the underlying file is rewound by the amount of buffered but
// unconsumed input, so the file offset reflects only what was used.
func (d *Dataset) closeZip() error {
	z := d.blockRead.zip
	err := z.fr.Close()
	if !z.eos {
		d.blockRead.file.Seek(-int64(z.br.Buffered()), io.SeekCurrent)
	}
	d.blockRead.zip = nil
	if err != nil {
		return ErrDecompressionProblem
	}
	return nil
}

// readZipBlock inflates exactly len(dest) bytes into dest, keeping the
// running CRC over the produced bytes. When the deflate stream ends it
// reads the trailer and verifies both the CRC and the length; either
// mismatch is a corrupted stream. The file is then rewound past the
// still-buffered input so its offset sits just past the trailer.
func (d *Dataset) readZipBlock(dest []byte) error {
	z := d.blockRead.zip
	if z.eos {
		if len(dest) == 0 {
			return nil
		}
		return ErrEndOfStream
	}
	todo := dest
	for len(todo) > 0 {
		n, err := z.fr.Read(todo)
		if n > 0 {
			z.crc = crc32.Update(z.crc, crc32.IEEETable, todo[:n])
			z.totalOut += int64(n)
			todo = todo[n:]
		}
		if err == io.EOF {
			// All the data has been decompressed: check CRC and
			// original data size.
			if terr := z.verifyTrailer(); terr != nil {
				return terr
			}
			z.eos = true
			d.blockRead.file.Seek(-int64(z.br.Buffered()), io.SeekCurrent)
			if len(todo) > 0 {
				return ErrEndOfStream
			}
			return nil
		}
		if err != nil {
			switch err.(type) {
			case flate.CorruptInputError:
				return ErrCorruptedStream
			case flate.InternalError:
				return ErrDecompressionProblem
			default:
				if err == io.ErrUnexpectedEOF {
					return ErrCorruptedStream
				}
				return ErrFReadIds
			}
		}
	}
	return nil
}

func (z *zipReadState) verifyTrailer() error {
	var trailer [8]byte
	if _, err := io.ReadFull(z.br, trailer[:]); err != nil {
		return ErrCorruptedStream
	}
	if binary.LittleEndian.Uint32(trailer[0:4]) != z.crc {
		return ErrCorruptedStream
	}
	if binary.LittleEndian.Uint32(trailer[4:8]) != uint32(z.totalOut) {
		return ErrCorruptedStream
	}
	return nil
}

// setZipBlock emulates a seek on the gzip stream. Backward seeks close
// and reopen the stream, then read and discard up to the target; forward
// seeks read and discard directly.
func (d *Dataset) setZipBlock(offset int64, whence int) error {
	z := d.blockRead.zip
	if whence == io.SeekCurrent && offset < 0 {
		offset += z.totalOut
		whence = io.SeekStart
	}
	if whence == io.SeekStart {
		if offset < 0 {
			return ErrIllParameter
		}
		if err := d.closeIds(); err != nil {
			return err
		}
		if err := d.openIds(); err != nil {
			return err
		}
		if offset == 0 {
			return nil
		}
	}

	bufsize := offset
	if bufsize > icsBufSize {
		bufsize = icsBufSize
	}
	buf := make([]byte, bufsize)
	for n := offset; n > 0; {
		chunk := n
		if chunk > bufsize {
			chunk = bufsize
		}
		if err := d.readZipBlock(buf[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
