package ics

// GetData reads the whole body into dest: the body stream is opened,
// read and closed in one call. Valid in read and update modes.
func (d *Dataset) GetData(dest []byte) error {
	if err := d.modeRead(); err != nil {
		return err
	}
	if len(dest) == 0 {
		return nil
	}
	return d.readIds(dest)
}

// GetDataBlock reads the next len(dest) bytes of the body. The body
// stream is opened lazily on the first call; reads and skips may be
// interleaved. Not legal for legacy compress bodies after their single
// shot read.
func (d *Dataset) GetDataBlock(dest []byte) error {
	if err := d.modeRead(); err != nil {
		return err
	}
	if len(dest) == 0 {
		return nil
	}
	if d.blockRead == nil {
		if err := d.openIds(); err != nil {
			return err
		}
	}
	return d.readIdsBlock(dest)
}

// SkipDataBlock skips the next n bytes of the body.
func (d *Dataset) SkipDataBlock(n int64) error {
	if err := d.modeRead(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if d.blockRead == nil {
		if err := d.openIds(); err != nil {
			return err
		}
	}
	return d.skipIdsBlock(n)
}

// GetROIData reads a rectangular, optionally sub-sampled region of the
// image. Nil offset means all zero, nil size means to the end of each
// dimension, nil sampling means one. A dest smaller than the ROI is
// ErrBufferTooSmall; a larger one completes the read and reports
// ErrOutputNotFilled.
func (d *Dataset) GetROIData(offset, size, sampling []int, dest []byte) error {
	if err := d.modeRead(); err != nil {
		return err
	}
	if len(dest) == 0 {
		return nil
	}
	p := d.Dimensions
	if offset == nil {
		offset = make([]int, p)
	}
	if size == nil {
		size = make([]int, p)
		for i := 0; i < p; i++ {
			size[i] = d.Dim[i].Size - offset[i]
		}
	}
	if sampling == nil {
		sampling = make([]int, p)
		for i := 0; i < p; i++ {
			sampling[i] = 1
		}
	}
	if len(offset) != p || len(size) != p || len(sampling) != p {
		return ErrIllParameter
	}
	for i := 0; i < p; i++ {
		if sampling[i] < 1 || offset[i]+size[i] > d.Dim[i].Size {
			return ErrIllegalROI
		}
	}

	imelSize := d.Imel.DataType.Size()
	roiSize := imelSize
	for i := 0; i < p; i++ {
		roiSize *= (size[i] + sampling[i] - 1) / sampling[i]
	}
	sizeConflict := false
	if len(dest) != roiSize {
		sizeConflict = true
		if len(dest) < roiSize {
			return ErrBufferTooSmall
		}
	}

	// Element strides of the stored image.
	stride := make([]int, p)
	stride[0] = 1
	for i := 1; i < p; i++ {
		stride[i] = stride[i-1] * d.Dim[i-1].Size
	}

	if err := d.openIds(); err != nil {
		return err
	}
	var err error
	bufSize := imelSize * size[0]
	out := 0
	curLoc := int64(0)
	w := newRegionWalker(p, offset, size, sampling)
	var lineBuf []byte
	if sampling[0] > 1 {
		// Read each line into a scratch, then gather every
		// sampling[0]-th imel into dest.
		lineBuf = make([]byte, bufSize)
	}
	for {
		newLoc := int64(w.lineStart(stride)) * int64(imelSize)
		if curLoc < newLoc {
			if err = d.skipIdsBlock(newLoc - curLoc); err != nil {
				break
			}
			curLoc = newLoc
		}
		if sampling[0] > 1 {
			if err = d.readIdsBlock(lineBuf); err != nil {
				break
			}
			for j := 0; j < size[0]; j += sampling[0] {
				copy(dest[out:out+imelSize], lineBuf[j*imelSize:])
				out += imelSize
			}
		} else {
			if err = d.readIdsBlock(dest[out : out+bufSize]); err != nil {
				break
			}
			out += bufSize
		}
		curLoc += int64(bufSize)
		if !w.advance() {
			break
		}
	}
	if cerr := d.closeIds(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil && sizeConflict {
		err = ErrOutputNotFilled
	}
	return err
}

// GetDataWithStrides reads the whole image into a caller-strided
// destination. Nil stride means the contiguous layout. The strides are
// in imels; dest must reach the byte address of the last imel.
func (d *Dataset) GetDataWithStrides(dest []byte, stride []int) error {
	if err := d.modeRead(); err != nil {
		return err
	}
	if len(dest) == 0 {
		return nil
	}
	p := d.Dimensions
	if stride == nil {
		stride = make([]int, p)
		stride[0] = 1
		for i := 1; i < p; i++ {
			stride[i] = stride[i-1] * d.Dim[i-1].Size
		}
	}
	if len(stride) != p {
		return ErrIllParameter
	}
	imelSize := d.Imel.DataType.Size()
	lastPixel := 0
	for i := 0; i < p; i++ {
		lastPixel += (d.Dim[i].Size - 1) * stride[i]
	}
	if (lastPixel+1)*imelSize > len(dest) {
		return ErrIllParameter
	}

	if err := d.openIds(); err != nil {
		return err
	}
	var err error
	dims := make([]int, p)
	for i := range dims {
		dims[i] = d.Dim[i].Size
	}
	bufSize := imelSize * dims[0]
	w := newLineWalker(dims)
	if stride[0] > 1 {
		lineBuf := make([]byte, bufSize)
		for {
			out := w.dataOffset(stride) * imelSize
			if err = d.readIdsBlock(lineBuf); err != nil {
				break
			}
			for j := 0; j < dims[0]; j++ {
				copy(dest[out:out+imelSize], lineBuf[j*imelSize:])
				out += stride[0] * imelSize
			}
			if !w.advance() {
				break
			}
		}
	} else {
		for {
			out := w.dataOffset(stride) * imelSize
			if err = d.readIdsBlock(dest[out : out+bufSize]); err != nil {
				break
			}
			if !w.advance() {
				break
			}
		}
	}
	if cerr := d.closeIds(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// SetData attaches src as the source for the pending write. The buffer
// is borrowed, not copied, and must stay valid and unchanged until
// Close. A length that disagrees with the layout is the non-fatal
// ErrFSizeConflict; the buffer is attached regardless.
func (d *Dataset) SetData(src []byte) error {
	if err := d.modeWrite(); err != nil {
		return err
	}
	if d.SrcFile != "" || d.data != nil {
		return ErrDuplicateData
	}
	if d.Dimensions == 0 {
		return ErrNoLayout
	}
	d.data = src
	d.dataStrides = nil
	if len(src) != d.GetDataSize() {
		return ErrFSizeConflict
	}
	return nil
}

// SetDataWithStrides attaches src with explicit element strides: how
// many imels to advance to reach the next neighbor along each dimension.
// Use it when the image is not one contiguous block or to swap
// dimensions in the file.
func (d *Dataset) SetDataWithStrides(src []byte, strides []int) error {
	if err := d.modeWrite(); err != nil {
		return err
	}
	if d.SrcFile != "" || d.data != nil {
		return ErrDuplicateData
	}
	if d.Dimensions == 0 {
		return ErrNoLayout
	}
	if len(strides) != d.Dimensions {
		return ErrIllParameter
	}
	lastPixel := 0
	for i := 0; i < d.Dimensions; i++ {
		lastPixel += (d.Dim[i].Size - 1) * strides[i]
	}
	if (lastPixel+1)*d.Imel.DataType.Size() > len(src) {
		return ErrIllParameter
	}
	d.data = src
	d.dataStrides = strides
	if len(src) != d.GetDataSize() {
		return ErrFSizeConflict
	}
	return nil
}

// SetSource names an external file and byte offset as the body of a
// version-2 dataset instead of an attached buffer. Version-1 datasets
// cannot point outside their .ids sibling.
func (d *Dataset) SetSource(fname string, offset int64) error {
	if err := d.modeWrite(); err != nil {
		return err
	}
	if d.Version == 1 {
		return ErrNotValidAction
	}
	if d.SrcFile != "" || d.data != nil {
		return ErrDuplicateData
	}
	d.SrcFile = fname
	d.SrcOffset = offset
	return nil
}

// SetCompression records the compression method and level for the
// pending write. Writing compress is not supported; it is silently
// upgraded to gzip.
func (d *Dataset) SetCompression(compression Compression, level int) error {
	if err := d.modeWrite(); err != nil {
		return err
	}
	if compression == ComprCompress {
		compression = ComprGzip
	}
	d.Compression = compression
	d.CompLevel = level
	return nil
}
