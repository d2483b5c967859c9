package ics

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The .ics header is a text file of separator-delimited key/value lines.
// Its first line holds the separator characters themselves; the second
// declares the format version. The engine consumes the layout,
// representation, parameter and source categories; anything else (sensor
// metadata, history) belongs to other layers and is skipped on read.

const icsFieldSep = '\t'

// headerVersion maps the ics_version field to the format version.
func headerVersion(s string) int {
	switch s {
	case "1.0":
		return 1
	case "2.0":
		return 2
	}
	return 0
}

// readIcs parses the header of an existing dataset into d. For a
// version-2 file whose body follows the end keyword, the byte offset of
// the body is recorded as the source offset with the file itself as the
// source. The forceLocale flag is recorded only: numeric parsing through
// strconv is locale-independent already.
func (d *Dataset) readIcs(filename string, forceName, forceLocale bool) error {
	name := icsName(filename, forceName)
	d.Filename = name
	d.forceLocale = forceLocale

	f, err := os.Open(name)
	if err != nil {
		return ErrFOpenIcs
	}
	defer f.Close()

	// Lines are read manually rather than through a Scanner so the byte
	// offset of the binary body after the end keyword stays exact.
	r := bufio.NewReader(f)
	offset := int64(0)
	readLine := func() (string, error) {
		line, rerr := r.ReadString('\n')
		offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		return line, rerr
	}

	first, err := readLine()
	if err != nil && first == "" {
		return ErrNotIcsFile
	}
	sep := icsFieldSep
	if first != "" {
		sep = rune(first[0])
	}

	versionLine, err := readLine()
	if err != nil && versionLine == "" {
		return ErrNotIcsFile
	}
	vf := strings.Split(versionLine, string(sep))
	if len(vf) < 2 || vf[0] != "ics_version" {
		return ErrNotIcsFile
	}
	d.Version = headerVersion(vf[1])
	if d.Version == 0 {
		return ErrNotIcsFile
	}

	var format, sign string
	bits := 0
	sawEnd := false
	for {
		line, rerr := readLine()
		if line != "" {
			fields := strings.Split(line, string(sep))
			// Trailing separators produce empty fields.
			for len(fields) > 0 && fields[len(fields)-1] == "" {
				fields = fields[:len(fields)-1]
			}
			if len(fields) > 0 && fields[0] == "end" {
				sawEnd = true
				break
			}
			if err := d.parseHeaderLine(fields, &format, &sign, &bits); err != nil {
				return err
			}
		}
		if rerr != nil {
			break
		}
	}

	if bits == 0 {
		return ErrMissBits
	}
	d.Imel.DataType = dataTypeFromHeader(format, sign, bits)
	if d.Imel.DataType == TypeUnknown {
		return ErrUnknownDataType
	}
	if d.Imel.SigBits == 0 {
		d.Imel.SigBits = bits
	}
	for i := 0; i < d.Dimensions; i++ {
		if d.Dim[i].Order == "" {
			if i < len(defaultOrders) {
				d.Dim[i].Order = defaultOrders[i]
				d.Dim[i].Label = defaultLabels[i]
			} else {
				d.Dim[i].Order = "dim_" + strconv.Itoa(i)
				d.Dim[i].Label = d.Dim[i].Order
			}
		}
	}
	if d.Version == 2 && sawEnd && d.SrcFile == "" {
		d.SrcFile = name
		d.SrcOffset = offset
	}
	return nil
}

// parseHeaderLine folds one category line into the record. Unknown
// categories and subcategories are skipped without error; they belong to
// layers above this engine.
func (d *Dataset) parseHeaderLine(fields []string, format, sign *string, bits *int) error {
	if len(fields) < 2 {
		return nil
	}
	category, sub, values := fields[0], fields[1], fields[2:]
	switch category {
	case "filename":
		// informational; the open call names the file
	case "layout":
		return d.parseLayout(sub, values, bits)
	case "representation":
		return d.parseRepresentation(sub, values, format, sign)
	case "parameter":
		return d.parseParameter(sub, values)
	case "source":
		switch sub {
		case "file":
			if len(values) > 0 {
				d.SrcFile = values[0]
			}
		case "offset":
			if len(values) > 0 {
				v, err := strconv.ParseInt(values[0], 10, 64)
				if err != nil {
					return ErrFReadIcs
				}
				d.SrcOffset = v
			}
		}
	}
	return nil
}

func (d *Dataset) parseLayout(sub string, values []string, bits *int) error {
	switch sub {
	case "parameters":
		if len(values) < 1 {
			return ErrEmptyField
		}
		n, err := strconv.Atoi(values[0])
		if err != nil || n < 1 || n-1 > MaxDimensions {
			return ErrTooManyDims
		}
		d.Dimensions = n - 1
	case "order":
		if len(values) < 1 {
			return ErrEmptyField
		}
		// first entry is the imel ("bits") pseudo-dimension
		for i, order := range values[1:] {
			if i < MaxDimensions {
				d.Dim[i].Order = order
				if d.Dim[i].Label == "" {
					d.Dim[i].Label = order
				}
			}
		}
	case "sizes":
		if len(values) < 1 {
			return ErrMissBits
		}
		v, err := strconv.Atoi(values[0])
		if err != nil {
			return ErrMissBits
		}
		*bits = v
		for i, s := range values[1:] {
			if i < MaxDimensions {
				size, serr := strconv.Atoi(s)
				if serr != nil || size < 1 {
					return ErrFReadIcs
				}
				d.Dim[i].Size = size
			}
		}
		if d.Dimensions == 0 {
			d.Dimensions = len(values) - 1
		}
	case "significant_bits":
		if len(values) > 0 {
			v, err := strconv.Atoi(values[0])
			if err != nil {
				return ErrFReadIcs
			}
			d.Imel.SigBits = v
		}
	case "coordinates":
		if len(values) > 0 {
			d.Coord = values[0]
		}
	}
	return nil
}

func (d *Dataset) parseRepresentation(sub string, values []string, format, sign *string) error {
	switch sub {
	case "format":
		if len(values) > 0 {
			*format = values[0]
		}
	case "sign":
		if len(values) > 0 {
			*sign = values[0]
		}
	case "compression":
		if len(values) < 1 {
			return ErrEmptyField
		}
		switch values[0] {
		case "uncompressed":
			d.Compression = ComprUncompressed
		case "gzip":
			d.Compression = ComprGzip
		case "compress":
			d.Compression = ComprCompress
		default:
			return ErrUnknownCompression
		}
	case "byte_order":
		for i, v := range values {
			if i >= MaxImelSize {
				break
			}
			b, err := strconv.Atoi(v)
			if err != nil {
				return ErrFReadIcs
			}
			d.ByteOrder[i] = b
		}
	case "SCIL_TYPE":
		if len(values) > 0 {
			d.ScilType = values[0]
		}
	}
	return nil
}

func (d *Dataset) parseParameter(sub string, values []string) error {
	parse := func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ErrFReadIcs
		}
		return v, nil
	}
	switch sub {
	case "origin":
		for i, s := range values {
			v, err := parse(s)
			if err != nil {
				return err
			}
			if i == 0 {
				d.Imel.Origin = v
			} else if i-1 < MaxDimensions {
				d.Dim[i-1].Origin = v
			}
		}
	case "scale":
		for i, s := range values {
			v, err := parse(s)
			if err != nil {
				return err
			}
			if i == 0 {
				d.Imel.Scale = v
			} else if i-1 < MaxDimensions {
				d.Dim[i-1].Scale = v
			}
		}
	case "units":
		for i, s := range values {
			if i == 0 {
				d.Imel.Unit = s
			} else if i-1 < MaxDimensions {
				d.Dim[i-1].Unit = s
			}
		}
	case "labels":
		for i, s := range values {
			if i > 0 && i-1 < MaxDimensions {
				d.Dim[i-1].Label = s
			}
		}
	}
	return nil
}

// writeIcs emits the header to the dataset's .ics file, creating or
// truncating it. The end keyword is the last line, so for a version-2
// dataset without an external source the body appended afterwards by
// writeIds starts just past it; no offset is recorded here.
func (d *Dataset) writeIcs() error {
	if d.Dimensions == 0 {
		return ErrNoLayout
	}
	f, err := os.Create(d.Filename)
	if err != nil {
		return ErrFOpenIcs
	}

	w := bufio.NewWriter(f)
	sep := string(icsFieldSep)
	line := func(fields ...string) {
		w.WriteString(strings.Join(fields, sep))
		w.WriteByte('\n')
	}
	fmtFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	version := "1.0"
	if d.Version == 2 {
		version = "2.0"
	}
	base := strings.TrimSuffix(filepath.Base(d.Filename), filepath.Ext(d.Filename))

	w.WriteString(sep)
	w.WriteByte('\n')
	line("ics_version", version)
	line("filename", base)

	n := d.Dimensions
	line("layout", "parameters", strconv.Itoa(n+1))
	orders := []string{"layout", "order", "bits"}
	sizes := []string{"layout", "sizes", strconv.Itoa(8 * d.Imel.DataType.Size())}
	for i := 0; i < n; i++ {
		orders = append(orders, d.Dim[i].Order)
		sizes = append(sizes, strconv.Itoa(d.Dim[i].Size))
	}
	line(orders...)
	line(sizes...)
	sigBits := d.Imel.SigBits
	if sigBits == 0 {
		sigBits = 8 * d.Imel.DataType.Size()
	}
	line("layout", "significant_bits", strconv.Itoa(sigBits))
	coord := d.Coord
	if coord == "" {
		coord = CoordVideo
	}
	line("layout", "coordinates", coord)

	format, sign := d.Imel.DataType.format()
	line("representation", "format", format)
	line("representation", "sign", sign)
	line("representation", "compression", d.Compression.String())
	order := d.ByteOrder
	reorderBytes := d.Imel.DataType.reorderSize()
	if order[0] == 0 {
		fillByteOrder(reorderBytes, order[:])
	}
	bo := []string{"representation", "byte_order"}
	for i := 0; i < reorderBytes; i++ {
		bo = append(bo, strconv.Itoa(order[i]))
	}
	line(bo...)
	if d.ScilType != "" {
		line("representation", "SCIL_TYPE", d.ScilType)
	}

	origins := []string{"parameter", "origin", fmtFloat(d.Imel.Origin)}
	scales := []string{"parameter", "scale", fmtFloat(d.Imel.Scale)}
	imelUnit := d.Imel.Unit
	if imelUnit == "" {
		imelUnit = UnitsRelative
	}
	units := []string{"parameter", "units", imelUnit}
	labels := []string{"parameter", "labels", "intensity"}
	for i := 0; i < n; i++ {
		origins = append(origins, fmtFloat(d.Dim[i].Origin))
		scales = append(scales, fmtFloat(d.Dim[i].Scale))
		unit := d.Dim[i].Unit
		if unit == "" {
			unit = UnitsUndefined
		}
		units = append(units, unit)
		labels = append(labels, d.Dim[i].Label)
	}
	line(origins...)
	line(scales...)
	line(units...)
	line(labels...)

	if d.Version == 2 && d.SrcFile != "" {
		line("source", "file", d.SrcFile)
		line("source", "offset", strconv.FormatInt(d.SrcOffset, 10))
	}
	line("end")

	werr := w.Flush()
	cerr := f.Close()
	if werr != nil {
		return ErrFWriteIcs
	}
	if cerr != nil {
		return ErrFCloseIcs
	}
	return nil
}
