package ics

import "fmt"

// Default unit and coordinate strings written when a field was never set.
const (
	UnitsUndefined = "undefined"
	UnitsRelative  = "relative"
	CoordVideo     = "video"
)

// Mode guards. Each access operation documents the file modes in which
// it is valid; violations report ErrNotValidAction.

func (d *Dataset) modeRead() error {
	if d.FileMode != FileModeRead && d.FileMode != FileModeUpdate {
		return ErrNotValidAction
	}
	return nil
}

func (d *Dataset) modeWrite() error {
	if d.FileMode != FileModeWrite {
		return ErrNotValidAction
	}
	return nil
}

func (d *Dataset) modeWriteMeta() error {
	if d.FileMode != FileModeWrite && d.FileMode != FileModeUpdate {
		return ErrNotValidAction
	}
	return nil
}

// GetLayout returns the sample kind, the number of dimensions and the
// dimension sizes. Valid in read and update modes.
func (d *Dataset) GetLayout() (DataType, int, []int, error) {
	if err := d.modeRead(); err != nil {
		return TypeUnknown, 0, nil, err
	}
	dims := make([]int, d.Dimensions)
	for i := 0; i < d.Dimensions; i++ {
		dims[i] = d.Dim[i].Size
	}
	return d.Imel.DataType, d.Dimensions, dims, nil
}

// SetLayout stores the sample kind and the dimension sizes, and installs
// the default order names and labels. Valid in write mode only.
func (d *Dataset) SetLayout(dt DataType, dims []int) error {
	if err := d.modeWrite(); err != nil {
		return err
	}
	if len(dims) > MaxDimensions {
		return ErrTooManyDims
	}
	d.Imel.DataType = dt
	for i, size := range dims {
		d.Dim[i].Size = size
		if i < len(defaultOrders) {
			d.Dim[i].Order = defaultOrders[i]
			d.Dim[i].Label = defaultLabels[i]
		} else {
			d.Dim[i].Order = fmt.Sprintf("dim_%d", i)
			d.Dim[i].Label = fmt.Sprintf("dim_%d", i)
		}
	}
	d.Dimensions = len(dims)
	d.Imel.SigBits = 8 * dt.Size()
	return nil
}

// GetDataSize returns the image size in bytes. It returns 0 rather than
// failing for a handle with no layout.
func (d *Dataset) GetDataSize() int {
	if d.Dimensions == 0 {
		return 0
	}
	return d.GetImageSize() * d.Imel.DataType.Size()
}

// GetImelSize returns the size of one imel in bytes.
func (d *Dataset) GetImelSize() int {
	return d.Imel.DataType.Size()
}

// GetImageSize returns the image size in imels.
func (d *Dataset) GetImageSize() int {
	if d.Dimensions == 0 {
		return 0
	}
	size := 1
	for i := 0; i < d.Dimensions; i++ {
		size *= d.Dim[i].Size
	}
	return size
}

// GetPosition returns the real-world position of a dimension: the origin
// of the first imel, the distance between imels and the measurement
// unit. Dimensions start at 0.
func (d *Dataset) GetPosition(dimension int) (origin, scale float64, units string, err error) {
	if err = d.modeRead(); err != nil {
		return 0, 0, "", err
	}
	if dimension < 0 || dimension >= d.Dimensions {
		return 0, 0, "", ErrNotValidAction
	}
	dim := &d.Dim[dimension]
	units = dim.Unit
	if units == "" {
		units = UnitsUndefined
	}
	return dim.Origin, dim.Scale, units, nil
}

// SetPosition sets the real-world position of a dimension. An empty
// units string selects the default "undefined".
func (d *Dataset) SetPosition(dimension int, origin, scale float64, units string) error {
	if err := d.modeWriteMeta(); err != nil {
		return err
	}
	if dimension < 0 || dimension >= d.Dimensions {
		return ErrNotValidAction
	}
	d.Dim[dimension].Origin = origin
	d.Dim[dimension].Scale = scale
	if units != "" {
		d.Dim[dimension].Unit = units
	} else {
		d.Dim[dimension].Unit = UnitsUndefined
	}
	return nil
}

// GetOrder returns the order name and display label of a dimension.
func (d *Dataset) GetOrder(dimension int) (order, label string, err error) {
	if err = d.modeRead(); err != nil {
		return "", "", err
	}
	if dimension < 0 || dimension >= d.Dimensions {
		return "", "", ErrNotValidAction
	}
	return d.Dim[dimension].Order, d.Dim[dimension].Label, nil
}

// SetOrder sets the order name and display label of a dimension. A
// missing label defaults to the order name; setting neither is an error.
func (d *Dataset) SetOrder(dimension int, order, label string) error {
	if err := d.modeWriteMeta(); err != nil {
		return err
	}
	if dimension < 0 || dimension >= d.Dimensions {
		return ErrNotValidAction
	}
	if order != "" {
		d.Dim[dimension].Order = order
		if label != "" {
			d.Dim[dimension].Label = label
		} else {
			d.Dim[dimension].Label = order
		}
		return nil
	}
	if label != "" {
		d.Dim[dimension].Label = label
		return nil
	}
	return ErrNotValidAction
}

// GetCoordinateSystem returns the coordinate system used in positioning
// the imels. The default is "video".
func (d *Dataset) GetCoordinateSystem() (string, error) {
	if err := d.modeRead(); err != nil {
		return "", err
	}
	if d.Coord == "" {
		return CoordVideo, nil
	}
	return d.Coord, nil
}

// SetCoordinateSystem sets the coordinate system. An empty string
// selects the default "video".
func (d *Dataset) SetCoordinateSystem(coord string) error {
	if err := d.modeWriteMeta(); err != nil {
		return err
	}
	if coord != "" {
		d.Coord = coord
	} else {
		d.Coord = CoordVideo
	}
	return nil
}

// GetSignificantBits returns the number of significant bits per imel.
func (d *Dataset) GetSignificantBits() (int, error) {
	if err := d.modeRead(); err != nil {
		return 0, err
	}
	return d.Imel.SigBits, nil
}

// SetSignificantBits sets the number of significant bits. Values beyond
// the imel width are clamped. Valid in write mode, after SetLayout.
func (d *Dataset) SetSignificantBits(nbits int) error {
	if err := d.modeWrite(); err != nil {
		return err
	}
	if d.Dimensions == 0 {
		return ErrNoLayout
	}
	maxbits := 8 * d.Imel.DataType.Size()
	if nbits > maxbits {
		nbits = maxbits
	}
	d.Imel.SigBits = nbits
	return nil
}

// GetImelUnits returns the offset, scaling and units of the imel values.
// The default unit is "relative".
func (d *Dataset) GetImelUnits() (origin, scale float64, units string, err error) {
	if err = d.modeRead(); err != nil {
		return 0, 0, "", err
	}
	units = d.Imel.Unit
	if units == "" {
		units = UnitsRelative
	}
	return d.Imel.Origin, d.Imel.Scale, units, nil
}

// SetImelUnits sets the offset, scaling and units of the imel values.
// An empty units string selects the default "relative".
func (d *Dataset) SetImelUnits(origin, scale float64, units string) error {
	if err := d.modeWriteMeta(); err != nil {
		return err
	}
	d.Imel.Origin = origin
	d.Imel.Scale = scale
	if units != "" {
		d.Imel.Unit = units
	} else {
		d.Imel.Unit = UnitsRelative
	}
	return nil
}

// GetScilType returns the SCIL_TYPE tag. The tag is used only by the
// historical SCIL_Image consumer.
func (d *Dataset) GetScilType() (string, error) {
	if err := d.modeRead(); err != nil {
		return "", err
	}
	return d.ScilType, nil
}

// SetScilType sets the SCIL_TYPE tag.
func (d *Dataset) SetScilType(sciltype string) error {
	if err := d.modeWriteMeta(); err != nil {
		return err
	}
	d.ScilType = sciltype
	return nil
}

// GuessScilType derives the SCIL_TYPE tag from the sample kind and the
// dimensionality. It can produce g2d, g3d, f2d, f3d, c2d and c3d; other
// combinations report ErrNoScilType, and an unknown sample kind reports
// ErrNotValidAction.
func (d *Dataset) GuessScilType() error {
	if err := d.modeWriteMeta(); err != nil {
		return err
	}
	var prefix byte
	switch d.Imel.DataType {
	case TypeUint8, TypeSint8, TypeUint16, TypeSint16:
		prefix = 'g'
	case TypeReal32:
		prefix = 'f'
	case TypeComplex32:
		prefix = 'c'
	case TypeUint32, TypeSint32, TypeReal64, TypeComplex64:
		return ErrNoScilType
	default:
		d.ScilType = ""
		return ErrNotValidAction
	}
	var suffix byte
	switch {
	case d.Dimensions == 3:
		suffix = '3'
	case d.Dimensions > 3:
		d.ScilType = ""
		return ErrNoScilType
	default:
		suffix = '2'
	}
	d.ScilType = string([]byte{prefix, suffix, 'd'})
	return nil
}
