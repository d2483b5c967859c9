package ics

// Err enumerates every failure the engine can report. The set is closed:
// all operations return either nil, one of these codes, or one of the two
// warning codes (ErrFSizeConflict, ErrOutputNotFilled) for which the
// operation nevertheless completed and the dataset remains usable.
type Err int

// Enumeration of the error codes.
const (
	// Non-fatal codes. The operation completed; see IsWarning.
	ErrFSizeConflict Err = iota + 1
	ErrOutputNotFilled

	// Fatal codes.
	ErrAlloc
	ErrBitsVsSizeConfl
	ErrBlockNotAllowed
	ErrBufferTooSmall
	ErrCompressionProblem
	ErrCorruptedStream
	ErrDecompressionProblem
	ErrDuplicateData
	ErrEmptyField
	ErrEndOfStream
	ErrFailWriteLine
	ErrFCloseIcs
	ErrFCloseIds
	ErrFCopyIds
	ErrFOpenIcs
	ErrFOpenIds
	ErrFReadIcs
	ErrFReadIds
	ErrFTempMoveIcs
	ErrFWriteIcs
	ErrFWriteIds
	ErrIllegalROI
	ErrIllIcsToken
	ErrIllParameter
	ErrLineOverflow
	ErrMissBits
	ErrMissingData
	ErrMissLayoutSubCat
	ErrMissRepresSubCat
	ErrMissSubCat
	ErrNoLayout
	ErrNoScilType
	ErrNotIcsFile
	ErrNotValidAction
	ErrTooManyDims
	ErrUnknownCompression
	ErrUnknownDataType
)

var errText = map[Err]string{
	ErrFSizeConflict:        "non fatal error: unexpected data size",
	ErrOutputNotFilled:      "non fatal error: the output buffer could not be completely filled",
	ErrAlloc:                "memory allocation error",
	ErrBitsVsSizeConfl:      "image size conflicts with bits per element",
	ErrBlockNotAllowed:      "it is not possible to read COMPRESS-compressed data in blocks",
	ErrBufferTooSmall:       "the buffer was too small to hold the given ROI",
	ErrCompressionProblem:   "some error occurred during compression",
	ErrCorruptedStream:      "the compressed input stream is corrupted",
	ErrDecompressionProblem: "some error occurred during decompression",
	ErrDuplicateData:        "the ICS data structure already contains incompatible stuff",
	ErrEmptyField:           "empty field",
	ErrEndOfStream:          "unexpected end of stream",
	ErrFailWriteLine:        "failed to write a line in .ics file",
	ErrFCloseIcs:            "file close error on .ics file",
	ErrFCloseIds:            "file close error on .ids file",
	ErrFCopyIds:             "failed to copy image data from temporary file on .ics file opened for updating",
	ErrFOpenIcs:             "file open error on .ics file",
	ErrFOpenIds:             "file open error on .ids file",
	ErrFReadIcs:             "file read error on .ics file",
	ErrFReadIds:             "file read error on .ids file",
	ErrFTempMoveIcs:         "failed to rename .ics file opened for updating",
	ErrFWriteIcs:            "file write error on .ics file",
	ErrFWriteIds:            "file write error on .ids file",
	ErrIllegalROI:           "the given ROI extends outside the image",
	ErrIllIcsToken:          "illegal ICS token detected",
	ErrIllParameter:         "a function parameter has a value that is not legal or does not match with a value previously given",
	ErrLineOverflow:         "line overflow in .ics file",
	ErrMissBits:             "missing \"bits\" element in .ics file",
	ErrMissingData:          "there is no data defined",
	ErrMissLayoutSubCat:     "missing layout subcategory",
	ErrMissRepresSubCat:     "missing representation subcategory",
	ErrMissSubCat:           "missing sub category",
	ErrNoLayout:             "layout parameters missing or not defined",
	ErrNoScilType:           "there doesn't exist a SCIL_TYPE value for this image",
	ErrNotIcsFile:           "not an ICS file",
	ErrNotValidAction:       "the function won't work on the ICS given",
	ErrTooManyDims:          "data has too many dimensions",
	ErrUnknownCompression:   "unknown compression type",
	ErrUnknownDataType:      "the datatype is not recognized",
}

// Error returns the textual description of the code. Unknown codes map to
// a generic fallback so the function is total.
func (e Err) Error() string {
	if msg, ok := errText[e]; ok {
		return msg
	}
	return "some error occurred I know nothing about"
}

// IsWarning reports whether err is one of the two non-fatal codes: the
// operation that returned it completed usefully and the dataset handle
// remains valid.
func IsWarning(err error) bool {
	e, ok := err.(Err)
	return ok && (e == ErrFSizeConflict || e == ErrOutputNotFilled)
}
