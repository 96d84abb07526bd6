package doublebuf

import "github.com/zeebo/errs"

// Error is the class of errors returned by this package.
var Error = errs.Class("doublebuf")

var (
	// ErrClosed is returned by reads on a Data that has been Closed.
	ErrClosed = Error.New("data closed")

	// ErrReaderClosed is returned by reads on a Reader that has been Closed.
	ErrReaderClosed = Error.New("reader closed")

	// ErrTooManyReaders is returned when registering a reader would exceed
	// Options.MaxReaders.
	ErrTooManyReaders = Error.New("too many readers")
)
