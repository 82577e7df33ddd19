package artifact

import "errors"

var (
	// ErrNoArtifact is returned when an operation runs on an Engine with no
	// artifact bound (zero value, closed, or opened with an empty path).
	ErrNoArtifact = errors.New("no artifact bound")

	// ErrUnsupported marks a record family the browser family does not store.
	ErrUnsupported = errors.New("record family not supported for browser family")
)

// Status describes how an extraction call ended.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

// Result is the outcome of one extraction. Records is never nil; on
// StatusFailed it is empty and Err holds the absorbed cause.
type Result[T any] struct {
	Family  BrowserFamily
	Status  Status
	Records []T
	Dropped int
	Err     error
}

func newResult[T any](family BrowserFamily, records []T, dropped int, err error) Result[T] {
	res := Result[T]{Family: family, Status: StatusOK, Records: records, Dropped: dropped}
	switch {
	case errors.Is(err, ErrUnsupported):
		res.Status = StatusUnsupported
		res.Records = nil
	case err != nil:
		res.Status = StatusFailed
		res.Records = nil
		res.Err = err
	}
	if res.Records == nil {
		res.Records = []T{}
	}
	return res
}
