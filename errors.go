package jpeg

import "errors"

// The four error kinds of spec.md §7. Header-parse errors (ErrBadHeader,
// ErrBadTable, ErrUnsupported) are sticky: once returned from parse, the
// Desc is abandoned and no further segments are processed. ErrCorruptEntropy
// is soft: the scan driver recovers at the next RSTn and keeps whatever
// coefficients it has, so it never aborts a Decode call by itself.
var (
    ErrBadHeader      = errors.New("jpeg: bad header")
    ErrBadTable       = errors.New("jpeg: bad table")
    ErrUnsupported    = errors.New("jpeg: unsupported feature")
    ErrCorruptEntropy = errors.New("jpeg: corrupt entropy stream")
)

// jpgForwardError re-wraps err with a call-site prefix, preserving it for
// errors.Is/errors.As the way the teacher's jpgForwardError concatenated
// prefixes onto fmt.Errorf strings.
func jpgForwardError(prefix string, err error) error {
    if err == nil {
        return nil
    }
    return &prefixedError{prefix: prefix, err: err}
}

type prefixedError struct {
    prefix string
    err    error
}

func (e *prefixedError) Error() string { return e.prefix + ": " + e.err.Error() }
func (e *prefixedError) Unwrap() error { return e.err }
