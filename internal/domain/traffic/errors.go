package traffic

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrMalformedRecord = errors.New("malformed record")
	ErrStore           = errors.New("store error")
)

// MalformedRecordError names the record and the baseline field it lacks.
type MalformedRecordError struct {
	CenterID string
	Field    string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: center %q is missing %s", ErrMalformedRecord, e.CenterID, e.Field)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
