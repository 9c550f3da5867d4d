package domain

import (
	"errors"
	"io/fs"
)

// Error kinds shared by the pipeline stages.
var (
	ErrMissingFile      = errors.New("missing file")
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrQualityViolation = errors.New("quality violation")
	ErrRangeViolation   = errors.New("range violation")
	ErrConfiguration    = errors.New("configuration error")
)

// ErrorKind is a coarse classification used in logs and exit handling.
type ErrorKind string

const (
	KindUnknownError       ErrorKind = "unknown"
	KindMissingFileError   ErrorKind = "missing_file"
	KindSchemaError        ErrorKind = "schema_mismatch"
	KindQualityError       ErrorKind = "quality_violation"
	KindRangeError         ErrorKind = "range_violation"
	KindConfigurationError ErrorKind = "configuration"
)

// Classify maps an error to its kind using sentinels only.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknownError
	case errors.Is(err, ErrConfiguration):
		return KindConfigurationError
	case errors.Is(err, ErrMissingFile), errors.Is(err, fs.ErrNotExist):
		return KindMissingFileError
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaError
	case errors.Is(err, ErrQualityViolation):
		return KindQualityError
	case errors.Is(err, ErrRangeViolation):
		return KindRangeError
	default:
		return KindUnknownError
	}
}
