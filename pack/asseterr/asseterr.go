// Package asseterr holds the decode failure kinds shared by every asset parser.
//
// Parsers wrap one of the sentinels below with github.com/pkg/errors so the
// message carries the offset or element that failed while callers can still
// test the kind with Is.
package asseterr

import (
	"github.com/pkg/errors"
)

var (
	// ErrTruncatedInput: buffer or text shorter than a declared structure.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrUnsupportedFormat: wrong magic, non-triangle polygon or another
	// structural feature the decoder can not represent.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMissingLayer: geometry chunk seen before any layer was declared.
	ErrMissingLayer = errors.New("missing layer")
	// ErrMissingReference: index into points, polygons, joints, weights or
	// materials that does not exist.
	ErrMissingReference = errors.New("missing reference")
	// ErrUnresolvedMaterialTag is only ever reported as a warning.
	ErrUnresolvedMaterialTag = errors.New("unresolved material tag")
)

func Is(err, kind error) bool {
	return errors.Is(err, kind)
}

func Truncated(format string, args ...interface{}) error {
	return errors.Wrapf(ErrTruncatedInput, format, args...)
}

func Unsupported(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupportedFormat, format, args...)
}

func MissingLayer(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMissingLayer, format, args...)
}

func MissingReference(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMissingReference, format, args...)
}

// Unresolved builds the warning text for a material tag without a surface.
func Unresolved(tag string) string {
	return errors.Wrapf(ErrUnresolvedMaterialTag, "tag %q", tag).Error()
}
