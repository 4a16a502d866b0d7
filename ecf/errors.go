package ecf

import "fmt"

// OutOfRangeError reports a query coordinate outside the calibrated envelope
// of one axis. Valid values lie in [Min, Max).
type OutOfRangeError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s=%g not in range of axis [%g, %g)", e.Axis, e.Value, e.Min, e.Max)
}

// UnknownShapeError reports a PSF shape with no backing calibration data.
type UnknownShapeError struct {
	Shape Shape
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("unknown PSF shape %q (valid: %v)", string(e.Shape), ShapeNames())
}

// UnknownFieldError reports a field name that is not a calibration column,
// or a column the loaded grid does not carry.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown calibration field %q (valid: %v)", e.Field, FieldNames())
}

// MalformedRecordError reports a calibration record that cannot form a grid.
type MalformedRecordError struct {
	Shape  Shape
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s calibration record: %s", string(e.Shape), e.Reason)
}
