package services

import (
	"errors"
	"fmt"
)

// ErrModelNotLoaded is returned when a prediction is requested before a
// trained model has been installed.
var ErrModelNotLoaded = errors.New("model is not loaded")

// ParseError reports a single field whose text could not be interpreted.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %s", e.Field, e.Value, e.Reason)
}

// RangeWarning reports a value that parsed but lies outside plausibility
// bounds. It is never fatal for inference.
type RangeWarning struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeWarning) Error() string {
	return fmt.Sprintf("%s %g outside plausible range [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

// UnknownLocationError reports location text outside the supported set, or
// a supported location with no market data.
type UnknownLocationError struct {
	Location string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("unknown location %q", e.Location)
}

// CrossFieldError reports individually valid fields that contradict each other.
type CrossFieldError struct {
	Fields []string
	Detail string
}

func (e *CrossFieldError) Error() string {
	return fmt.Sprintf("inconsistent %v: %s", e.Fields, e.Detail)
}

// DomainError reports an invariant that upstream validation should have
// guaranteed.
type DomainError struct {
	Detail string
}

func (e *DomainError) Error() string {
	return "domain invariant violated: " + e.Detail
}

// IsClientError reports whether err is caused by the request content.
func IsClientError(err error) bool {
	var pe *ParseError
	var rw *RangeWarning
	var ul *UnknownLocationError
	var cf *CrossFieldError
	return errors.As(err, &pe) || errors.As(err, &rw) || errors.As(err, &ul) || errors.As(err, &cf)
}

// IsServiceFault reports whether err is a fault of the estimator itself.
func IsServiceFault(err error) bool {
	var de *DomainError
	return errors.Is(err, ErrModelNotLoaded) || errors.As(err, &de)
}

// dropReason buckets a cleaning error for training diagnostics.
func dropReason(err error) string {
	var pe *ParseError
	var rw *RangeWarning
	var ul *UnknownLocationError
	var cf *CrossFieldError
	switch {
	case errors.As(err, &ul):
		return "unknown_location"
	case errors.As(err, &cf):
		return "cross_field"
	case errors.As(err, &rw):
		return "out_of_range"
	case errors.As(err, &pe):
		if pe.Reason == reasonMissing {
			return "missing"
		}
		return "parse"
	default:
		return "other"
	}
}
