// Package sdk defines the vendor hardware SDK contract: status codes,
// attribute records, object keys, and the per-category adapter interface.
// Everything above this package (engine, managers) abstracts over these
// types; nothing in this package performs I/O.
package sdk

import "fmt"

// Status is the numeric status convention of the vendor SDK: one success
// value, one recognised transient overflow value for undersized list
// buffers, and other values mapping to failure categories.
type Status int32

const (
	// StatusSuccess indicates the call completed.
	StatusSuccess Status = 0
	// StatusFailure is a generic, unclassified failure.
	StatusFailure Status = -1
	// StatusNotSupported indicates the attribute or operation is not
	// implemented by this chip generation.
	StatusNotSupported Status = -2
	// StatusInvalidParameter indicates a malformed attribute or key.
	StatusInvalidParameter Status = -3
	// StatusInsufficientResources indicates hardware table exhaustion.
	StatusInsufficientResources Status = -4
	// StatusItemNotFound indicates the addressed object does not exist.
	StatusItemNotFound Status = -5
	// StatusBufferOverflow is the transient signal that a list-valued
	// attribute's true size exceeds the caller's buffer. The required
	// element count is written back into the list's Count field.
	StatusBufferOverflow Status = -6
)

// IsSuccess reports whether the status is the single success value.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// IsBufferOverflow reports whether the status is the transient overflow
// signal for undersized list buffers.
func (s Status) IsBufferOverflow() bool { return s == StatusBufferOverflow }

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusNotSupported:
		return "not-supported"
	case StatusInvalidParameter:
		return "invalid-parameter"
	case StatusInsufficientResources:
		return "insufficient-resources"
	case StatusItemNotFound:
		return "item-not-found"
	case StatusBufferOverflow:
		return "buffer-overflow"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}
