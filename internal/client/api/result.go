// Package api is the client's remote data access layer: a typed HTTP client
// over the dashboard envelope contract.
package api

// Kind discriminates the three outcomes of a remote call.
type Kind int

const (
	// KindTransportError: no envelope was received (network failure or non-2xx).
	KindTransportError Kind = iota
	// KindBusinessFailure: envelope received with Status false; Messages carries
	// the user-facing failure strings.
	KindBusinessFailure
	// KindSuccess: envelope received with Status true and decoded Data.
	KindSuccess
)

// Result is the outcome of a remote call. Callers switch on Kind() so the
// three variants are handled exhaustively, instead of checking the HTTP code
// and the envelope Status independently.
type Result[T any] struct {
	kind     Kind
	data     T
	messages []string
	err      error
}

// Success returns a success result carrying data.
func Success[T any](data T) Result[T] {
	return Result[T]{kind: KindSuccess, data: data}
}

// BusinessFailure returns a business-failure result carrying the envelope messages.
func BusinessFailure[T any](messages []string) Result[T] {
	return Result[T]{kind: KindBusinessFailure, messages: messages}
}

// TransportError returns a transport-error result carrying the underlying error.
func TransportError[T any](err error) Result[T] {
	return Result[T]{kind: KindTransportError, err: err}
}

// Kind returns the result variant.
func (r Result[T]) Kind() Kind { return r.kind }

// Data returns the decoded payload; meaningful only for KindSuccess.
func (r Result[T]) Data() T { return r.data }

// Messages returns the envelope messages; meaningful only for KindBusinessFailure.
func (r Result[T]) Messages() []string { return r.messages }

// Err returns the underlying error; meaningful only for KindTransportError.
func (r Result[T]) Err() error { return r.err }
