package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind clasifica fallos del backend de texto.
type ErrorKind string

const (
	KindTimeout           ErrorKind = "timeout"
	KindTransport         ErrorKind = "transport"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindAPIError          ErrorKind = "api_error"
	KindPanic             ErrorKind = "panic"
)

// Error es un fallo clasificado. Los adaptadores siempre devuelven *Error.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf deduce el tipo de un error arbitrario. Deadline excedido es timeout aunque
// no venga envuelto en *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindTransport
}

// Describe produce el descriptor "<kind>: <mensaje>" que viaja en los resultados.
func Describe(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Err == nil {
			return string(e.Kind)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", KindOf(err), err)
}

// classify envuelve errores crudos de un SDK segun el estado del contexto.
func classify(ctx context.Context, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newError(KindTimeout, err)
	}
	return newError(KindTransport, err)
}
