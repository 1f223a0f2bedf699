// Package candleerr holds the typed failures raised by candle parsing,
// transformation, validation and storage. Match them with errors.As.
package candleerr

import (
	"fmt"
	"strings"
)

func funcMsg(fn, reason string) string {
	return fmt.Sprintf("[ERROR] [%s] %s", fn, reason)
}

// ParamError reports malformed input: a bad bar string, an unsupported
// tabular shape, or missing arguments.
type ParamError struct {
	Func string
	Msg  string
}

func (e *ParamError) Error() string { return funcMsg(e.Func, e.Msg) }

// NewBarError builds the ParamError raised for an unparsable bar.
func NewBarError(fn, bar string) *ParamError {
	return &ParamError{
		Func: fn,
		Msg:  fmt.Sprintf("bar=%s\nbar must like ['1m','3m','5m','30m','1h','2h','4h','6h','1d'...]", bar),
	}
}

// ExecutionError reports an operation that cannot be carried out on
// otherwise well-formed input, e.g. an ambiguous bar or a fractional
// resample ratio.
type ExecutionError struct {
	Func string
	Msg  string
}

func (e *ExecutionError) Error() string { return funcMsg(e.Func, e.Msg) }

func symbolMsg(symbol, msg string) string {
	return fmt.Sprintf("symbol=%-10s msg=%s", symbol, msg)
}

// IntervalError is raised when consecutive timestamps are not spaced by the bar.
type IntervalError struct {
	Symbol string
	Msg    string
}

func (e *IntervalError) Error() string { return symbolMsg(e.Symbol, e.Msg) }

// StartError is raised when the first row is not the expected start.
type StartError struct {
	Symbol string
	Msg    string
}

func (e *StartError) Error() string { return symbolMsg(e.Symbol, e.Msg) }

// EndError is raised when the last row is not the expected end.
type EndError struct {
	Symbol string
	Msg    string
}

func (e *EndError) Error() string { return symbolMsg(e.Symbol, e.Msg) }

// DatesMissingError is raised when a discovery query finds no data at all.
type DatesMissingError struct {
	Msg string
}

func (e *DatesMissingError) Error() string { return e.Msg }

// FileNotExistError is raised when a requested range has missing shards.
type FileNotExistError struct {
	Symbol string
	Dates  []string
	Path   string
}

func (e *FileNotExistError) Error() string {
	return fmt.Sprintf("symbol=%-10s date=[%s] path=%s", e.Symbol, strings.Join(e.Dates, ", "), e.Path)
}
