// Package apperrors provides the error type used across the client. It keeps
// the standard error interface while adding message rewriting, error chaining,
// and an HTTP status code, so a package can declare sentinel errors and derive
// request-specific instances from them without losing errors.Is identity.
package apperrors

// Error is the application error interface. Derivation methods return a new
// Error so sentinels are never mutated.
type Error interface {
	error
	Unwrap() error // supports errors.Is / errors.As

	New(msg string) Error                  // fresh error using the current one as template
	Msg(msg string) Error                  // new message, wraps the original
	MsgErr(msg string, err ...error) Error // new message, wraps the original plus extra errors
	Err(err ...error) Error                // attaches additional errors
	SetStatusCode(int) Error               // associates an HTTP status code
	StatusCode() int                       // returns the associated status code
}
