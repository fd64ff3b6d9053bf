package pipeline

import (
	"net/http"

	"github.com/taskmate/taskmate/internal/common/apperrors"
)

var (
	// ErrRequestFailed is the root of all pipeline errors.
	ErrRequestFailed apperrors.Error = apperrors.New("request failed")

	// ErrTransport indicates the server could not be reached at all.
	ErrTransport apperrors.Error = ErrRequestFailed.New("server unreachable")

	// ErrAuthFailure indicates the server rejected the credential. The
	// pipeline has already cleared the stored token when this is returned.
	ErrAuthFailure apperrors.Error = ErrRequestFailed.New("authentication failed").
				SetStatusCode(http.StatusUnauthorized)

	// ErrInvalidResponse indicates a response body that could not be decoded.
	ErrInvalidResponse apperrors.Error = ErrRequestFailed.New("invalid server response")
)
