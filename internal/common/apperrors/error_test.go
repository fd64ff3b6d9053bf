package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("chaining preserves identity", func(t *testing.T) {
		ErrBase := New("request failed")
		assert.Equal(t, "request failed", ErrBase.Error())
		assert.ErrorIs(t, ErrBase, ErrBase)

		ErrDerived := ErrBase.New("task not found")
		assert.Equal(t, "task not found", ErrDerived.Error())
		assert.ErrorIs(t, ErrDerived, ErrBase)

		ErrOther := New("connection reset")
		ErrWrapped := ErrDerived.Err(ErrOther)
		assert.Equal(t, "task not found", ErrWrapped.Error())
		assert.ErrorIs(t, ErrWrapped, ErrBase)
		assert.ErrorIs(t, ErrWrapped, ErrDerived)
		assert.ErrorIs(t, ErrWrapped, ErrOther)

		goErr := errors.New("dial tcp: connection refused")
		ErrWrapped = ErrDerived.MsgErr("fetching task", goErr)
		assert.Equal(t, "fetching task", ErrWrapped.Error())
		assert.ErrorIs(t, ErrWrapped, ErrBase)
		assert.ErrorIs(t, ErrWrapped, goErr)

		fmtErr := fmt.Errorf("status 503")
		ErrWrapped = ErrDerived.Err(fmtErr)
		assert.ErrorIs(t, ErrWrapped, fmtErr)
	})

	t.Run("status codes", func(t *testing.T) {
		ErrAuth := New("authentication failed").SetStatusCode(http.StatusUnauthorized)
		assert.Equal(t, http.StatusUnauthorized, ErrAuth.StatusCode())

		// derived errors inherit the code
		ErrExpired := ErrAuth.New("session expired")
		assert.Equal(t, http.StatusUnauthorized, ErrExpired.StatusCode())
		assert.ErrorIs(t, ErrExpired, ErrAuth)

		// overriding the code does not break identity
		ErrGone := ErrExpired.SetStatusCode(http.StatusForbidden)
		assert.Equal(t, http.StatusForbidden, ErrGone.StatusCode())
		assert.ErrorIs(t, ErrGone, ErrAuth)
	})

	t.Run("msg rewrites without losing the chain", func(t *testing.T) {
		ErrBase := New("transport error")
		ErrRewritten := ErrBase.Msg("server unreachable")
		assert.Equal(t, "server unreachable", ErrRewritten.Error())
		assert.ErrorIs(t, ErrRewritten, ErrBase)
	})
}
