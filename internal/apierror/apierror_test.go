package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{Conflict("already closed"), http.StatusConflict},
		{NotFound("no such session"), http.StatusNotFound},
		{Validation("bad weight"), http.StatusUnprocessableEntity},
		{Unauthorized("invalid or expired token"), http.StatusUnauthorized},
		{UploadFailed("retries exhausted", errors.New("boom")), http.StatusInternalServerError},
		{IO("write failed", errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.Status(), c.err.Msg)
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	base := Conflict("station busy")
	wrapped := fmt.Errorf("close station: %w", base)

	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindConflict))
	assert.False(t, IsKind(nil, KindConflict))
}

func TestErrorCarriesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := UploadFailed("sync: upload exhausted retries", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
