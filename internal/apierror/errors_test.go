package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{Validation("no items selected"), http.StatusBadRequest, "no items selected"},
		{NotFound("conditional not found"), http.StatusNotFound, "conditional not found"},
		{Conflict("insufficient stock"), http.StatusConflict, "insufficient stock"},
		{Transient("database unavailable", errors.New("dial tcp: refused")), http.StatusServiceUnavailable, "database unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		status, msg := StatusFor(tc.err)
		assert.Equal(t, tc.status, status)
		assert.Equal(t, tc.msg, msg)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Conflict("insufficient stock for Blusa"))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindValidation))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestTransient_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transient("failed to load order", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
