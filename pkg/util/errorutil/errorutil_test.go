package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewMissingReason("why")), CodeMissingReason, http.StatusBadRequest},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, CodeStoreUnavailable, http.StatusInternalServerError},
		{"anything else", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestTransitionKinds(t *testing.T) {
	assert.True(t, IsInvalidTransition(NewInvalidTransition("x", nil)))
	assert.True(t, IsInvalidTransition(NewTerminalState("x", nil)))
	assert.True(t, IsInvalidTransition(NewMissingReason("x")))
	assert.False(t, IsInvalidTransition(NewForbidden("x")))
}

func TestWrappedCausesStayReachable(t *testing.T) {
	cause := errors.New("disk full")

	sideEffect := NewSideEffectFailed("could not create order", cause)
	assert.ErrorIs(t, sideEffect, cause)
	assert.Contains(t, sideEffect.Error(), "disk full")

	partial := NewPartialCascadeFailure("orders", cause)
	assert.ErrorIs(t, partial, cause)
	assert.Equal(t, "orders", ToDomainError(partial).Details["step"])
}
