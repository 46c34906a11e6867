package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/events"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// Transition outcomes recorded in metrics.
const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// storeError maps repository sentinels to API errors for the named resource.
func storeError(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict(fmt.Sprintf("%s was modified by another request", resource), map[string]any{"id": id})
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(fmt.Sprintf("%s already exists", resource), nil)
	default:
		return apperrors.MapError(err)
	}
}

func requirePrincipal(principal *auth.Principal, allowed auth.RoleSet) error {
	return auth.Authorize(principal, allowed).Err()
}

func actorOf(principal *auth.Principal) events.Actor {
	if principal == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: principal.ID, Role: principal.Role}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeApplied
	case apperrors.IsInvalidTransition(err),
		apperrors.HasCode(err, apperrors.CodeForbidden),
		apperrors.HasCode(err, apperrors.CodeValidation),
		apperrors.HasCode(err, apperrors.CodeConflict):
		return outcomeRejected
	default:
		return outcomeFailed
	}
}

func nopLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
