package service

import (
	"context"
	"errors"
	"fmt"

	"traffic-monitor/internal/domain/traffic"
)

var (
	ErrInvalidInput = traffic.ErrInvalidInput
	ErrNotFound     = traffic.ErrNotFound
	ErrStore        = traffic.ErrStore
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("already exists")
)

func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out: %w", ErrStore, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
