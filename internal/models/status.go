package models

import (
	"errors"
	"fmt"
	"strings"
)

// OrderStatus is the closed set of order states.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
	StatusRefunded  OrderStatus = "Refunded"
)

var (
	ErrUnknownStatus       = errors.New("unknown status")
	ErrStatusTransition    = errors.New("status transition not allowed")
	orderStatusTransitions = map[OrderStatus][]OrderStatus{
		StatusPending:   {StatusCompleted, StatusCancelled},
		StatusCompleted: {StatusCancelled, StatusRefunded},
	}
)

// ParseOrderStatus resolves client input case-insensitively.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, status := range []OrderStatus{StatusPending, StatusCompleted, StatusCancelled, StatusRefunded} {
		if strings.EqualFold(strings.TrimSpace(value), string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

// Known reports whether s is one of the defined states.
func (s OrderStatus) Known() bool {
	_, err := ParseOrderStatus(string(s))
	return err == nil
}

// CanTransitionTo reports whether an order in state s may move to next.
// Rewriting the current state is always allowed. Documents holding a legacy
// free-text status may move to any known state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	if !s.Known() {
		return next.Known()
	}
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrStatusTransition when s cannot move to next.
func (s OrderStatus) ValidateTransition(next OrderStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusTransition, s, next)
	}
	return nil
}
