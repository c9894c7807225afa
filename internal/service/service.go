// Package service holds the estimate, order and report operations behind the
// HTTP handlers. Services talk to the store only through the database
// repository interfaces, so they run unchanged over Mongo and memdb.
package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/database"
	"pos-backend/internal/notify"
	"pos-backend/internal/sequence"
)

var (
	ErrEstimateNotFound  = errors.New("estimate not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrEstimateConverted = errors.New("estimate already converted to order")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidInput      = errors.New("invalid input")
)

// Notifier receives change events after successful writes.
type Notifier interface {
	Broadcast(payload any)
}

// Deps bundles the collaborators shared by the services.
type Deps struct {
	Estimates       database.EstimateRepository
	Orders          database.OrderRepository
	Tx              database.Transactor
	EstimateNumbers sequence.Allocator
	SaleNumbers     sequence.Allocator
	Notifier        Notifier
}

const (
	estimateIDPrefix = "EST-"
	orderIDPrefix    = "ORDER-"

	eventEstimate = "estimate"
	eventOrder    = "order"
)

// newID returns prefix followed by eight upper-case hex digits.
func newID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(hex[:8])
}

// publish hands event to the notifier. A failing notifier never fails the
// write that triggered it.
func publish(n Notifier, event notify.Event) {
	if n == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Str("type", event.Type).Str("action", event.Action).Msg("notification failed")
		}
	}()
	n.Broadcast(event)
}

// numberKey accepts a sequence number with or without its leading '#'.
func numberKey(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "#") {
		return value
	}
	return "#" + value
}

func strPtr(s string) *string {
	return &s
}
