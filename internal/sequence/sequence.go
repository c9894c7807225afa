// Package sequence issues the human-facing "#NNN" numbers of estimates and
// orders. Allocation never fails: when the backing store cannot answer, a
// timestamp-shaped number is issued instead and counted.
package sequence

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"pos-backend/internal/metrics"
	"pos-backend/internal/timeutil"
)

const (
	Estimates = "estimates"
	Orders    = "orders"
)

// Backend names accepted by SEQUENCE_BACKEND.
const (
	BackendMongo = "mongo"
	BackendRedis = "redis"
	BackendScan  = "scan"
)

type Allocator interface {
	Next(ctx context.Context) string
}

// Source reports the largest number already assigned in a collection, or 0.
type Source interface {
	MaxSequence(ctx context.Context) (int64, error)
}

// Format renders n zero-padded to three digits; wider numbers print wider.
func Format(n int64) string {
	return fmt.Sprintf("#%03d", n)
}

func fallback(name string, err error) string {
	metrics.SequenceFallbacks.WithLabelValues(name).Inc()
	number := "#" + timeutil.SequenceStamp(timeutil.Now())
	log.Warn().Err(err).Str("sequence", name).Str("number", number).Msg("sequence allocation failed, using timestamp")
	return number
}

// ScanAllocator recomputes max+1 on every call. Two concurrent callers can
// observe the same maximum and receive the same number.
type ScanAllocator struct {
	name   string
	source Source
}

func NewScanAllocator(name string, source Source) *ScanAllocator {
	return &ScanAllocator{name: name, source: source}
}

func (a *ScanAllocator) Next(ctx context.Context) string {
	max, err := a.source.MaxSequence(ctx)
	if err != nil {
		return fallback(a.name, err)
	}
	return Format(max + 1)
}
