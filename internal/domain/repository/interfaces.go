package repository

import (
	"context"
	"time"

	"aeye-server/internal/domain/entity"
)

// ImageSink persists raw frames received from a device. Only used in debug mode.
type ImageSink interface {
	Save(ctx context.Context, name string, data []byte) error
}

type UsageCounter interface {
	Increment(ctx context.Context, deviceID string) error
	Count(ctx context.Context, deviceID string) (int64, error)
	Total(ctx context.Context) (int64, error)
}

// AnalysisObserver receives per-request telemetry from the responder.
type AnalysisObserver interface {
	ObserveOutcome(outcome string)
	ObserveDelay(d time.Duration)
	ObserveResponse(resp *entity.AnalysisResponse)
}

type ProcessProbe interface {
	ResidentMemory(ctx context.Context) (uint64, error)
}
