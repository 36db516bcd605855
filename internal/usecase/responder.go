package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"aeye-server/internal/domain/catalog"
	"aeye-server/internal/domain/entity"
	"aeye-server/internal/domain/repository"
)

// Outcomes reported to the AnalysisObserver.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeDropped  = "dropped"
)

type ResponderConfig struct {
	Catalogs catalog.Catalogs
	Policy   Policy
	Rand     Rand

	// Sink receives decoded frames when debug saving is on. Nil disables it.
	Sink     repository.ImageSink
	Usage    repository.UsageCounter
	Observer repository.AnalysisObserver
	Logger   *slog.Logger
	Now      func() time.Time
}

// Responder produces mock analyses. It holds no per-request state.
type Responder struct {
	catalogs catalog.Catalogs
	policy   Policy
	rng      Rand
	sink     repository.ImageSink
	usage    repository.UsageCounter
	observer repository.AnalysisObserver
	log      *slog.Logger
	now      func() time.Time
}

func NewResponder(cfg ResponderConfig) *Responder {
	r := &Responder{
		catalogs: cfg.Catalogs,
		policy:   cfg.Policy,
		rng:      cfg.Rand,
		sink:     cfg.Sink,
		usage:    cfg.Usage,
		observer: cfg.Observer,
		log:      cfg.Logger,
		now:      cfg.Now,
	}
	if r.rng == nil {
		r.rng = NewSeededRand(uint64(time.Now().UnixNano()))
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Analyze validates the request, optionally saves the frame, waits the
// simulated delay and returns a freshly synthesized response.
//
// ctx should be the server lifecycle context: the delay is only cut short by
// shutdown, never by an individual client going away.
func (r *Responder) Analyze(ctx context.Context, req entity.AnalysisRequest) (*entity.AnalysisResponse, error) {
	log := loggerFrom(ctx, r.log)

	// 1. Validate
	if req.Image == "" {
		r.outcome(OutcomeRejected)
		return nil, entity.ErrMissingImage
	}

	deviceID := req.DeviceLabel()
	log.Info("processing image", "device_id", deviceID, "timestamp", req.TimestampLabel())

	// 2. Debug save, failures never abort the request
	if r.sink != nil {
		r.saveImage(ctx, log, req)
	}

	// 3. Simulated processing latency
	delay := time.Duration(r.policy.Delay.draw(r.rng)) * time.Millisecond
	if r.observer != nil {
		r.observer.ObserveDelay(delay)
	}
	if err := sleepCtx(ctx, delay); err != nil {
		r.outcome(OutcomeDropped)
		log.Warn("analysis dropped before completion", "device_id", deviceID, "error", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrShuttingDown, err)
	}

	// 4. Synthesize
	resp := Synthesize(r.rng, r.catalogs, r.policy, r.now(), req.DeviceID)
	r.outcome(OutcomeSuccess)
	if r.observer != nil {
		r.observer.ObserveResponse(&resp)
	}
	log.Debug("sending response",
		"device_id", deviceID,
		"recognized_faces", len(resp.RecognizedFaces),
		"unknown_faces", resp.UnknownFaces,
		"objects", len(resp.Objects),
		"processing_time", resp.ProcessingTime,
	)

	// 5. Background: usage accounting
	if r.usage != nil {
		go func() {
			// The request may already be answered, so don't tie this to ctx.
			bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.usage.Increment(bgCtx, deviceID); err != nil {
				log.Error("failed to record device usage", "device_id", deviceID, "error", err)
			}
		}()
	}

	return &resp, nil
}

func (r *Responder) saveImage(ctx context.Context, log *slog.Logger, req entity.AnalysisRequest) {
	data, err := decodeImage(req.Image)
	if err != nil {
		log.Error("error saving image", "error", err)
		return
	}
	name := fmt.Sprintf("%s_%s.jpg", req.DeviceLabel(), req.TimestampLabel())
	if err := r.sink.Save(ctx, name, data); err != nil {
		log.Error("error saving image", "file", name, "error", err)
		return
	}
	log.Info("image saved", "file", name, "bytes", len(data))
}

func (r *Responder) outcome(o string) {
	if r.observer != nil {
		r.observer.ObserveOutcome(o)
	}
}

// decodeImage accepts padded and unpadded standard base64.
func decodeImage(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type loggerKey struct{}

// WithLogger attaches a request-scoped logger to ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}
