package usecase

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"aeye-server/internal/domain/entity"
	"aeye-server/internal/domain/repository"

	"github.com/dustin/go-humanize"
)

const (
	StatusOnline   = "Online"
	StatusDegraded = "Degraded"
	StatusHealthy  = "healthy"
)

// ServerInfo is static descriptive data about this process.
type ServerInfo struct {
	Name        string
	Version     string
	SaveImages  bool
	MaxUploadMB int
}

// StatusService answers the health, control-panel and usage queries.
type StatusService struct {
	info    ServerInfo
	started time.Time
	probe   repository.ProcessProbe
	usage   repository.UsageCounter
	log     *slog.Logger
	now     func() time.Time
}

func NewStatusService(info ServerInfo, probe repository.ProcessProbe, usage repository.UsageCounter, log *slog.Logger) *StatusService {
	if log == nil {
		log = slog.Default()
	}
	return &StatusService{
		info:    info,
		started: time.Now(),
		probe:   probe,
		usage:   usage,
		log:     log,
		now:     time.Now,
	}
}

func (s *StatusService) Health() entity.HealthStatus {
	return entity.HealthStatus{
		Status:    StatusHealthy,
		Timestamp: s.now().UnixMilli(),
		Server:    s.info.Name,
	}
}

// System never fails: a missing probe reading degrades the report instead.
func (s *StatusService) System(ctx context.Context) entity.SystemStatus {
	st := entity.SystemStatus{
		Status:         StatusOnline,
		Uptime:         int64(s.now().Sub(s.started) / time.Second),
		Memory:         "unknown",
		SaveImages:     s.info.SaveImages,
		ServerName:     s.info.Name,
		ServerVersion:  s.info.Version,
		GoroutineCount: runtime.NumGoroutine(),
	}

	if s.probe != nil {
		rss, err := s.probe.ResidentMemory(ctx)
		if err != nil {
			s.log.Warn("could not read process memory", "error", err)
			st.Status = StatusDegraded
		} else {
			st.MemoryBytes = rss
			st.Memory = humanize.Bytes(rss)
		}
	}

	if s.usage != nil {
		total, err := s.usage.Total(ctx)
		if err != nil {
			s.log.Warn("could not read analysis total", "error", err)
			st.Status = StatusDegraded
		} else {
			st.AnalysesTotal = total
		}
	}
	return st
}

func (s *StatusService) DeviceUsage(ctx context.Context, deviceID string) (entity.DeviceUsage, error) {
	usage := entity.DeviceUsage{DeviceID: deviceID}
	if s.usage == nil {
		return usage, nil
	}
	n, err := s.usage.Count(ctx, deviceID)
	if err != nil {
		return usage, err
	}
	usage.Analyses = n
	return usage, nil
}
