package entity

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Server    string `json:"server"`
}

// SystemStatus feeds the control panel.
type SystemStatus struct {
	Status         string `json:"status"`
	Uptime         int64  `json:"uptime"` // seconds
	Memory         string `json:"memory"`
	MemoryBytes    uint64 `json:"memory_bytes"`
	AnalysesTotal  int64  `json:"analyses_total"`
	SaveImages     bool   `json:"save_images"`
	ServerName     string `json:"server"`
	ServerVersion  string `json:"version"`
	GoroutineCount int    `json:"goroutines"`
}

// DeviceUsage reports how many analyses a device has requested.
type DeviceUsage struct {
	DeviceID string `json:"device_id"`
	Analyses int64  `json:"analyses"`
}
