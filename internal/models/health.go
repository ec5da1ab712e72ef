package models

// HealthResponse is the body of the /healthz probe
type HealthResponse struct {
	Version   string  `json:"version"`
	StartTime string  `json:"startTime"`
	Status    string  `json:"status"`
	Uptime    string  `json:"uptime"`
	Metrics   Metrics `json:"metrics"`
}

// Metrics carries the key counters reported by /healthz
type Metrics struct {
	TotalRequests   int64 `json:"totalRequests"`
	ErrorRequests   int64 `json:"errorRequests"`
	TotalServices   int   `json:"totalServices"`
	RunningServices int   `json:"runningServices"`
	SdrDevices      int   `json:"sdrDevices"`
}
