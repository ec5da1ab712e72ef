package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signalbox/internal/backend"
	"signalbox/internal/config"
	"signalbox/internal/env"
	"signalbox/internal/logger"
	"signalbox/internal/models"
	"signalbox/internal/monitor"
	"signalbox/internal/proc"
	"signalbox/internal/usb"
)

// Server owns the registry, the allocator and the host actions of one keeper.
type Server struct {
	cfg       *config.AppConfig
	registry  *ServiceManager
	sdr       *SdrManager
	actions   *ActionService
	startTime time.Time
	mutex     sync.RWMutex
}

func NewServer(cfg *config.AppConfig, registry *ServiceManager, sdr *SdrManager, actions *ActionService) *Server {
	return &Server{
		cfg:       cfg,
		registry:  registry,
		sdr:       sdr,
		actions:   actions,
		startTime: time.Now(),
	}
}

/**
 * Assemble a server from configuration
 * @param {*config.AppConfig} cfg - Validated configuration
 * @returns {*Server} Returns the wired server
 * @returns {error} Returns registry construction errors
 * @description
 * - USB through libusb, systemd over D-Bus, containers through the docker engine
 * - Saved assignments override default_sdr
 * - Missing monitor credentials disable enrichment with a warning
 */
func Bootstrap(cfg *config.AppConfig) (*Server, error) {
	enumerator := usb.NewEnumerator(usb.NewLibusbBus(), cfg.Sdr.KnownIDs)
	store := NewStateStore(cfg.State.Path)
	assignments, err := store.Load()
	if err != nil {
		logger.Warnf("Ignoring saved sdr assignments: %v", err)
		assignments = map[string]string{}
	}

	registry, err := NewServiceManager(cfg, RegistryOptions{
		Factory:     backend.NewFactory(&cfg.Backend),
		Assignments: assignments,
		IndexOf:     IndexResolver(enumerator),
		Timeout:     cfg.Backend.Timeout,
	})
	if err != nil {
		return nil, err
	}

	sdr := NewSdrManager(registry, enumerator, newEnricher(cfg, registry), store)
	return NewServer(cfg, registry, sdr, NewActionService(cfg.Actions)), nil
}

func newEnricher(cfg *config.AppConfig, registry *ServiceManager) *MonitorEnricher {
	if cfg.Monitor.Service == "" {
		return nil
	}
	creds, err := config.LoadCredentials(cfg.Credentials, cfg.Dir)
	if err != nil {
		logger.Warnf("External monitor disabled: %v", err)
		return NewMonitorEnricher(registry, cfg.Monitor.Service, cfg.Monitor.Label, nil)
	}
	cred, err := creds.Lookup(cfg.Monitor.Service)
	if err != nil {
		logger.Warnf("External monitor disabled, no credentials for %s", cfg.Monitor.Service)
		return NewMonitorEnricher(registry, cfg.Monitor.Service, cfg.Monitor.Label, nil)
	}
	client := monitor.NewKismetClient(cfg.Monitor.URL, cred, cfg.Monitor.Timeout)
	return NewMonitorEnricher(registry, cfg.Monitor.Service, cfg.Monitor.Label, client)
}

func (s *Server) Services() *ServiceManager {
	return s.registry
}

func (s *Server) Sdrs() *SdrManager {
	return s.sdr
}

func (s *Server) Actions() *ActionService {
	return s.actions
}

// Links returns the configured external links.
func (s *Server) Links() []models.Link {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]models.Link(nil), s.cfg.Links...)
}

/**
 * Apply a new configuration
 * @param {context.Context} ctx - Bounds stopping the old children
 * @param {*config.AppConfig} cfg - New configuration
 * @returns {error} Returns validation errors, nothing changes then
 * @description
 * - Rebuilds the registry, the host actions, the dongle table and the monitor enricher
 * - server.* and log.* only take effect after a restart
 */
func (s *Server) Reload(ctx context.Context, cfg *config.AppConfig) error {
	if err := s.registry.Reload(ctx, cfg); err != nil {
		return err
	}
	s.actions.SetActions(cfg.Actions)
	s.sdr.Reconfigure(cfg.Sdr.KnownIDs, newEnricher(cfg, s.registry))
	s.mutex.Lock()
	s.cfg = cfg
	s.mutex.Unlock()
	return nil
}

// ReloadFromDisk re-reads the config file the server was started with.
func (s *Server) ReloadFromDisk(ctx context.Context) error {
	cfg, err := config.LoadConfig(env.ConfigPath)
	if err != nil {
		return err
	}
	return s.Reload(ctx, cfg)
}

func (s *Server) Health() models.HealthResponse {
	running := 0
	instances := s.registry.GetInstances()
	for _, si := range instances {
		if si.Status().IsRunning() {
			running++
		}
	}
	return models.HealthResponse{
		Version:   env.Version,
		StartTime: s.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    time.Since(s.startTime).Truncate(time.Second).String(),
		Metrics: models.Metrics{
			TotalRequests:   GetTotalRequestCount(),
			ErrorRequests:   GetTotalErrorCount(),
			TotalServices:   len(instances),
			RunningServices: running,
			SdrDevices:      len(s.sdr.Devices()),
		},
	}
}

/**
 * Refresh service statuses periodically so metrics stay current
 * @param {context.Context} ctx - Stops the loop when done
 * @param {time.Duration} interval - Poll period
 */
func (s *Server) StartMonitoring(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.registry.RefreshAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.registry.RefreshAll(ctx)
		}
	}
}

/**
 * Stop every owned child process and release backend connections
 * @param {time.Duration} timeout - Grace period for children that outlive the registry stop
 */
func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) {
	s.registry.Close(ctx)
	proc.StopAll(timeout)
	logger.Infof("Server shut down")
}

// HTTPStatus maps a core error onto the API status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, ErrActionNotFound), errors.Is(err, backend.ErrEntityNotFound):
		return 404
	case errors.Is(err, proc.ErrAlreadyRunning), errors.Is(err, proc.ErrNotRunning):
		return 409
	case errors.Is(err, ErrSdrNotRequired), errors.Is(err, ErrParamNotSupported),
		errors.Is(err, ErrInvalidParamName):
		return 400
	case errors.Is(err, backend.ErrBackendUnreachable):
		return 503
	default:
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			return 400
		}
		return 500
	}
}

// ErrorCode is the machine readable code of the API error body.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrServiceNotFound):
		return "service.notexist"
	case errors.Is(err, ErrDeviceNotFound):
		return "sdr.notexist"
	case errors.Is(err, ErrActionNotFound):
		return "action.notexist"
	case errors.Is(err, proc.ErrAlreadyRunning):
		return "service.running"
	case errors.Is(err, proc.ErrNotRunning):
		return "service.notrunning"
	case errors.Is(err, proc.ErrSpawn):
		return "service.spawn"
	case errors.Is(err, backend.ErrBackendUnreachable):
		return "backend.unreachable"
	case errors.Is(err, backend.ErrEntityNotFound):
		return "backend.notfound"
	default:
		return fmt.Sprintf("error.%d", HTTPStatus(err))
	}
}
