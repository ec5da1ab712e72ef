package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"signalbox/internal/backend"
	"signalbox/internal/config"
	"signalbox/internal/logger"
	"signalbox/internal/models"
	"signalbox/internal/proc"
)

var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrParamNotSupported  = errors.New("parameters are only supported by cli services")
	ErrInvalidParamName   = errors.New("invalid parameter name")
	defaultBackendTimeout = 10 * time.Second
)

// BackendFactory builds the adapter bound to each configured service.
type BackendFactory interface {
	New(id string, svc *config.ServiceConfig, params func() map[string]string) (backend.Backend, error)
	Close()
}

/**
 * ServiceInstance is one row of the registry
 * @property {string} ID - Service id from the config
 * @property {backend.Kind} Kind - Backend kind, fixed at creation
 * @property {config.ServiceConfig} Spec - Configured entry
 * @description
 * - The backend is bound at construction, there is no lazily attached adapter
 * - status caches the last canonical status read from the backend
 * - sdrSerial is written only by the SDR allocator
 */
type ServiceInstance struct {
	ID        string
	Kind      backend.Kind
	Spec      config.ServiceConfig
	backend   backend.Backend
	status    models.ServiceStatus
	sdrSerial string
	params    map[string]string
	indexOf   func(serial string) int
	mutex     sync.Mutex
}

func (si *ServiceInstance) Backend() backend.Backend {
	return si.backend
}

// Status returns the cached status without touching the backend.
func (si *ServiceInstance) Status() models.ServiceStatus {
	si.mutex.Lock()
	defer si.mutex.Unlock()
	return si.status
}

func (si *ServiceInstance) setStatus(st models.ServiceStatus) {
	si.mutex.Lock()
	si.status = st
	si.mutex.Unlock()
	recordStatus(si.ID, st)
}

// SdrSerial returns the assigned device serial, empty when none.
func (si *ServiceInstance) SdrSerial() string {
	si.mutex.Lock()
	defer si.mutex.Unlock()
	return si.sdrSerial
}

func (si *ServiceInstance) setSdrSerial(serial string) {
	si.mutex.Lock()
	si.sdrSerial = serial
	si.mutex.Unlock()
}

// Params returns a copy of the configured and overridden placeholder values.
func (si *ServiceInstance) Params() map[string]string {
	si.mutex.Lock()
	defer si.mutex.Unlock()
	out := make(map[string]string, len(si.params))
	for k, v := range si.params {
		out[k] = v
	}
	return out
}

/**
 * Placeholder values for the next start
 * @returns {map[string]string} Returns params plus sdr_serial/sdr_index for SDR services
 * @description
 * - Explicit params win over the injected device values
 * - sdr_index is only injected when the receiver index resolves
 */
func (si *ServiceInstance) placeholders() map[string]string {
	params := si.Params()
	serial := si.SdrSerial()
	if !si.Spec.RequireSdr || serial == "" {
		return params
	}
	if _, ok := params["sdr_serial"]; !ok {
		params["sdr_serial"] = serial
	}
	if _, ok := params["sdr_index"]; !ok && si.indexOf != nil {
		if idx := si.indexOf(serial); idx >= 0 {
			params["sdr_index"] = strconv.Itoa(idx)
		}
	}
	return params
}

/**
 * RegistryOptions carries what the registry needs besides the config
 * @property {BackendFactory} Factory - Builds one backend per service
 * @property {map[string]string} Assignments - Persisted service->serial map, overrides default_sdr
 * @property {func(string) int} IndexOf - Resolves a serial to a receiver index, -1 when unknown
 * @property {time.Duration} Timeout - Bound on each systemd/docker call
 */
type RegistryOptions struct {
	Factory     BackendFactory
	Assignments map[string]string
	IndexOf     func(serial string) int
	Timeout     time.Duration
}

// ServiceManager is the service registry: one table, one backend per row.
type ServiceManager struct {
	opts     RegistryOptions
	services map[string]*ServiceInstance
	mutex    sync.RWMutex
}

/**
 * Build the registry from configuration
 * @param {*config.AppConfig} cfg - Validated configuration
 * @param {RegistryOptions} opts - Factory and initial assignment state
 * @returns {*ServiceManager} Returns the populated registry
 * @returns {error} Returns *config.ConfigError or factory errors, the registry is unusable then
 * @description
 * - cli services with autostart are started while their backend is built
 */
func NewServiceManager(cfg *config.AppConfig, opts RegistryOptions) (*ServiceManager, error) {
	if opts.Factory == nil {
		return nil, errors.New("registry: backend factory is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultBackendTimeout
	}
	sm := &ServiceManager{opts: opts}
	table, err := sm.build(cfg)
	if err != nil {
		return nil, err
	}
	sm.services = table
	return sm, nil
}

func (sm *ServiceManager) build(cfg *config.AppConfig) (map[string]*ServiceInstance, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	table := make(map[string]*ServiceInstance, len(cfg.Services))
	for _, id := range config.ServiceIDs(cfg) {
		spec := cfg.Services[id]
		kind, err := backend.ParseKind(spec.Type)
		if err != nil {
			return nil, &config.ConfigError{Service: id, Field: "type", Reason: err.Error()}
		}
		si := &ServiceInstance{
			ID:        id,
			Kind:      kind,
			Spec:      spec,
			status:    models.StatusUnknown,
			params:    spec.StringParams(),
			indexOf:   sm.opts.IndexOf,
		}
		if spec.RequireSdr {
			si.sdrSerial = spec.DefaultSdr
			if serial, ok := sm.opts.Assignments[id]; ok {
				si.sdrSerial = serial
			}
		}
		b, err := sm.opts.Factory.New(id, &si.Spec, si.placeholders)
		if err != nil {
			return nil, fmt.Errorf("registry: service %q: %w", id, err)
		}
		si.backend = b
		table[id] = si
		logger.Infof("Registered %s service '%s' (%s)", kind, id, spec.Description)
	}
	return table, nil
}

// GetInstance looks up a service by id.
func (sm *ServiceManager) GetInstance(id string) (*ServiceInstance, error) {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	si, ok := sm.services[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	return si, nil
}

// GetInstances returns every service ordered by id.
func (sm *ServiceManager) GetInstances() []*ServiceInstance {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	out := make([]*ServiceInstance, 0, len(sm.services))
	for _, si := range sm.services {
		out = append(out, si)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (sm *ServiceManager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, sm.opts.Timeout)
}

/**
 * Run one lifecycle action and refresh the service status
 * @param {context.Context} ctx - Caller context
 * @param {string} id - Service id
 * @param {string} action - start, stop or restart
 * @returns {error} Returns ErrServiceNotFound or the backend's error
 */
func (sm *ServiceManager) act(ctx context.Context, id, action string) error {
	si, err := sm.GetInstance(id)
	if err != nil {
		return err
	}
	actx, cancel := sm.withTimeout(ctx)
	defer cancel()

	switch action {
	case "start":
		err = si.backend.Start(actx)
	case "stop":
		err = si.backend.Stop(actx)
	case "restart":
		err = si.backend.Restart(actx)
	default:
		err = fmt.Errorf("unknown action %q", action)
	}
	recordAction(id, action, err)
	if err != nil {
		logger.Errorf("Failed to %s service '%s': %v", action, id, err)
	} else {
		logger.Infof("Service '%s' %s done", id, action)
	}
	si.setStatus(si.backend.Status(actx))
	return err
}

func (sm *ServiceManager) StartService(ctx context.Context, id string) error {
	return sm.act(ctx, id, "start")
}

func (sm *ServiceManager) StopService(ctx context.Context, id string) error {
	return sm.act(ctx, id, "stop")
}

func (sm *ServiceManager) RestartService(ctx context.Context, id string) error {
	return sm.act(ctx, id, "restart")
}

/**
 * Query the backend for a fresh canonical status
 * @param {context.Context} ctx - Caller context
 * @param {string} id - Service id
 * @returns {models.ServiceStatus} Returns the status, StatusUnknown for an unconfigured id
 */
func (sm *ServiceManager) GetStatus(ctx context.Context, id string) models.ServiceStatus {
	si, err := sm.GetInstance(id)
	if err != nil {
		return models.StatusUnknown
	}
	qctx, cancel := sm.withTimeout(ctx)
	defer cancel()
	st := si.backend.Status(qctx)
	si.setStatus(st)
	return st
}

// RefreshAll queries every backend; different services are queried concurrently.
func (sm *ServiceManager) RefreshAll(ctx context.Context) map[string]models.ServiceStatus {
	instances := sm.GetInstances()
	result := make(map[string]models.ServiceStatus, len(instances))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, si := range instances {
		wg.Add(1)
		go func(si *ServiceInstance) {
			defer wg.Done()
			qctx, cancel := sm.withTimeout(ctx)
			defer cancel()
			st := si.backend.Status(qctx)
			si.setStatus(st)
			mu.Lock()
			result[si.ID] = st
			mu.Unlock()
		}(si)
	}
	wg.Wait()
	return result
}

/**
 * Override one command placeholder of a cli service
 * @param {string} id - Service id
 * @param {string} name - Placeholder name without angle brackets
 * @param {string} value - New value, used from the next start on
 * @returns {error} Returns ErrServiceNotFound, ErrParamNotSupported or ErrInvalidParamName
 */
func (sm *ServiceManager) SetParam(id, name, value string) error {
	si, err := sm.GetInstance(id)
	if err != nil {
		return err
	}
	if si.Kind != backend.KindCLI {
		return fmt.Errorf("%w: %s is %s", ErrParamNotSupported, id, si.Kind)
	}
	if name == "" || strings.ContainsAny(name, "<> \t") {
		return fmt.Errorf("%w: %q", ErrInvalidParamName, name)
	}
	si.mutex.Lock()
	si.params[name] = value
	si.mutex.Unlock()
	logger.Infof("Service '%s' param %s=%s", id, name, value)
	return nil
}

// SetSdrSerial records the device assigned to a service. Only the allocator calls it.
func (sm *ServiceManager) SetSdrSerial(id, serial string) error {
	si, err := sm.GetInstance(id)
	if err != nil {
		return err
	}
	si.setSdrSerial(serial)
	return nil
}

// Assignments returns the service->serial map of every SDR service, "" meaning unassigned.
func (sm *ServiceManager) Assignments() map[string]string {
	out := map[string]string{}
	for _, si := range sm.GetInstances() {
		if si.Spec.RequireSdr {
			out[si.ID] = si.SdrSerial()
		}
	}
	return out
}

/**
 * Build the externally visible view of a service
 * @param {context.Context} ctx - Caller context
 * @param {string} id - Service id
 * @returns {models.ServiceDetail} Returns the detail with a fresh status
 */
func (sm *ServiceManager) GetDetail(ctx context.Context, id string) (models.ServiceDetail, error) {
	si, err := sm.GetInstance(id)
	if err != nil {
		return models.ServiceDetail{}, err
	}
	qctx, cancel := sm.withTimeout(ctx)
	defer cancel()

	st := si.backend.Status(qctx)
	si.setStatus(st)
	detail := models.ServiceDetail{
		ID:          si.ID,
		Kind:        string(si.Kind),
		Description: si.Spec.Description,
		Link:        si.Spec.Link,
		RequireSdr:  si.Spec.RequireSdr,
		SelectedSdr: si.SdrSerial(),
		Autostart:   si.Spec.Autostart,
		Status:      st,
		Backend:     si.backend.Detail(qctx),
	}
	if si.Kind == backend.KindCLI {
		detail.Params = si.Params()
	}
	if p, ok := si.backend.(interface{ Process() *proc.ProcessInstance }); ok {
		pd := p.Process().GetDetail()
		detail.Process = &pd
	}
	return detail, nil
}

// stopChildren stops every cli child of the table. Callers hold the write lock.
func (sm *ServiceManager) stopChildren(ctx context.Context) {
	for id, si := range sm.services {
		if si.Kind != backend.KindCLI {
			continue
		}
		if err := si.backend.Stop(ctx); err != nil && !errors.Is(err, proc.ErrNotRunning) {
			logger.Errorf("Failed to stop service '%s': %v", id, err)
		}
	}
}

/**
 * Rebuild the table from a new configuration
 * @param {*config.AppConfig} cfg - New configuration
 * @returns {error} Returns validation errors, the old table is kept then
 * @description
 * - Children owned by the old table are stopped before the new one is built
 * - Current SDR assignments carry over to services that still exist
 */
func (sm *ServiceManager) Reload(ctx context.Context, cfg *config.AppConfig) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	assignments := sm.Assignments()

	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.stopChildren(ctx)
	for id := range sm.services {
		forgetStatus(id)
	}
	sm.opts.Assignments = assignments
	table, err := sm.build(cfg)
	if err != nil {
		return err
	}
	sm.services = table
	logger.Infof("Registry reloaded with %d services", len(table))
	return nil
}

// Close stops owned children and releases backend connections.
func (sm *ServiceManager) Close(ctx context.Context) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.stopChildren(ctx)
	sm.opts.Factory.Close()
}
