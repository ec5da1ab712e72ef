package backend

import (
	"fmt"

	"signalbox/internal/config"
	"signalbox/internal/models"
)

/**
 * Factory builds backends and owns the connections they share
 * @description
 * - One bus connection for all systemd services
 * - One engine client for all docker services
 */
type Factory struct {
	Bus    *SystemdBus
	Engine *DockerEngine
}

func NewFactory(cfg *config.BackendConfig) *Factory {
	return &Factory{
		Bus:    NewSystemdBus(cfg.UserBus),
		Engine: NewDockerEngine(cfg.DockerHost),
	}
}

/**
 * Build the backend of one configured service
 * @param {string} id - Service id
 * @param {*config.ServiceConfig} svc - Validated service entry
 * @param {func() map[string]string} params - Placeholder provider for cli services
 * @returns {Backend} Returns the adapter bound to the service
 */
func (f *Factory) New(id string, svc *config.ServiceConfig, params func() map[string]string) (Backend, error) {
	kind, err := ParseKind(svc.Type)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSystemd:
		return NewSystemdBackend(svc.SystemCtlName, f.Bus), nil
	case KindDocker:
		return NewDockerBackend(svc.ContainerName, f.Engine), nil
	case KindCLI:
		return NewCLIBackend(CLIOptions{
			ID:          id,
			CmdLine:     svc.CmdLine,
			WorkDir:     svc.WorkingDir,
			StopTimeout: svc.StopTimeoutOf(),
			Params:      params,
			Autostart:   svc.Autostart,
		}), nil
	}
	return nil, fmt.Errorf("service %q: unsupported backend %q", id, kind)
}

// Close releases the shared connections.
func (f *Factory) Close() {
	f.Bus.Close()
	f.Engine.Close()
}

// ParseKind validates a configured backend type.
func ParseKind(s string) (Kind, error) {
	return models.ParseBackendKind(s)
}
