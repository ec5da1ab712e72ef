package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"signalbox/internal/logger"
	"signalbox/internal/models"
)

// containerAPI is the part of the engine client the adapter uses.
type containerAPI interface {
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
}

/**
 * DockerEngine lazily builds one engine client for all container services
 * @property {string} host - Engine endpoint, e.g. unix:///var/run/docker.sock
 */
type DockerEngine struct {
	host   string
	cli    containerAPI
	closer func() error
	mutex  sync.Mutex
}

func NewDockerEngine(host string) *DockerEngine {
	return &DockerEngine{host: host}
}

func (e *DockerEngine) get() (containerAPI, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.cli != nil {
		return e.cli, nil
	}
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if e.host != "" {
		opts = append(opts, client.WithHost(e.host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: docker: %v", ErrBackendUnreachable, err)
	}
	e.cli = cli
	e.closer = cli.Close
	return cli, nil
}

func (e *DockerEngine) Close() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.closer != nil {
		e.closer()
	}
	e.cli = nil
	e.closer = nil
}

// DockerBackend controls one container by name.
type DockerBackend struct {
	Container string
	engine    *DockerEngine
}

func NewDockerBackend(name string, engine *DockerEngine) *DockerBackend {
	return &DockerBackend{Container: name, engine: engine}
}

func (d *DockerBackend) Kind() Kind {
	return KindDocker
}

func (d *DockerBackend) wrap(verb string, err error) error {
	if err == nil {
		return nil
	}
	if errdefs.IsNotFound(err) {
		return fmt.Errorf("%w: container %s", ErrEntityNotFound, d.Container)
	}
	if client.IsErrConnectionFailed(err) {
		return fmt.Errorf("%w: %s %s: %v", ErrBackendUnreachable, verb, d.Container, err)
	}
	return fmt.Errorf("docker %s %s: %w", verb, d.Container, err)
}

func (d *DockerBackend) Start(ctx context.Context) error {
	cli, err := d.engine.get()
	if err != nil {
		return err
	}
	return d.wrap("start", cli.ContainerStart(ctx, d.Container, container.StartOptions{}))
}

func (d *DockerBackend) Stop(ctx context.Context) error {
	cli, err := d.engine.get()
	if err != nil {
		return err
	}
	return d.wrap("stop", cli.ContainerStop(ctx, d.Container, container.StopOptions{}))
}

func (d *DockerBackend) Restart(ctx context.Context) error {
	cli, err := d.engine.get()
	if err != nil {
		return err
	}
	return d.wrap("restart", cli.ContainerRestart(ctx, d.Container, container.StopOptions{}))
}

func (d *DockerBackend) containerState(ctx context.Context) ContainerState {
	cli, err := d.engine.get()
	if err != nil {
		return ContainerState{Err: err}
	}
	info, err := cli.ContainerInspect(ctx, d.Container)
	if err != nil {
		return ContainerState{Err: d.wrap("inspect", err)}
	}
	if info.ContainerJSONBase == nil || info.State == nil {
		return ContainerState{}
	}
	return ContainerState{Status: info.State.Status}
}

func (d *DockerBackend) Status(ctx context.Context) models.ServiceStatus {
	st := d.containerState(ctx)
	if st.Err != nil {
		logger.Debugf("docker status %s: %v", d.Container, st.Err)
	}
	return MapContainerState(st)
}

func (d *DockerBackend) Detail(ctx context.Context) map[string]string {
	st := d.containerState(ctx)
	if st.Err != nil {
		return map[string]string{"container": d.Container, "error": st.Err.Error()}
	}
	return map[string]string{"container": d.Container, "state": st.Status}
}
