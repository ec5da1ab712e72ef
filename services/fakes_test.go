package services

import (
	"context"
	"errors"
	"sync"

	"signalbox/internal/backend"
	"signalbox/internal/config"
	"signalbox/internal/models"
	"signalbox/internal/proc"
)

type fakeBackend struct {
	kind     backend.Kind
	status   models.ServiceStatus
	startErr error
	calls    []string
	mutex    sync.Mutex
}

func (f *fakeBackend) Kind() backend.Kind {
	return f.kind
}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Start(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.record("start")
	if f.startErr != nil {
		return f.startErr
	}
	if f.kind == backend.KindCLI && f.status == models.StatusRunning {
		return proc.ErrAlreadyRunning
	}
	f.status = models.StatusRunning
	return nil
}

func (f *fakeBackend) Stop(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.record("stop")
	if f.kind == backend.KindCLI && f.status != models.StatusRunning {
		return proc.ErrNotRunning
	}
	f.status = models.StatusStopped
	return nil
}

func (f *fakeBackend) Restart(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.record("restart")
	f.status = models.StatusRunning
	return nil
}

func (f *fakeBackend) Status(ctx context.Context) models.ServiceStatus {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.status == "" {
		return models.StatusStopped
	}
	return f.status
}

func (f *fakeBackend) Detail(ctx context.Context) map[string]string {
	return map[string]string{"fake": string(f.kind)}
}

func (f *fakeBackend) Calls() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeFactory struct {
	backends map[string]*fakeBackend
	params   map[string]func() map[string]string
	initial  map[string]models.ServiceStatus
	closed   bool
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		backends: map[string]*fakeBackend{},
		params:   map[string]func() map[string]string{},
		initial:  map[string]models.ServiceStatus{},
	}
}

func (f *fakeFactory) New(id string, svc *config.ServiceConfig, params func() map[string]string) (backend.Backend, error) {
	kind, err := backend.ParseKind(svc.Type)
	if err != nil {
		return nil, err
	}
	b := &fakeBackend{kind: kind, status: f.initial[id]}
	f.backends[id] = b
	f.params[id] = params
	return b, nil
}

func (f *fakeFactory) Close() {
	f.closed = true
}

type fakeLister struct {
	devices []models.SdrDevice
	err     error
	calls   int
}

func (f *fakeLister) List() ([]models.SdrDevice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.SdrDevice, len(f.devices))
	copy(out, f.devices)
	return out, nil
}

type fakeMonitor struct {
	usage map[int]string
	err   error
}

func (f *fakeMonitor) LookupByIndex(ctx context.Context, index int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.usage[index], nil
}

var errBoom = errors.New("boom")

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Sdr: config.SdrConfig{KnownIDs: config.DefaultKnownIDs},
		Services: map[string]config.ServiceConfig{
			"kismet": {
				Type:          "systemd",
				Description:   "Kismet wireless monitor",
				SystemCtlName: "kismet.service",
				RequireSdr:    true,
			},
			"rtl433": {
				Type:        "cli",
				Description: "rtl_433 sensor decoder",
				CmdLine:     "rtl_433 -d :<sdr_serial> -f <freq>",
				RequireSdr:  true,
				DefaultSdr:  "00000001",
				Params:      map[string]interface{}{"freq": 433.92},
			},
			"openwebrx": {
				Type:          "docker",
				Description:   "OpenWebRX",
				ContainerName: "openwebrx",
				Link:          "http://localhost:8073",
			},
		},
	}
}

func newTestRegistry(f *fakeFactory, opts ...func(*RegistryOptions)) (*ServiceManager, error) {
	o := RegistryOptions{Factory: f}
	for _, fn := range opts {
		fn(&o)
	}
	return NewServiceManager(testConfig(), o)
}

func testDevices() []models.SdrDevice {
	return []models.SdrDevice{
		{VendorID: 0x0bda, ProductID: 0x2838, Serial: "00000001", Index: 0},
		{VendorID: 0x0bda, ProductID: 0x2838, Serial: "1234", Index: 1},
		{VendorID: 0x0bda, ProductID: 0x2832, Serial: "", Index: models.IndexNotAvailable, Bus: 1, Address: 9},
	}
}
