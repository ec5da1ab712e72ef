package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-systemd/v22/dbus"

	"signalbox/internal/logger"
	"signalbox/internal/models"
)

const unitModeReplace = "replace"

// unitConn is the part of *dbus.Conn the adapter uses.
type unitConn interface {
	StartUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	StopUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	RestartUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	GetUnitPropertiesContext(ctx context.Context, unit string) (map[string]interface{}, error)
	Close()
}

type unitDialer func(ctx context.Context) (unitConn, error)

/**
 * SystemdBus holds one lazily dialed connection to the unit manager
 * @description
 * - Shared by every systemd service of a registry
 * - A failed call drops the connection so the next call redials
 */
type SystemdBus struct {
	dial  unitDialer
	conn  unitConn
	mutex sync.Mutex
}

// NewSystemdBus dials the system bus, or the caller's user bus when userBus is set.
func NewSystemdBus(userBus bool) *SystemdBus {
	return &SystemdBus{dial: func(ctx context.Context) (unitConn, error) {
		if userBus {
			return dbus.NewUserConnectionContext(ctx)
		}
		return dbus.NewWithContext(ctx)
	}}
}

func (b *SystemdBus) get(ctx context.Context) (unitConn, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.conn != nil {
		return b.conn, nil
	}
	conn, err := b.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: systemd: %v", ErrBackendUnreachable, err)
	}
	b.conn = conn
	return conn, nil
}

func (b *SystemdBus) reset(conn unitConn) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.conn == conn && conn != nil {
		conn.Close()
		b.conn = nil
	}
}

// Close releases the bus connection.
func (b *SystemdBus) Close() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// SystemdBackend controls one unit through the bus.
type SystemdBackend struct {
	Unit string
	bus  *SystemdBus
}

func NewSystemdBackend(unit string, bus *SystemdBus) *SystemdBackend {
	return &SystemdBackend{Unit: unit, bus: bus}
}

func (s *SystemdBackend) Kind() Kind {
	return KindSystemd
}

type unitJob func(ctx context.Context, name, mode string, ch chan<- string) (int, error)

/**
 * Queue a unit transition in replace mode and wait for its result
 * @param {string} verb - Action name, for messages
 * @param {func(unitConn) unitJob} pick - Selects the connection method
 * @returns {error} Returns ErrBackendUnreachable, ErrUnitJobFailed, or nil
 * @description
 * - A context deadline while waiting for the job is not an error, the job stays queued
 */
func (s *SystemdBackend) run(ctx context.Context, verb string, pick func(unitConn) unitJob) error {
	conn, err := s.bus.get(ctx)
	if err != nil {
		return err
	}
	ch := make(chan string, 1)
	if _, err := pick(conn)(ctx, s.Unit, unitModeReplace, ch); err != nil {
		s.bus.reset(conn)
		return fmt.Errorf("%w: %s %s: %v", ErrBackendUnreachable, verb, s.Unit, err)
	}
	select {
	case result := <-ch:
		if result != "done" {
			return fmt.Errorf("%w: %s %s: %s", ErrUnitJobFailed, verb, s.Unit, result)
		}
		return nil
	case <-ctx.Done():
		logger.Warnf("systemd %s %s still pending: %v", verb, s.Unit, ctx.Err())
		return nil
	}
}

func (s *SystemdBackend) Start(ctx context.Context) error {
	return s.run(ctx, "start", func(c unitConn) unitJob { return c.StartUnitContext })
}

func (s *SystemdBackend) Stop(ctx context.Context) error {
	return s.run(ctx, "stop", func(c unitConn) unitJob { return c.StopUnitContext })
}

func (s *SystemdBackend) Restart(ctx context.Context) error {
	return s.run(ctx, "restart", func(c unitConn) unitJob { return c.RestartUnitContext })
}

func (s *SystemdBackend) unitState(ctx context.Context) UnitState {
	conn, err := s.bus.get(ctx)
	if err != nil {
		return UnitState{Err: err}
	}
	props, err := conn.GetUnitPropertiesContext(ctx, s.Unit)
	if err != nil {
		s.bus.reset(conn)
		return UnitState{Err: err}
	}
	return UnitState{
		LoadState:   propString(props, "LoadState"),
		ActiveState: propString(props, "ActiveState"),
		SubState:    propString(props, "SubState"),
	}
}

func (s *SystemdBackend) Status(ctx context.Context) models.ServiceStatus {
	st := s.unitState(ctx)
	if st.Err != nil {
		logger.Debugf("systemd status %s: %v", s.Unit, st.Err)
	}
	return MapUnitState(st)
}

func (s *SystemdBackend) Detail(ctx context.Context) map[string]string {
	st := s.unitState(ctx)
	if st.Err != nil {
		return map[string]string{"unit": s.Unit, "error": st.Err.Error()}
	}
	return map[string]string{
		"unit":        s.Unit,
		"loadState":   st.LoadState,
		"activeState": st.ActiveState,
		"subState":    st.SubState,
	}
}

func propString(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
