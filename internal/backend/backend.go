package backend

import (
	"context"
	"errors"

	"signalbox/internal/models"
)

var (
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrUnitJobFailed      = errors.New("unit job failed")
)

// Kind is the closed set of backends a service can be bound to.
type Kind = models.BackendKind

const (
	KindSystemd = models.KindSystemd
	KindDocker  = models.KindDocker
	KindCLI     = models.KindCLI
)

/**
 * Backend is the lifecycle contract every service adapter implements
 * @description
 * - Start/Stop/Restart are actions and report failures to the caller
 * - Status never fails, unreachable or missing entities degrade to a canonical value
 * - Detail returns raw backend fields for display, nil when nothing is known
 */
type Backend interface {
	Kind() Kind
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Status(ctx context.Context) models.ServiceStatus
	Detail(ctx context.Context) map[string]string
}
