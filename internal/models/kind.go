package models

import "fmt"

// BackendKind is the closed set of process backends a service can be bound to.
type BackendKind string

const (
	KindSystemd BackendKind = "systemd"
	KindDocker  BackendKind = "docker"
	KindCLI     BackendKind = "cli"
)

// ParseBackendKind validates a configured backend type.
func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(s) {
	case KindSystemd, KindDocker, KindCLI:
		return BackendKind(s), nil
	}
	return "", fmt.Errorf("unknown backend type %q (want systemd, docker or cli)", s)
}
