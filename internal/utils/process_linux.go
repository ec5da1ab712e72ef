//go:build linux

package utils

import "syscall"

// children die with the keeper even when it is killed without cleanup
func newSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}
