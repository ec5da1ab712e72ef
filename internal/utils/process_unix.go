//go:build unix

package utils

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// SetNewPG puts the child in its own process group so the whole tree can be signalled.
func SetNewPG(cmd *exec.Cmd) {
	cmd.SysProcAttr = newSysProcAttr()
}

/**
 * Send a signal to the process group led by pid
 * @param {int} pid - Group leader started with SetNewPG
 * @param {syscall.Signal} sig - Signal to deliver
 * @returns {error} Returns nil when the group is already gone
 */
func SignalGroup(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return nil
	}
	err := unix.Kill(-pid, sig)
	if errors.Is(err, unix.ESRCH) {
		// group leader may have exited without a group, try the pid alone
		err = unix.Kill(pid, sig)
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
	}
	return err
}

// TerminateGroup asks the group to exit.
func TerminateGroup(pid int) error {
	return SignalGroup(pid, unix.SIGTERM)
}

// KillGroup forcibly ends the group.
func KillGroup(pid int) error {
	return SignalGroup(pid, unix.SIGKILL)
}
