package proc

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"signalbox/internal/logger"
	"signalbox/internal/models"
	"signalbox/internal/utils"
)

var (
	ErrAlreadyRunning = errors.New("process already running")
	ErrNotRunning     = errors.New("process not running")
	ErrSpawn          = errors.New("failed to spawn process")
)

// drainGrace bounds how long Stop waits for output readers after the child is gone.
// Grandchildren holding the pipes open would otherwise block it forever.
const drainGrace = 2 * time.Second

// maxLogLine caps one logged output line.
const maxLogLine = 4096

/**
 * processHandle is one spawned child and its bookkeeping
 * @property {*exec.Cmd} cmd - The started command
 * @property {chan} done - Closed by the waiter goroutine once the child is reaped
 * @property {error} exitErr - Result of cmd.Wait, valid after done is closed
 * @property {bool} stopping - Set by StopProcess so the waiter doesn't record an unexpected exit
 */
type processHandle struct {
	cmd      *exec.Cmd
	done     chan struct{}
	exitErr  error
	stopping bool
	readers  []*os.File
	drains   sync.WaitGroup
}

func (h *processHandle) exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// wait blocks until the child is reaped or timeout elapses. A negative timeout waits forever.
func (h *processHandle) wait(timeout time.Duration) bool {
	if timeout < 0 {
		<-h.done
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-h.done:
		return true
	case <-t.C:
		return false
	}
}

func (h *processHandle) closeDrains(grace time.Duration) {
	finished := make(chan struct{})
	go func() {
		h.drains.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(grace):
		for _, r := range h.readers {
			r.Close()
		}
		<-finished
	}
}

/**
 * ProcessInstance supervises one child process of a command-line service
 * @property {string} Title - Service id, used as the log prefix
 * @property {string} Command - Command template, kept for display
 * @property {[]string} Args - Argument vector of the last start
 * @property {string} WorkDir - Working directory, empty inherits the keeper's
 * @property {time.Time} StartTime - Last start time
 * @property {time.Time} LastExitTime - Last exit time
 * @property {string} LastExitReason - Why the child last went away
 */
type ProcessInstance struct {
	Title          string
	Command        string
	Args           []string
	WorkDir        string
	StartTime      time.Time
	LastExitTime   time.Time
	LastExitReason string
	handle         *processHandle
	mutex          sync.Mutex
}

// NewProcessInstance creates an idle instance; nothing is spawned until StartProcess.
func NewProcessInstance(title, command, workDir string) *ProcessInstance {
	return &ProcessInstance{
		Title:   title,
		Command: command,
		WorkDir: workDir,
	}
}

// Pid returns the pid of the current handle, 0 when there is none.
func (pi *ProcessInstance) Pid() int {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()
	return pi.pid()
}

func (pi *ProcessInstance) pid() int {
	if pi.handle == nil || pi.handle.cmd.Process == nil {
		return 0
	}
	return pi.handle.cmd.Process.Pid
}

// HasHandle reports whether a child was spawned and not yet stopped, alive or not.
func (pi *ProcessInstance) HasHandle() bool {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()
	return pi.handle != nil
}

// IsRunning reports whether a handle exists and the child has not exited.
func (pi *ProcessInstance) IsRunning() bool {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()
	return pi.handle != nil && !pi.handle.exited()
}

func (pi *ProcessInstance) GetDetail() models.ProcessDetail {
	pi.mutex.Lock()
	detail := models.ProcessDetail{
		Title:          pi.Title,
		Command:        pi.Command,
		Args:           pi.Args,
		WorkDir:        pi.WorkDir,
		Pid:            pi.pid(),
		Running:        pi.handle != nil && !pi.handle.exited(),
		StartTime:      pi.StartTime,
		LastExitTime:   pi.LastExitTime,
		LastExitReason: pi.LastExitReason,
	}
	pi.mutex.Unlock()

	if detail.Running {
		if rss, cpu, err := utils.ProcessStats(detail.Pid); err == nil {
			detail.RSS = rss
			detail.CPUPercent = cpu
		}
	}
	return detail
}

/**
 * Start the child process
 * @param {[]string} args - Resolved argument vector, args[0] is the executable
 * @returns {error} Returns ErrAlreadyRunning, or an error wrapping ErrSpawn
 * @description
 * - A handle whose child already exited is discarded first
 * - The child runs in its own process group
 * - stdout lines are logged at info, stderr lines at error, both prefixed with [title]
 * - A waiter goroutine reaps the child and records the exit reason
 */
func (pi *ProcessInstance) StartProcess(args []string) error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	if pi.handle != nil {
		if !pi.handle.exited() {
			return ErrAlreadyRunning
		}
		pi.discardHandle()
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: empty command", ErrSpawn)
	}

	cmd := exec.Command(args[0], args[1:]...)
	if pi.WorkDir != "" {
		cmd.Dir = pi.WorkDir
	}
	utils.SetNewPG(cmd)

	outR, outW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	logger.Infof("Executing command: %s", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		errR.Close()
		errW.Close()
		pi.LastExitReason = fmt.Sprintf("start failed: %v", err)
		logger.Errorf("Failed to start process '%s', error: %v", pi.Title, err)
		return fmt.Errorf("%w: %s: %v", ErrSpawn, args[0], err)
	}
	// the child owns the write ends now
	outW.Close()
	errW.Close()

	h := &processHandle{
		cmd:     cmd,
		done:    make(chan struct{}),
		readers: []*os.File{outR, errR},
	}
	h.drains.Add(2)
	go pi.drain(h, outR, false)
	go pi.drain(h, errR, true)
	go pi.watchProcess(h)

	pi.handle = h
	pi.Args = append([]string(nil), args...)
	pi.StartTime = time.Now()
	track(pi)

	logger.Infof("Process '%s' started (PID: %d)", pi.Title, cmd.Process.Pid)
	return nil
}

// drain logs the child's output line by line and keeps reading until EOF.
// Lines longer than maxLogLine are logged truncated, the rest is discarded.
func (pi *ProcessInstance) drain(h *processHandle, r *os.File, isErr bool) {
	defer h.drains.Done()
	defer r.Close()

	reader := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	truncated := false
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if len(chunk) > 0 {
			if room := maxLogLine - len(line); room > 0 {
				if len(chunk) > room {
					chunk = chunk[:room]
					truncated = true
				}
				line = append(line, chunk...)
			} else {
				truncated = true
			}
		}
		if err != nil {
			if len(line) > 0 {
				pi.logLine(string(line), truncated, isErr)
			}
			return
		}
		if isPrefix {
			continue
		}
		pi.logLine(string(line), truncated, isErr)
		line = line[:0]
		truncated = false
	}
}

func (pi *ProcessInstance) logLine(text string, truncated, isErr bool) {
	if truncated {
		text += " ...(truncated)"
	}
	if isErr {
		logger.Errorf("[%s] %s", pi.Title, text)
	} else {
		logger.Infof("[%s] %s", pi.Title, text)
	}
}

// watchProcess reaps the child and records an unexpected exit.
func (pi *ProcessInstance) watchProcess(h *processHandle) {
	h.exitErr = h.cmd.Wait()
	close(h.done)

	pi.mutex.Lock()
	defer pi.mutex.Unlock()
	if pi.handle != h || h.stopping {
		return
	}
	pi.LastExitTime = time.Now()
	if h.exitErr != nil {
		logger.Errorf("Process '%s' (PID: %d) exited with error: %v", pi.Title, h.cmd.Process.Pid, h.exitErr)
		pi.LastExitReason = fmt.Sprintf("exited with error: %v", h.exitErr)
	} else {
		logger.Infof("Process '%s' (PID: %d) exited normally", pi.Title, h.cmd.Process.Pid)
		pi.LastExitReason = "exited normally"
	}
}

/**
 * Stop the child process
 * @param {time.Duration} timeout - Grace period after SIGTERM, negative waits forever
 * @returns {error} Returns ErrNotRunning when there is no handle
 * @description
 * - Sends SIGTERM to the process group and waits up to timeout
 * - Escalates to SIGKILL and waits for the reap
 * - Joins the output readers, force closing them after a short grace
 * - The handle is always cleared, even when the child had already exited
 */
func (pi *ProcessInstance) StopProcess(timeout time.Duration) error {
	pi.mutex.Lock()
	defer pi.mutex.Unlock()

	h := pi.handle
	if h == nil {
		return ErrNotRunning
	}
	h.stopping = true
	pid := h.cmd.Process.Pid

	if !h.exited() {
		if err := utils.TerminateGroup(pid); err != nil {
			logger.Warnf("Failed to terminate process '%s' (PID: %d): %v", pi.Title, pid, err)
		}
		if !h.wait(timeout) {
			logger.Warnf("Process '%s' (PID: %d) did not exit within %v, killing", pi.Title, pid, timeout)
			if err := utils.KillGroup(pid); err != nil {
				logger.Errorf("Failed to kill process '%s' (PID: %d): %v", pi.Title, pid, err)
			}
			<-h.done
		}
		pi.LastExitTime = time.Now()
		pi.LastExitReason = "stopped by user"
	}
	pi.discardHandle()

	logger.Infof("Process '%s' (PID: %d) stopped", pi.Title, pid)
	return nil
}

// discardHandle drops a reaped handle. Callers hold the mutex.
func (pi *ProcessInstance) discardHandle() {
	if pi.handle == nil {
		return
	}
	pi.handle.closeDrains(drainGrace)
	pi.handle = nil
	untrack(pi)
}
