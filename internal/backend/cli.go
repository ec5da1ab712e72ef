package backend

import (
	"context"
	"errors"
	"strconv"
	"time"

	"signalbox/internal/logger"
	"signalbox/internal/models"
	"signalbox/internal/proc"
	"signalbox/internal/utils"
)

/**
 * CLIOptions describes one child-process service
 * @property {string} ID - Service id, used as process title and log prefix
 * @property {string} CmdLine - Command template with <name> placeholders
 * @property {string} WorkDir - Working directory of the child
 * @property {time.Duration} StopTimeout - Grace period before SIGKILL, negative waits forever
 * @property {func() map[string]string} Params - Current placeholder values, read on every start
 * @property {bool} Autostart - Start once while constructing the backend
 */
type CLIOptions struct {
	ID          string
	CmdLine     string
	WorkDir     string
	StopTimeout time.Duration
	Params      func() map[string]string
	Autostart   bool
}

// CLIBackend spawns and supervises the service's process itself.
type CLIBackend struct {
	opts     CLIOptions
	instance *proc.ProcessInstance
}

func NewCLIBackend(opts CLIOptions) *CLIBackend {
	b := &CLIBackend{
		opts:     opts,
		instance: proc.NewProcessInstance(opts.ID, opts.CmdLine, opts.WorkDir),
	}
	if opts.Autostart {
		if err := b.Start(context.Background()); err != nil {
			logger.Errorf("Autostart of '%s' failed: %v", opts.ID, err)
		}
	}
	return b
}

func (c *CLIBackend) Kind() Kind {
	return KindCLI
}

// Process exposes the supervised instance for detail views and shutdown.
func (c *CLIBackend) Process() *proc.ProcessInstance {
	return c.instance
}

// CommandLine resolves the template against the current parameters.
func (c *CLIBackend) CommandLine() ([]string, error) {
	var params map[string]string
	if c.opts.Params != nil {
		params = c.opts.Params()
	}
	return utils.GetCommandLine(c.opts.CmdLine, params)
}

func (c *CLIBackend) Start(ctx context.Context) error {
	args, err := c.CommandLine()
	if err != nil {
		return err
	}
	return c.instance.StartProcess(args)
}

func (c *CLIBackend) Stop(ctx context.Context) error {
	return c.instance.StopProcess(c.opts.StopTimeout)
}

// Restart stops a live child (if any) and starts it again with fresh parameters.
func (c *CLIBackend) Restart(ctx context.Context) error {
	if err := c.Stop(ctx); err != nil && !errors.Is(err, proc.ErrNotRunning) {
		return err
	}
	return c.Start(ctx)
}

func (c *CLIBackend) Status(ctx context.Context) models.ServiceStatus {
	return MapProcessState(ProcessState{
		HasHandle: c.instance.HasHandle(),
		Alive:     c.instance.IsRunning(),
	})
}

func (c *CLIBackend) Detail(ctx context.Context) map[string]string {
	d := c.instance.GetDetail()
	detail := map[string]string{
		"command": c.opts.CmdLine,
		"running": strconv.FormatBool(d.Running),
	}
	if d.Pid != 0 {
		detail["pid"] = strconv.Itoa(d.Pid)
	}
	if d.LastExitReason != "" {
		detail["lastExitReason"] = d.LastExitReason
	}
	return detail
}
