package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"sync"

	"signalbox/internal/config"
	"signalbox/internal/logger"
	"signalbox/internal/models"
)

var ErrActionNotFound = errors.New("action not found")

// ActionService runs the configured host commands (shutdown, reboot, ...).
type ActionService struct {
	actions map[string]config.ActionConfig
	mutex   sync.RWMutex
}

func NewActionService(actions map[string]config.ActionConfig) *ActionService {
	a := &ActionService{}
	a.SetActions(actions)
	return a
}

// SetActions replaces the action table, used on config reload.
func (a *ActionService) SetActions(actions map[string]config.ActionConfig) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.actions = make(map[string]config.ActionConfig, len(actions))
	for k, v := range actions {
		a.actions[k] = v
	}
}

func (a *ActionService) List() []models.Action {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	out := make([]models.Action, 0, len(a.actions))
	for name, act := range a.actions {
		out = append(out, models.Action{Name: name, Text: act.Text, Argv: act.Command})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

/**
 * Run a host action and wait for it
 * @param {context.Context} ctx - Cancels the command
 * @param {string} name - Action name from the config
 * @returns {string} Returns combined stdout/stderr
 * @returns {error} Returns ErrActionNotFound or the command's error
 */
func (a *ActionService) Run(ctx context.Context, name string) (string, error) {
	a.mutex.RLock()
	act, ok := a.actions[name]
	a.mutex.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	if len(act.Command) == 0 {
		return "", fmt.Errorf("action %s has no command", name)
	}

	logger.Infof("Running action '%s': %v", name, act.Command)
	out, err := exec.CommandContext(ctx, act.Command[0], act.Command[1:]...).CombinedOutput()
	if err != nil {
		logger.Errorf("Action '%s' failed: %v", name, err)
		return string(out), fmt.Errorf("action %s: %w", name, err)
	}
	return string(out), nil
}
