package proc

import (
	"errors"
	"sync"
	"time"

	"signalbox/internal/logger"
)

var (
	liveMu sync.Mutex
	live   = map[*ProcessInstance]struct{}{}
)

func track(pi *ProcessInstance) {
	liveMu.Lock()
	live[pi] = struct{}{}
	liveMu.Unlock()
}

func untrack(pi *ProcessInstance) {
	liveMu.Lock()
	delete(live, pi)
	liveMu.Unlock()
}

// Live returns the number of instances still holding a handle.
func Live() int {
	liveMu.Lock()
	defer liveMu.Unlock()
	return len(live)
}

/**
 * Stop every child spawned by this keeper
 * @param {time.Duration} timeout - Per-process grace period before SIGKILL
 * @description
 * - Called on keeper shutdown so no child outlives it
 */
func StopAll(timeout time.Duration) {
	liveMu.Lock()
	instances := make([]*ProcessInstance, 0, len(live))
	for pi := range live {
		instances = append(instances, pi)
	}
	liveMu.Unlock()

	var wg sync.WaitGroup
	for _, pi := range instances {
		wg.Add(1)
		go func(pi *ProcessInstance) {
			defer wg.Done()
			if err := pi.StopProcess(timeout); err != nil && !errors.Is(err, ErrNotRunning) {
				logger.Errorf("Failed to stop process '%s': %v", pi.Title, err)
			}
		}(pi)
	}
	wg.Wait()
}
