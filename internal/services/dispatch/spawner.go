// -----------------------------------------------------------------------
// Dispatch - detached single-subscriber runs outside the server lifecycle
// -----------------------------------------------------------------------

package dispatch

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/ternarybob/arbor"
)

// Spawner launches a detached single-subscriber digest run by
// re-executing the current binary with --user-id. The child owns its
// own lifecycle: a dashboard restart or a slow research phase in one
// send never blocks the other.
type Spawner struct {
	configPaths []string
	logger      arbor.ILogger
}

// NewSpawner creates a spawner. configPaths are forwarded so the child
// runs with the same configuration as the server.
func NewSpawner(configPaths []string, logger arbor.ILogger) *Spawner {
	return &Spawner{
		configPaths: configPaths,
		logger:      logger,
	}
}

// SubmitSendNow starts a detached run for one subscriber. Only launch
// failures are reported; the run's own outcome lands in the child's log.
func (s *Spawner) SubmitSendNow(subscriberID string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	args := []string{"--user-id", subscriberID}
	for _, path := range s.configPaths {
		args = append(args, "-config", path)
	}

	cmd := exec.Command(exe, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start send-now process: %w", err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		s.logger.Warn().Err(err).Int("pid", pid).Msg("Failed to release send-now process handle")
	}

	s.logger.Info().
		Str("subscriber_id", subscriberID).
		Int("pid", pid).
		Msg("Send-now run dispatched")

	return nil
}
