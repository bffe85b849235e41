package host

import (
	"context"
	"errors"
	"time"

	"github.com/baldhumanity/approachable-neat/neat"
	"github.com/baldhumanity/approachable-neat/neat/trainer"
)

// TimedEpisode ends every episode after a fixed wall-clock duration.
type TimedEpisode struct {
	Duration time.Duration
	// Drive runs the host's simulation for the episode. Its context is
	// cancelled when the window closes. Optional.
	Drive trainer.EpisodeFunc
	// SessionEnded is called after every completed episode. Optional.
	SessionEnded func(generation int, agents []*trainer.Agent)
}

// NewTimedEpisode creates an episode clock with the configured session duration.
func NewTimedEpisode(cfg neat.TrainerConfig, drive trainer.EpisodeFunc) *TimedEpisode {
	return &TimedEpisode{Duration: cfg.SessionDuration, Drive: drive}
}

// RunEpisode waits for the window to close. It returns early only when ctx
// is cancelled or Drive fails.
func (e *TimedEpisode) RunEpisode(ctx context.Context, generation int, agents []*trainer.Agent) error {
	window, cancel := context.WithTimeout(ctx, e.Duration)
	defer cancel()

	if e.Drive != nil {
		if err := e.Drive(window, generation, agents); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	<-window.Done()
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.SessionEnded != nil {
		e.SessionEnded(generation, agents)
	}
	return nil
}
