package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meltforce/repscore/internal/models"
	"github.com/meltforce/repscore/internal/scoring"
)

// Registry owns the live sessions of a server process.
type Registry struct {
	cfg        Config
	classifier *scoring.Classifier
	rewards    *scoring.RewardCalculator
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, classifier *scoring.Classifier, rewards *scoring.RewardCalculator) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	return &Registry{
		cfg:        cfg,
		classifier: classifier,
		rewards:    rewards,
		now:        time.Now,
		sessions:   make(map[string]*entry),
	}, nil
}

// Start opens a session for plan.
func (r *Registry) Start(name string, plan models.WorkoutPlan) (*Session, error) {
	now := r.now()
	s, err := newSession(r.cfg, r.classifier, r.rewards, name, plan, now)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sessions[s.ID()] = &entry{session: s, lastSeen: now}
	r.mu.Unlock()
	return s, nil
}

// Get returns the live session with id and marks it active.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// Remove drops a session. Abandoning a workout is just removing it unfinished.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the configured timeout and
// returns how many were dropped. It does nothing when the timeout is zero.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle sessions every interval until ctx is done. onSweep, when
// set, is called with the live count after each sweep.
func (r *Registry) Run(ctx context.Context, interval time.Duration, log *slog.Logger, onSweep func(live int)) {
	if r.cfg.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Info("dropped idle sessions", "count", n, "idle_timeout", r.cfg.IdleTimeout)
			}
			if onSweep != nil {
				onSweep(r.Len())
			}
		}
	}
}

// Classifier returns the feedback classifier sessions use.
func (r *Registry) Classifier() *scoring.Classifier {
	return r.classifier
}

// Rewards returns the reward calculator sessions use.
func (r *Registry) Rewards() *scoring.RewardCalculator {
	return r.rewards
}
