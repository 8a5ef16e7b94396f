package aster

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/akmonengine/aster/actor"
)

// DefaultMaxAccumulator caps banked wall-clock time. Elapsed time beyond the
// cap is dropped, so a long stall never replays as a burst of steps.
const DefaultMaxAccumulator = 0.25

// Scheduler runs the simulation on a deterministic fixed-step clock,
// decoupled from the rendering frame rate. Each rendered frame calls Tick
// once with the current wall-clock time; the scheduler banks the elapsed time
// and runs zero or more fixed steps out of it. Every fixed step runs all
// registered contributors in (phase, priority, registration) order, then
// integrates the craft.
//
// Single-threaded by contract: Tick is called from the frame callback and
// never concurrently.
type Scheduler struct {
	FixedDt        float64
	MaxAccumulator float64
	Craft          *actor.Craft
	Logger         *slog.Logger

	accumulator   float64
	lastTick      time.Time
	baselineValid bool
	enabled       bool

	registrations []registration
	nextOrder     int
	needsSort     bool
	inStep        bool
	removals      []Contributor
}

// NewScheduler creates an enabled scheduler stepping at the given frequency
// (Hz) and integrating the given craft
func NewScheduler(frequency float64, craft *actor.Craft) *Scheduler {
	if frequency <= 0 {
		frequency = 120
	}
	return &Scheduler{
		FixedDt:        1.0 / frequency,
		MaxAccumulator: DefaultMaxAccumulator,
		Craft:          craft,
		Logger:         slog.Default(),
		enabled:        true,
	}
}

// Register adds a contributor. Registration order is the stable tie-break for
// contributors sharing a phase and priority.
func (s *Scheduler) Register(c Contributor) {
	s.registrations = append(s.registrations, registration{contributor: c, order: s.nextOrder})
	s.nextOrder++
	s.needsSort = true
}

// Unregister removes a contributor. Removal from inside a running step is
// deferred to the end of that step, so the contributor list never changes
// under the iteration.
func (s *Scheduler) Unregister(c Contributor) {
	if s.inStep {
		s.removals = append(s.removals, c)
		return
	}
	s.remove(c)
}

func (s *Scheduler) remove(c Contributor) {
	s.registrations = slices.DeleteFunc(s.registrations, func(r registration) bool {
		return r.contributor == c
	})
}

// SetEnabled pauses or resumes the simulation. Disabling resets the
// accumulator and invalidates the clock baseline: re-enabling starts from a
// fresh baseline instead of replaying the paused wall-clock time.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.enabled = enabled
	if !enabled {
		s.accumulator = 0
		s.baselineValid = false
	}
}

func (s *Scheduler) Enabled() bool {
	return s.enabled
}

// Tick advances the simulation to now. The first call after creation or
// re-enabling only records the baseline timestamp, avoiding one huge initial
// step. Subsequent calls bank the elapsed time, clamp it to MaxAccumulator,
// and consume it in whole fixed steps.
func (s *Scheduler) Tick(now time.Time) {
	if !s.enabled {
		return
	}
	if !s.baselineValid {
		s.lastTick = now
		s.baselineValid = true
		return
	}

	elapsed := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	if elapsed < 0 {
		return // clock went backwards, keep the new baseline
	}

	s.accumulator = min(s.accumulator+elapsed, s.MaxAccumulator)

	for s.accumulator >= s.FixedDt {
		s.step()
		s.accumulator -= s.FixedDt
	}
}

// step runs one fixed step: contributors in order, then craft integration
func (s *Scheduler) step() {
	if s.needsSort {
		slices.SortStableFunc(s.registrations, func(a, b registration) int {
			if c := cmp.Compare(a.contributor.Phase(), b.contributor.Phase()); c != 0 {
				return c
			}
			if c := cmp.Compare(a.contributor.Priority(), b.contributor.Priority()); c != 0 {
				return c
			}
			return cmp.Compare(a.order, b.order)
		})
		s.needsSort = false
	}

	s.inStep = true
	for _, r := range s.registrations {
		s.runContributor(r.contributor)
	}
	s.inStep = false

	if s.Craft != nil {
		s.Craft.Tick(s.FixedDt)
	}

	for _, c := range s.removals {
		s.remove(c)
	}
	s.removals = s.removals[:0]
}

// runContributor isolates one contributor's step: a panicking contributor is
// logged and skipped for this step, the rest of the tick continues. One
// broken contributor must not stop integration of the craft.
func (s *Scheduler) runContributor(c Contributor) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("contributor panicked, skipping for this step",
				"phase", c.Phase().String(),
				"priority", c.Priority(),
				"panic", r,
			)
		}
	}()
	c.Step(s.FixedDt)
}
