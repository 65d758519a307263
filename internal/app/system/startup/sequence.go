// Package startup runs the application's one-time boot sequence.
//
// A Sequence is a fixed, ordered list of named steps. Run executes every step
// exactly once, strictly in the order they were added, and stops at the first
// failure. Steps that completed before the failure stay committed; nothing is
// retried and nothing is rolled back. After Run returns the sequence is in a
// terminal state and refuses to run again.
//
// Typical use from a lifecycle hook:
//
//	seq := startup.New("signup", logger)
//	seq.Add("routes", registerRoutes)
//	seq.Add("bundles", registerBundles)
//	if _, err := seq.Run(ctx); err != nil {
//	    return err // host refuses to serve traffic
//	}
package startup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyRun is returned by Run when the sequence has already been run,
// whether that run succeeded or failed.
var ErrAlreadyRun = errors.New("startup: sequence already run")

// State is the lifecycle state of a Sequence.
type State int

const (
	NotStarted State = iota
	Running
	Started
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Started:
		return "started"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StepFunc performs one unit of startup work.
type StepFunc func(ctx context.Context) error

// Step is a named unit of startup work.
type Step struct {
	Name string
	Run  StepFunc
}

// StepError reports which step aborted the sequence.
type StepError struct {
	Sequence string
	Step     string
	Index    int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("startup %s: step %d (%s): %v", e.Sequence, e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name  string
	Index int
	Took  time.Duration
	Err   error
}

// Report summarizes a run. Completed lists steps in execution order.
type Report struct {
	BootID    string
	Completed []StepResult
	Failed    *StepResult
	Duration  time.Duration
}

// Sequence is an ordered, run-once list of startup steps.
type Sequence struct {
	name    string
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu    sync.Mutex
	steps []Step
	state State
}

// Option configures a Sequence.
type Option func(*Sequence)

// WithMetrics records step timings and failures in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Sequence) { s.metrics = m }
}

// WithClock overrides the time source used for step and sequence timings.
func WithClock(now func() time.Time) Option {
	return func(s *Sequence) { s.now = now }
}

// New returns an empty sequence. A nil logger is replaced with a no-op logger.
func New(name string, logger *zap.Logger, opts ...Option) *Sequence {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sequence{
		name: name,
		log:  logger,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a step. Steps run in the order they are added.
// Adding a step once Run has been called is a programming error and panics.
func (s *Sequence) Add(name string, fn StepFunc) *Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotStarted {
		panic(fmt.Sprintf("startup %s: cannot add step %q after Run", s.name, name))
	}
	if fn == nil {
		panic(fmt.Sprintf("startup %s: step %q has nil func", s.name, name))
	}
	s.steps = append(s.steps, Step{Name: name, Run: fn})
	return s
}

// Steps returns the step names in execution order.
func (s *Sequence) Steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.steps))
	for i, st := range s.steps {
		names[i] = st.Name
	}
	return names
}

// State reports the current lifecycle state.
func (s *Sequence) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes every step once, in order, stopping at the first error.
// The returned error is a *StepError wrapping the step's failure.
func (s *Sequence) Run(ctx context.Context) (Report, error) {
	s.mu.Lock()
	if s.state != NotStarted {
		s.mu.Unlock()
		return Report{}, ErrAlreadyRun
	}
	s.state = Running
	steps := append([]Step(nil), s.steps...)
	s.mu.Unlock()

	rep := Report{BootID: uuid.NewString()}
	log := s.log.With(zap.String("sequence", s.name), zap.String("boot_id", rep.BootID))
	log.Info("startup sequence begin", zap.Int("steps", len(steps)))

	begin := s.now()
	for i, st := range steps {
		start := s.now()
		err := ctx.Err()
		if err == nil {
			err = runStep(ctx, st)
		}
		res := StepResult{Name: st.Name, Index: i, Took: s.now().Sub(start), Err: err}
		s.metrics.observe(res)

		if err != nil {
			rep.Failed = &res
			rep.Duration = s.now().Sub(begin)
			log.Error("startup step failed",
				zap.Int("index", i+1),
				zap.String("step", st.Name),
				zap.Duration("took", res.Took),
				zap.Int("skipped", len(steps)-i-1),
				zap.Error(err))
			s.finish(Failed)
			return rep, &StepError{Sequence: s.name, Step: st.Name, Index: i, Err: err}
		}

		rep.Completed = append(rep.Completed, res)
		log.Info("startup step done",
			zap.Int("index", i+1),
			zap.String("step", st.Name),
			zap.Duration("took", res.Took))
	}

	rep.Duration = s.now().Sub(begin)
	s.finish(Started)
	log.Info("startup sequence complete", zap.Duration("took", rep.Duration))
	return rep, nil
}

func (s *Sequence) finish(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.metrics.setCompleted(st == Started)
}

// runStep converts a panic inside a step into an error so the sequence
// still ends in a well-defined terminal state.
func runStep(ctx context.Context, st Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return st.Run(ctx)
}
