package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// State is the lifecycle position of a Timer.
type State string

const (
	StateNotStarted State = "not-started"
	StateRunning    State = "running"
	StatePaused     State = "paused"
	StateExpired    State = "expired"
)

const (
	eventStart  = "start"
	eventPause  = "pause"
	eventExpire = "expire"
	eventReset  = "reset"
)

var (
	// ErrExpired is returned when starting a timer whose countdown already
	// reached zero. Only Reset escapes it.
	ErrExpired = errors.New("session: expired")
	// ErrInvalidDuration rejects non-positive durations.
	ErrInvalidDuration = errors.New("session: duration must be positive")
)

// Option configures a Timer.
type Option func(*Timer)

// WithClock overrides the tick source. A nil clock disables background
// ticking; the owner then advances the countdown with Tick.
func WithClock(clock Clock) Option {
	return func(t *Timer) {
		t.clock = clock
	}
}

// WithOnExpire registers a callback fired once when the countdown reaches
// zero. It runs on the ticking goroutine and must not call Close.
func WithOnExpire(fn func()) Option {
	return func(t *Timer) {
		t.onExpire = fn
	}
}

// Timer is a countdown for sessions with a custom duration:
// not-started -> running -> expired, with running <-> paused.
type Timer struct {
	mu        sync.Mutex
	machine   *fsm.FSM
	duration  int
	remaining int
	clock     Clock
	onExpire  func()

	// gen changes every time the ticking task is cancelled so ticks that were
	// already in flight for an old task are dropped.
	gen  uint64
	stop chan struct{}
	wg   sync.WaitGroup
}

// New builds a timer for the given number of minutes.
func New(minutes int, options ...Option) (*Timer, error) {
	if minutes <= 0 {
		return nil, ErrInvalidDuration
	}
	t := &Timer{
		duration:  minutes * 60,
		remaining: minutes * 60,
		clock:     RealClock{},
		machine: fsm.NewFSM(
			string(StateNotStarted),
			fsm.Events{
				{Name: eventStart, Src: []string{string(StateNotStarted), string(StatePaused)}, Dst: string(StateRunning)},
				{Name: eventPause, Src: []string{string(StateRunning)}, Dst: string(StatePaused)},
				{Name: eventExpire, Src: []string{string(StateRunning)}, Dst: string(StateExpired)},
				{Name: eventReset, Src: []string{string(StateRunning), string(StatePaused), string(StateExpired)}, Dst: string(StateNotStarted)},
			},
			fsm.Callbacks{},
		),
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// Start moves not-started or paused timers to running. The countdown keeps
// whatever time was left; it is only refilled by Reset.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current() == StateExpired {
		return ErrExpired
	}
	if err := t.machine.Event(context.Background(), eventStart); err != nil {
		return fmt.Errorf("session: start: %w", err)
	}
	if t.clock == nil {
		return nil
	}

	stop := make(chan struct{})
	t.stop = stop
	ticker := t.clock.NewTicker(time.Second)
	gen := t.gen
	t.wg.Add(1)
	go t.loop(gen, stop, ticker)
	return nil
}

// Pause stops the countdown without losing the remaining time.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.machine.Event(context.Background(), eventPause); err != nil {
		return fmt.Errorf("session: pause: %w", err)
	}
	t.cancelLocked()
	return nil
}

// Reset returns to not-started with the full duration.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current() != StateNotStarted {
		_ = t.machine.Event(context.Background(), eventReset)
	}
	t.remaining = t.duration
	t.cancelLocked()
}

// Close cancels the ticking task and waits for it to exit.
func (t *Timer) Close() {
	t.mu.Lock()
	t.cancelLocked()
	t.mu.Unlock()
	t.wg.Wait()
}

// Tick advances the countdown by one second when running and returns the
// resulting state.
func (t *Timer) Tick() State {
	t.mu.Lock()
	gen := t.gen
	t.mu.Unlock()
	t.tick(gen)
	return t.State()
}

// State reports the current lifecycle state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current()
}

// Remaining returns the seconds left on the countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Duration returns the full countdown in seconds.
func (t *Timer) Duration() int {
	return t.duration
}

// Expired reports whether the countdown reached zero.
func (t *Timer) Expired() bool {
	return t.State() == StateExpired
}

// Started reports whether the session left not-started at least once since
// the last reset.
func (t *Timer) Started() bool {
	return t.State() != StateNotStarted
}

func (t *Timer) current() State {
	return State(t.machine.Current())
}

func (t *Timer) loop(gen uint64, stop <-chan struct{}, ticker Ticker) {
	defer t.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if !t.tick(gen) {
				return
			}
		}
	}
}

// tick decrements the countdown for the task identified by gen and reports
// whether that task should keep ticking.
func (t *Timer) tick(gen uint64) bool {
	t.mu.Lock()
	if gen != t.gen || t.current() != StateRunning {
		t.mu.Unlock()
		return false
	}

	t.remaining--
	if t.remaining > 0 {
		t.mu.Unlock()
		return true
	}

	t.remaining = 0
	_ = t.machine.Event(context.Background(), eventExpire)
	t.cancelLocked()
	onExpire := t.onExpire
	t.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
	return false
}

func (t *Timer) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.gen++
}

// Format renders seconds as m:ss.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
