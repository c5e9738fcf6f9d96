package ink

import (
	"sync"
	"time"
)

// DeviceState is the accelerator's health.
type DeviceState uint8

const (
	// DeviceHealthy means strokes render on the configured accelerator.
	DeviceHealthy DeviceState = iota

	// DeviceRecovering means the device was lost and reinitialization is
	// scheduled. Strokes render on the CPU meanwhile.
	DeviceRecovering

	// DeviceFatal means every reinitialization attempt failed. New strokes
	// are refused with ErrDeviceFatal until the host reloads.
	DeviceFatal
)

func (s DeviceState) String() string {
	switch s {
	case DeviceHealthy:
		return "healthy"
	case DeviceRecovering:
		return "recovering"
	case DeviceFatal:
		return "fatal"
	}
	return "unknown"
}

// DeviceStatus is pushed to OnDeviceStatus subscribers on every change.
type DeviceStatus struct {
	State DeviceState

	// Attempt is the reinitialization attempt in progress, from 1.
	Attempt int

	// Err is the loss or the last reinitialization failure.
	Err error
}

// Scheduler runs f once after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func())

func afterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// backoff returns the delay before attempt n (from 1).
func backoff(base time.Duration, n int) time.Duration {
	return base << (n - 1)
}

// health is the Healthy → Recovering(attempt) → Fatal machine.
type health struct {
	maxAttempts int
	base        time.Duration
	schedule    Scheduler
	reinit      func() error

	mu     sync.Mutex
	status DeviceStatus
	stop   func()
	closed bool
	subs   []func(DeviceStatus)
}

func newHealth(maxAttempts int, base time.Duration, schedule Scheduler, reinit func() error) *health {
	if schedule == nil {
		schedule = afterFunc
	}
	return &health{maxAttempts: maxAttempts, base: base, schedule: schedule, reinit: reinit}
}

func (h *health) current() DeviceStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *health) subscribe(f func(DeviceStatus)) {
	h.mu.Lock()
	h.subs = append(h.subs, f)
	h.mu.Unlock()
}

// deviceLost starts recovery. Losses reported while already recovering or
// fatal are ignored.
func (h *health) deviceLost(err error) {
	h.mu.Lock()
	if h.closed || h.status.State != DeviceHealthy {
		h.mu.Unlock()
		return
	}
	h.status = DeviceStatus{State: DeviceRecovering, Attempt: 1, Err: err}
	st := h.status
	h.stop = h.schedule(backoff(h.base, 1), h.attempt)
	subs := h.subs
	h.mu.Unlock()

	Logger().Warn("ink: device lost, recovering", "err", err, "delay", backoff(h.base, 1))
	notify(subs, st)
}

// attempt runs one reinitialization and schedules the next on failure.
func (h *health) attempt() {
	h.mu.Lock()
	if h.closed || h.status.State != DeviceRecovering {
		h.mu.Unlock()
		return
	}
	n := h.status.Attempt
	h.mu.Unlock()

	err := h.reinit()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		h.status = DeviceStatus{State: DeviceHealthy}
		Logger().Info("ink: device recovered", "attempt", n)
	case n >= h.maxAttempts:
		h.status = DeviceStatus{State: DeviceFatal, Attempt: n, Err: err}
		Logger().Error("ink: device recovery exhausted", "attempts", n, "err", err)
	default:
		h.status = DeviceStatus{State: DeviceRecovering, Attempt: n + 1, Err: err}
		d := backoff(h.base, n+1)
		Logger().Warn("ink: device reinit failed", "attempt", n, "err", err, "next", d)
		h.stop = h.schedule(d, h.attempt)
	}
	st := h.status
	subs := h.subs
	h.mu.Unlock()

	notify(subs, st)
}

func (h *health) close() {
	h.mu.Lock()
	h.closed = true
	stop := h.stop
	h.stop = nil
	h.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func notify(subs []func(DeviceStatus), st DeviceStatus) {
	for _, f := range subs {
		f(st)
	}
}
