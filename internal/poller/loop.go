package poller

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
)

// ErrLoopClosed is returned when a command is sent to a loop that has exited.
var ErrLoopClosed = errors.New("poll loop is not running")

// Fetcher reads the two feed resources. *feed.Feed satisfies it.
type Fetcher interface {
	FetchStatus(ctx context.Context) (*feed.RiskStatus, error)
	FetchLogs(ctx context.Context) (string, error)
}

// Intervals configures the three timers and the per-fetch timeout.
type Intervals struct {
	Status    time.Duration
	Logs      time.Duration
	Heartbeat time.Duration
	Timeout   time.Duration
}

// DefaultIntervals returns the stock 5s / 1s / 1s cadence.
func DefaultIntervals() Intervals {
	return Intervals{
		Status:    5 * time.Second,
		Logs:      time.Second,
		Heartbeat: time.Second,
		Timeout:   3 * time.Second,
	}
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdStop
)

type command struct {
	kind   commandKind
	target string
	reply  chan error
}

type statusResult struct {
	status *feed.RiskStatus
	err    error
}

type logResult struct {
	text string
	err  error
}

// Loop is the headless polling driver. One goroutine (Run) owns the
// Session; fetches run in their own goroutines and report back over
// channels, so the session never needs a lock.
type Loop struct {
	fetcher   Fetcher
	intervals Intervals
	logger    logrus.FieldLogger

	commands chan command
	updates  chan Session
	done     chan struct{}
}

// NewLoop creates a Loop. Call Run to start it.
func NewLoop(f Fetcher, iv Intervals, logger logrus.FieldLogger) *Loop {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}
	return &Loop{
		fetcher:   f,
		intervals: iv,
		logger:    logger.WithField("module", "poller"),
		commands:  make(chan command),
		updates:   make(chan Session, 16),
		done:      make(chan struct{}),
	}
}

// Updates returns the channel of session snapshots. It is closed when Run
// returns. Slow readers lose intermediate snapshots, never the latest.
func (l *Loop) Updates() <-chan Session {
	return l.updates
}

// Start begins polling for target, superseding any current run.
func (l *Loop) Start(ctx context.Context, target string) error {
	return l.send(ctx, command{kind: cmdStart, target: target, reply: make(chan error, 1)})
}

// Stop ends the current run. Log polling continues until Run returns.
func (l *Loop) Stop(ctx context.Context) error {
	return l.send(ctx, command{kind: cmdStop, reply: make(chan error, 1)})
}

func (l *Loop) send(ctx context.Context, c command) error {
	select {
	case l.commands <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}

	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Run drives the timers until ctx is cancelled. All timers are released on
// return.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.updates)
	defer close(l.done)

	var sess Session

	statusResults := make(chan statusResult, 4)
	logResults := make(chan logResult, 4)

	logTicker := time.NewTicker(l.intervals.Logs)
	defer logTicker.Stop()

	// Status and heartbeat tickers exist only while a run is active. A nil
	// channel blocks forever in select, which disables the case.
	var statusTicker, beatTicker *time.Ticker
	var statusC, beatC <-chan time.Time

	stopRunTimers := func() {
		if statusTicker != nil {
			statusTicker.Stop()
			statusTicker = nil
		}
		if beatTicker != nil {
			beatTicker.Stop()
			beatTicker = nil
		}
		statusC, beatC = nil, nil
	}
	defer stopRunTimers()

	fetchStatus := func() {
		go func() {
			fctx, cancel := context.WithTimeout(ctx, l.intervals.Timeout)
			st, err := l.fetcher.FetchStatus(fctx)
			cancel()
			select {
			case statusResults <- statusResult{status: st, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	fetchLogs := func() {
		go func() {
			fctx, cancel := context.WithTimeout(ctx, l.intervals.Timeout)
			text, err := l.fetcher.FetchLogs(fctx)
			cancel()
			select {
			case logResults <- logResult{text: text, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	fetchLogs()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-l.commands:
			switch c.kind {
			case cmdStart:
				if _, err := sess.Start(c.target); err != nil {
					c.reply <- err
					continue
				}
				stopRunTimers()
				statusTicker = time.NewTicker(l.intervals.Status)
				beatTicker = time.NewTicker(l.intervals.Heartbeat)
				statusC, beatC = statusTicker.C, beatTicker.C
				l.logger.WithField("target", sess.Target).Info("polling started")
				fetchStatus()
			case cmdStop:
				sess.Stop()
				stopRunTimers()
				l.logger.Info("polling stopped")
			}
			c.reply <- nil
			l.publish(&sess)

		case <-statusC:
			fetchStatus()

		case <-beatC:
			sess.Tick()
			l.publish(&sess)

		case <-logTicker.C:
			fetchLogs()

		case r := <-statusResults:
			if r.err != nil {
				l.logger.WithError(r.err).Debug("status fetch failed")
			}
			sess.ApplyStatus(r.status, r.err)
			l.publish(&sess)

		case r := <-logResults:
			changed := r.err == nil && r.text != sess.Logs
			sess.ApplyLogs(r.text, r.err)
			if changed {
				l.publish(&sess)
			}
		}
	}
}

// publish hands a copy of the session to readers, replacing the oldest
// queued snapshot when the buffer is full.
func (l *Loop) publish(s *Session) {
	snap := s.Clone()
	select {
	case l.updates <- snap:
		return
	default:
	}
	select {
	case <-l.updates:
	default:
	}
	select {
	case l.updates <- snap:
	default:
	}
}
