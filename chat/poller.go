// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/chubbcord/chubbcord/discord"
	"github.com/chubbcord/chubbcord/lib/clock"
)

// Poller timing defaults. The grain is how often the loop wakes to
// check for a stop or refresh signal between fetches, keeping Stop
// responsive without polling the API at that rate.
const (
	DefaultPollInterval = 3 * time.Second
	DefaultPollGrain    = 100 * time.Millisecond
	DefaultMessageLimit = 35
)

// State is the poller lifecycle state.
type State int

const (
	// StateIdle means no poll goroutine is running.
	StateIdle State = iota
	// StateRunning means the poll goroutine is active.
	StateRunning
	// StateStopping means Stop has signaled the goroutine and is
	// waiting for it to exit.
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PollerConfig holds configuration for creating a Poller.
type PollerConfig struct {
	// Session fetches messages. Required.
	Session discord.Session
	// Formatter renders fetched messages. Required.
	Formatter *Formatter
	// Output receives rendered lines. Required.
	Output io.Writer
	// Clock drives the loop timing. If nil, the real clock is used.
	Clock clock.Clock
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Interval between fetches. Default: DefaultPollInterval.
	Interval time.Duration
	// Grain is the stop-check wakeup period. Default: DefaultPollGrain.
	Grain time.Duration
	// Limit is the fetch window size. Default: DefaultMessageLimit.
	Limit int
}

// Poller owns the background fetch-and-render loop for the active
// channel. At most one poll goroutine runs at a time: Start errors
// unless the poller is idle, and Stop joins the goroutine before
// returning, so a stop-then-start channel switch can never interleave
// two loops.
//
// A fetch error is fatal to the loop: it is delivered on the Fatal
// channel and the goroutine exits. There is no reconnect.
type Poller struct {
	session   discord.Session
	formatter *Formatter
	output    io.Writer
	clock     clock.Clock
	logger    *slog.Logger
	interval  time.Duration
	grain     time.Duration
	limit     int

	fatal chan error

	mu        sync.Mutex
	state     State
	channelID string
	stop      chan struct{}
	refresh   chan struct{}
	done      chan struct{}
}

// NewPoller creates an idle Poller.
func NewPoller(config PollerConfig) *Poller {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := config.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	grain := config.Grain
	if grain <= 0 {
		grain = DefaultPollGrain
	}
	limit := config.Limit
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return &Poller{
		session:   config.Session,
		formatter: config.Formatter,
		output:    config.Output,
		clock:     clk,
		logger:    logger,
		interval:  interval,
		grain:     grain,
		limit:     limit,
		fatal:     make(chan error, 1),
	}
}

// Start launches the poll goroutine for channelID. It errors unless
// the poller is idle.
func (p *Poller) Start(channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return fmt.Errorf("chat: poller is %s, cannot start", p.state)
	}

	p.state = StateRunning
	p.channelID = channelID
	p.stop = make(chan struct{})
	p.refresh = make(chan struct{}, 1)
	p.done = make(chan struct{})

	p.logger.Debug("poller starting", "channel_id", channelID)
	go p.run(channelID, p.stop, p.refresh, p.done)
	return nil
}

// Stop signals the poll goroutine and waits for it to exit. After
// Stop returns, no further rendering or snapshot mutation happens.
// No-op when the poller is not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return
	}
	p.state = StateStopping
	stop, done := p.stop, p.done
	p.mu.Unlock()

	close(stop)
	<-done

	p.mu.Lock()
	p.state = StateIdle
	p.channelID = ""
	p.mu.Unlock()
	p.logger.Debug("poller stopped")
}

// Refresh makes the loop discard its snapshot and perform a full
// fetch-and-render on its next wakeup. Non-blocking; collapses with a
// pending refresh. No-op when the poller is not running.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateRunning {
		return
	}
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Fatal returns the channel on which a fatal fetch error is delivered.
// At most one error is sent; the loop is dead once it fires.
func (p *Poller) Fatal() <-chan error {
	return p.fatal
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Running reports whether a poll goroutine is active.
func (p *Poller) Running() bool {
	return p.State() == StateRunning
}

// ChannelID returns the channel being polled, or "" when idle.
func (p *Poller) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

// run is the poll loop. The snapshot of rendered messages lives
// entirely on this goroutine's stack; nothing else touches it.
func (p *Poller) run(channelID string, stop <-chan struct{}, refresh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	snapshot, err := p.renderCycle(channelID, nil)
	if err != nil {
		p.reportFatal(err)
		return
	}

	var elapsed time.Duration
	for {
		select {
		case <-stop:
			return
		case <-refresh:
			snapshot = nil
			elapsed = p.interval
		case <-p.clock.After(p.grain):
			elapsed += p.grain
		}

		if elapsed < p.interval {
			continue
		}
		elapsed = 0

		snapshot, err = p.renderCycle(channelID, snapshot)
		if err != nil {
			p.reportFatal(err)
			return
		}
	}
}

// renderCycle fetches the latest window, renders everything not in
// snapshot in oldest-first order, and returns the new snapshot.
func (p *Poller) renderCycle(channelID string, snapshot []discord.Message) ([]discord.Message, error) {
	ctx := context.Background()

	fetched, err := p.session.Messages(ctx, channelID, p.limit)
	if err != nil {
		return nil, err
	}

	// The wire order is newest first; the terminal reads oldest first.
	ordered := make([]discord.Message, len(fetched))
	for i, message := range fetched {
		ordered[len(fetched)-1-i] = message
	}

	for _, message := range Delta(ordered, snapshot) {
		fmt.Fprintln(p.output, p.formatter.Line(ctx, message))
	}
	return ordered, nil
}

// reportFatal delivers the loop-killing error and returns the poller
// to idle so a later Start can succeed.
func (p *Poller) reportFatal(err error) {
	p.logger.Error("poller fetch failed", "error", err)
	select {
	case p.fatal <- err:
	default:
	}

	p.mu.Lock()
	if p.state == StateRunning {
		p.state = StateIdle
		p.channelID = ""
	}
	p.mu.Unlock()
}
