// Package cgps drives the SIM7600's GPS engine through its AT+CGPS command
// family and decodes the +CGPSINFO reply grammar.
package cgps

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sim7600gps/internal/at"
)

// Mode selects the GPS acquisition mode passed to AT+CGPS.
type Mode string

const (
	ModeStandalone Mode = "standalone"
	ModeUEBased    Mode = "ue_based"
	ModeUEAssisted Mode = "ue_assisted"
)

func (m Mode) command() (string, error) {
	switch m {
	case ModeStandalone, "":
		return at.CmdStartStandalone, nil
	case ModeUEBased:
		return at.CmdStartUEBased, nil
	case ModeUEAssisted:
		return at.CmdStartUEAssisted, nil
	default:
		return "", fmt.Errorf("unknown gps mode %q", string(m))
	}
}

// Outcome is the terminal state of one session. There are exactly three.
type Outcome int

const (
	// Fixed: a complete fix was parsed.
	Fixed Outcome = iota
	// NotReady: the modem answered but reported all-empty fields for every
	// allowed poll. Inconclusive, not an error.
	NotReady
	// Failed: transport failure, unexpected reply, or parse error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Fixed:
		return "fixed"
	case NotReady:
		return "not_ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a session terminates with. Fix is non-nil exactly when
// Outcome is Fixed; Err is set when Outcome is Failed.
type Result struct {
	Outcome Outcome
	Fix     *Fix
	Err     error
}

// Commander issues one AT exchange. *at.Transport satisfies it; tests script it.
type Commander interface {
	Send(ctx context.Context, cmd, marker string) at.Outcome
}

// SessionConfig tunes the polling cadence. Zero values take the modem-safe
// defaults below.
type SessionConfig struct {
	Mode Mode
	// Warmup is the delay between starting the engine and the first poll.
	Warmup time.Duration
	// PollInterval separates consecutive +CGPSINFO queries.
	PollInterval time.Duration
	// NotReadyPolls is how many consecutive all-empty replies end the
	// session as NotReady. The stock modem behavior is 1.
	NotReadyPolls int
}

const (
	defaultWarmup       = 2 * time.Second
	defaultPollInterval = 1500 * time.Millisecond
)

// Session runs one GPS acquisition to a terminal state. It exclusively owns
// its transport's channel for the duration; there is no internal retry, the
// caller decides whether to run another session.
type Session struct {
	tr  Commander
	cfg SessionConfig
	log zerolog.Logger
}

func NewSession(tr Commander, cfg SessionConfig) *Session {
	if cfg.Warmup <= 0 {
		cfg.Warmup = defaultWarmup
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.NotReadyPolls <= 0 {
		cfg.NotReadyPolls = 1
	}
	return &Session{
		tr:  tr,
		cfg: cfg,
		log: log.With().Str("module", "cgps").Logger(),
	}
}

// Run starts the engine, polls until a fix, inconclusive answer, or failure,
// and stops the engine on every non-Fixed terminal state so the modem is not
// left acquiring. Without a deadline on ctx it runs until terminal.
func (s *Session) Run(ctx context.Context) Result {
	startCmd, err := s.cfg.Mode.command()
	if err != nil {
		return Result{Outcome: Failed, Err: err}
	}

	s.log.Info().Str("mode", string(s.cfg.Mode)).Msg("starting gps session")
	if out := s.tr.Send(ctx, startCmd, at.OK); out.Kind != at.KindOK {
		return s.fail(ctx, fmt.Errorf("gps session start rejected: %s", describe(out)))
	}

	if err := wait(ctx, s.cfg.Warmup); err != nil {
		return s.fail(ctx, err)
	}

	empty := 0
	for {
		out := s.tr.Send(ctx, at.CmdInfo, InfoPrefix)
		if out.Kind != at.KindOK {
			return s.fail(ctx, fmt.Errorf("gps info query failed: %s", describe(out)))
		}

		fix, perr := ParseInfo(out.Transcript)
		if perr != nil {
			return s.fail(ctx, perr)
		}
		if fix != nil {
			s.log.Info().
				Float64("lat", fix.Latitude).
				Float64("lon", fix.Longitude).
				Time("fix_time", fix.Time).
				Msg("gps fix acquired")
			return Result{Outcome: Fixed, Fix: fix}
		}

		empty++
		s.log.Debug().Int("empty_polls", empty).Msg("no fix yet")
		if empty >= s.cfg.NotReadyPolls {
			s.stop(ctx)
			return Result{Outcome: NotReady}
		}
		if err := wait(ctx, s.cfg.PollInterval); err != nil {
			return s.fail(ctx, err)
		}
	}
}

// fail stops the engine and reports the error. Failures are never swallowed.
func (s *Session) fail(ctx context.Context, err error) Result {
	s.log.Error().Err(err).Msg("gps session failed")
	s.stop(ctx)
	return Result{Outcome: Failed, Err: err}
}

// stop is best-effort cleanup: a modem that just stopped answering will not
// acknowledge AT+CGPS=0 either.
func (s *Session) stop(ctx context.Context) {
	// Use a background context so cancellation cannot skip cleanup.
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if out := s.tr.Send(ctx, at.CmdStop, at.OK); out.Kind != at.KindOK {
		s.log.Warn().Msg("gps stop command not acknowledged")
	}
}

func describe(out at.Outcome) string {
	switch out.Kind {
	case at.KindNoResponse:
		if out.Err != nil {
			return fmt.Sprintf("no response (%v)", out.Err)
		}
		return "no response"
	case at.KindUnexpected:
		return fmt.Sprintf("unexpected reply %q", out.Transcript)
	default:
		return "ok"
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
