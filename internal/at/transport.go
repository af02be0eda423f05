// Package at implements a best-effort request/response transport for modem AT
// commands over a byte channel with no framing layer.
//
// The modem marks neither length nor end of a reply, so Send infers "response
// complete" from quiescence: it writes the command, waits a settle window,
// and reads whatever accumulated. The only correctness gate is a per-command
// marker substring; duplicate or partial reads are possible with a slow modem
// and are accepted by design of the protocol, not of this package.
package at

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Channel is the byte-oriented duplex link to the modem. *serial.Port
// satisfies it; tests use scripted fakes.
type Channel interface {
	Write(b []byte) (int, error)
	Waiting() (int, error)
	ReadAvailable() ([]byte, error)
}

type Kind int

const (
	// KindOK: a reply arrived and contained the expected marker.
	KindOK Kind = iota
	// KindNoResponse: nothing arrived within the settle window, or the
	// channel itself failed. Wrong device, modem asleep, or unpowered.
	KindNoResponse
	// KindUnexpected: a reply arrived but the marker was absent.
	KindUnexpected
)

// Outcome is the classified result of one command exchange.
type Outcome struct {
	Kind       Kind
	Raw        []byte
	Transcript []string
	Err        error
}

// Config holds the quiescence windows. Both are explicit so tests can run
// with zero-length windows against a scripted channel.
type Config struct {
	// Settle is how long to wait after writing before checking for a reply.
	Settle time.Duration
	// Grace is a short extra wait to catch bytes still arriving once the
	// first ones have shown up.
	Grace time.Duration
}

type Transport struct {
	ch  Channel
	cfg Config
	log zerolog.Logger
}

func NewTransport(ch Channel, cfg Config) *Transport {
	return &Transport{
		ch:  ch,
		cfg: cfg,
		log: log.With().Str("module", "at").Logger(),
	}
}

// Send writes cmd (CRLF-terminated) and collects the reply that accumulates
// within the settle window, classifying it against the marker substring.
// Cancelling ctx aborts the waits and yields KindNoResponse with ctx's error.
func (t *Transport) Send(ctx context.Context, cmd, marker string) Outcome {
	if _, err := t.ch.Write([]byte(cmd + "\r\n")); err != nil {
		t.log.Error().Err(err).Str("cmd", cmd).Msg("write failed")
		return Outcome{Kind: KindNoResponse, Err: err}
	}

	if err := sleep(ctx, t.cfg.Settle); err != nil {
		return Outcome{Kind: KindNoResponse, Err: err}
	}

	n, err := t.ch.Waiting()
	if err != nil {
		t.log.Error().Err(err).Str("cmd", cmd).Msg("readiness query failed")
		return Outcome{Kind: KindNoResponse, Err: err}
	}
	if n == 0 {
		t.log.Debug().Str("cmd", cmd).Msg("no response within settle window")
		return Outcome{Kind: KindNoResponse}
	}

	if err := sleep(ctx, t.cfg.Grace); err != nil {
		return Outcome{Kind: KindNoResponse, Err: err}
	}

	raw, err := t.ch.ReadAvailable()
	if err != nil {
		t.log.Error().Err(err).Str("cmd", cmd).Msg("read failed")
		return Outcome{Kind: KindNoResponse, Err: err}
	}
	if len(raw) == 0 {
		return Outcome{Kind: KindNoResponse}
	}

	out := Outcome{Raw: raw, Transcript: splitLines(raw)}
	if !strings.Contains(string(raw), marker) {
		t.log.Debug().Str("cmd", cmd).Str("reply", string(raw)).Msg("marker missing in reply")
		out.Kind = KindUnexpected
		return out
	}
	out.Kind = KindOK
	return out
}

// splitLines breaks a raw reply into trimmed, non-empty lines. The modem
// terminates lines with CRLF and pads replies with blank lines.
func splitLines(raw []byte) []string {
	var lines []string
	for _, l := range strings.Split(string(raw), "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func sleep(ctx context.Context, d time.Duration) error {
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
