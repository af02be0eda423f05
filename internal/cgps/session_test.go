package cgps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sim7600gps/internal/at"
)

// scriptedCommander replays one outcome per sent command and records the
// commands in order.
type scriptedCommander struct {
	t        *testing.T
	script   []at.Outcome
	commands []string
}

func (s *scriptedCommander) Send(ctx context.Context, cmd, marker string) at.Outcome {
	s.commands = append(s.commands, cmd)
	if len(s.script) == 0 {
		s.t.Fatalf("unexpected command %q", cmd)
	}
	out := s.script[0]
	s.script = s.script[1:]
	return out
}

func okOutcome(lines ...string) at.Outcome {
	return at.Outcome{
		Kind:       at.KindOK,
		Raw:        []byte(strings.Join(lines, "\r\n")),
		Transcript: lines,
	}
}

func infoOutcome(data string) at.Outcome {
	return okOutcome("AT+CGPSINFO", data, "OK")
}

// fastConfig keeps test sessions from sleeping.
func fastConfig() SessionConfig {
	return SessionConfig{Warmup: 1, PollInterval: 1}
}

func TestSession_FixOnFirstPoll(t *testing.T) {
	tr := &scriptedCommander{t: t, script: []at.Outcome{
		okOutcome("AT+CGPS=1,1", "OK"),
		infoOutcome("+CGPSINFO: 3110.123456,N,12130.654321,E,010124,235959.500000,12.3,0.5,0"),
	}}
	res := NewSession(tr, fastConfig()).Run(context.Background())
	if res.Outcome != Fixed {
		t.Fatalf("outcome=%s err=%v want fixed", res.Outcome, res.Err)
	}
	if res.Fix == nil || !approxEq(res.Fix.Latitude, 31.168724) {
		t.Fatalf("fix=%+v", res.Fix)
	}
	want := []string{at.CmdStartStandalone, at.CmdInfo}
	assertCommands(t, tr.commands, want)
}

func TestSession_NoResponseFailsAfterOneProbe(t *testing.T) {
	tr := &scriptedCommander{t: t, script: []at.Outcome{
		okOutcome("AT+CGPS=1,1", "OK"),
		{Kind: at.KindNoResponse},
		okOutcome("AT+CGPS=0", "OK"), // cleanup stop
	}}
	res := NewSession(tr, fastConfig()).Run(context.Background())
	if res.Outcome != Failed {
		t.Fatalf("outcome=%s want failed", res.Outcome)
	}
	if res.Err == nil {
		t.Fatalf("expected error")
	}
	assertCommands(t, tr.commands, []string{at.CmdStartStandalone, at.CmdInfo, at.CmdStop})
}

func TestSession_UnexpectedReplyStopsAndFails(t *testing.T) {
	tr := &scriptedCommander{t: t, script: []at.Outcome{
		okOutcome("AT+CGPS=1,1", "OK"),
		{Kind: at.KindUnexpected, Transcript: []string{"AT+CGPSINFO", "ERROR"}},
		okOutcome("AT+CGPS=0", "OK"),
	}}
	res := NewSession(tr, fastConfig()).Run(context.Background())
	if res.Outcome != Failed {
		t.Fatalf("outcome=%s want failed", res.Outcome)
	}
	assertCommands(t, tr.commands, []string{at.CmdStartStandalone, at.CmdInfo, at.CmdStop})
}

func TestSession_EmptyFixIsNotReadyAndStops(t *testing.T) {
	tr := &scriptedCommander{t: t, script: []at.Outcome{
		okOutcome("AT+CGPS=1,1", "OK"),
		infoOutcome("+CGPSINFO: ,,,,,,,,"),
		okOutcome("AT+CGPS=0", "OK"),
	}}
	res := NewSession(tr, fastConfig()).Run(context.Background())
	if res.Outcome != NotReady {
		t.Fatalf("outcome=%s want not_ready", res.Outcome)
	}
	if res.Err != nil || res.Fix != nil {
		t.Fatalf("res=%+v", res)
	}
	assertCommands(t, tr.commands, []string{at.CmdStartStandalone, at.CmdInfo, at.CmdStop})
}

func TestSession_EmptyPollsContinueUpToLimit(t *testing.T) {
	tr := &scriptedCommander{t: t, script: []at.Outcome{
		okOutcome("AT+CGPS=1,1", "OK"),
		infoOutcome("+CGPSINFO: ,,,,,,,,"),
		infoOutcome("+CGPSINFO: ,,,,,,,,"),
		infoOutcome("+CGPSINFO: 3110.123456,N,12130.654321,E,010124,235959.500000,12.3,0.5,0"),
	}}
	cfg := fastConfig()
	cfg.NotReadyPolls = 3
	res := NewSession(tr, cfg).Run(context.Background())
	if res.Outcome != Fixed {
		t.Fatalf("outcome=%s err=%v want fixed", res.Outcome, res.Err)
	}
	assertCommands(t, tr.commands, []string{at.CmdStartStandalone, at.CmdInfo, at.CmdInfo, at.CmdInfo})
}

func TestSession_StartRejectedFails(t *testing.T) {
	tr := &scriptedCommander{t: t, script: []at.Outcome{
		{Kind: at.KindUnexpected, Transcript: []string{"ERROR"}},
		okOutcome("AT+CGPS=0", "OK"),
	}}
	res := NewSession(tr, fastConfig()).Run(context.Background())
	if res.Outcome != Failed {
		t.Fatalf("outcome=%s want failed", res.Outcome)
	}
	assertCommands(t, tr.commands, []string{at.CmdStartStandalone, at.CmdStop})
}

func TestSession_ParseErrorFails(t *testing.T) {
	tr := &scriptedCommander{t: t, script: []at.Outcome{
		okOutcome("AT+CGPS=1,1", "OK"),
		infoOutcome("+CGPSINFO: garbage"),
		okOutcome("AT+CGPS=0", "OK"),
	}}
	res := NewSession(tr, fastConfig()).Run(context.Background())
	if res.Outcome != Failed {
		t.Fatalf("outcome=%s want failed", res.Outcome)
	}
	if !errors.Is(res.Err, ErrFieldCount) {
		t.Fatalf("err=%v want ErrFieldCount", res.Err)
	}
}

func TestSession_UnknownModeFails(t *testing.T) {
	tr := &scriptedCommander{t: t}
	cfg := fastConfig()
	cfg.Mode = "fastest"
	res := NewSession(tr, cfg).Run(context.Background())
	if res.Outcome != Failed || res.Err == nil {
		t.Fatalf("res=%+v want failed", res)
	}
	if len(tr.commands) != 0 {
		t.Fatalf("no commands should be sent, got %q", tr.commands)
	}
}

func assertCommands(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("commands=%q want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("commands[%d]=%q want %q", i, got[i], want[i])
		}
	}
}
