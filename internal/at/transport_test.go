package at

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// fakeChannel replays a canned reply once the command has been written.
type fakeChannel struct {
	reply    []byte
	writes   []string
	writeErr error
}

func (f *fakeChannel) Write(b []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, string(b))
	return len(b), nil
}

func (f *fakeChannel) Waiting() (int, error) {
	return len(f.reply), nil
}

func (f *fakeChannel) ReadAvailable() ([]byte, error) {
	r := f.reply
	f.reply = nil
	return r, nil
}

func TestSend_AppendsCRLF(t *testing.T) {
	ch := &fakeChannel{reply: []byte("AT+CGPS?\r\n+CGPS: 1,1\r\n\r\nOK\r\n")}
	tr := NewTransport(ch, Config{})
	out := tr.Send(context.Background(), CmdStatus, OK)
	if out.Kind != KindOK {
		t.Fatalf("kind=%v want KindOK", out.Kind)
	}
	if len(ch.writes) != 1 || ch.writes[0] != "AT+CGPS?\r\n" {
		t.Fatalf("writes=%q", ch.writes)
	}
}

func TestSend_TranscriptTrimmedAndNonEmpty(t *testing.T) {
	ch := &fakeChannel{reply: []byte("AT+CGPSINFO\r\r\n+CGPSINFO: ,,,,,,,,\r\n\r\nOK\r\n")}
	tr := NewTransport(ch, Config{})
	out := tr.Send(context.Background(), CmdInfo, "+CGPSINFO: ")
	if out.Kind != KindOK {
		t.Fatalf("kind=%v want KindOK", out.Kind)
	}
	want := []string{"AT+CGPSINFO", "+CGPSINFO: ,,,,,,,,", "OK"}
	if len(out.Transcript) != len(want) {
		t.Fatalf("transcript=%q want %q", out.Transcript, want)
	}
	for i := range want {
		if out.Transcript[i] != want[i] {
			t.Fatalf("transcript[%d]=%q want %q", i, out.Transcript[i], want[i])
		}
	}
}

func TestSend_NoBytesMeansNoResponse(t *testing.T) {
	ch := &fakeChannel{}
	tr := NewTransport(ch, Config{})
	out := tr.Send(context.Background(), CmdStatus, OK)
	if out.Kind != KindNoResponse {
		t.Fatalf("kind=%v want KindNoResponse", out.Kind)
	}
	if out.Transcript != nil {
		t.Fatalf("expected empty transcript, got %q", out.Transcript)
	}
}

func TestSend_MissingMarkerIsUnexpected(t *testing.T) {
	ch := &fakeChannel{reply: []byte("AT+CGPSINFO\r\n\r\nERROR\r\n")}
	tr := NewTransport(ch, Config{})
	out := tr.Send(context.Background(), CmdInfo, "+CGPSINFO: ")
	if out.Kind != KindUnexpected {
		t.Fatalf("kind=%v want KindUnexpected", out.Kind)
	}
	// The transcript still carries the reply for diagnostics.
	if len(out.Transcript) == 0 || out.Transcript[len(out.Transcript)-1] != "ERROR" {
		t.Fatalf("transcript=%q", out.Transcript)
	}
}

func TestSend_WriteErrorIsNoResponse(t *testing.T) {
	ch := &fakeChannel{writeErr: fmt.Errorf("port gone")}
	tr := NewTransport(ch, Config{})
	out := tr.Send(context.Background(), CmdStatus, OK)
	if out.Kind != KindNoResponse {
		t.Fatalf("kind=%v want KindNoResponse", out.Kind)
	}
	if out.Err == nil || !strings.Contains(out.Err.Error(), "port gone") {
		t.Fatalf("err=%v", out.Err)
	}
}

func TestSend_CancelledContextAbortsSettle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := &fakeChannel{reply: []byte("OK\r\n")}
	tr := NewTransport(ch, Config{Settle: 1}) // any non-zero wait
	out := tr.Send(ctx, CmdStatus, OK)
	if out.Kind != KindNoResponse {
		t.Fatalf("kind=%v want KindNoResponse", out.Kind)
	}
	if out.Err == nil {
		t.Fatalf("expected ctx error")
	}
}
