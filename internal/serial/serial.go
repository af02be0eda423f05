package serial

import (
	"fmt"
	"os"
)

// Port is an exclusively-owned byte channel to the modem's AT interface.
//
// Reads follow a poll model: callers ask Waiting() how many bytes the kernel
// has buffered and then drain them with ReadAvailable(). There is no framing
// at this layer.
type Port struct {
	f  *os.File
	fd int
}

// Open opens the serial device at the given baud rate in raw mode.
func Open(path string, baud int) (*Port, error) {
	return openPort(path, baud)
}

func (p *Port) Write(b []byte) (int, error) {
	return p.f.Write(b)
}

// ReadAvailable drains and returns whatever the kernel has buffered right now.
// It never blocks waiting for more input.
func (p *Port) ReadAvailable() ([]byte, error) {
	n, err := p.Waiting()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	got, err := p.f.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:got], nil
}

func (p *Port) Close() error {
	return p.f.Close()
}

func (p *Port) Name() string {
	return p.f.Name()
}

// Candidates lists serial devices worth probing for the modem, in enumeration
// order. Kept intentionally tiny and predictable.
func Candidates() []string {
	paths := []string{}
	for i := 0; i < 10; i++ {
		paths = append(paths, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for i := 0; i < 10; i++ {
		paths = append(paths, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	out := []string{}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}
