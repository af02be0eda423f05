//go:build !linux

package serial

import "fmt"

func openPort(path string, baud int) (*Port, error) {
	return nil, fmt.Errorf("serial port not supported on this platform")
}

func (p *Port) Waiting() (int, error) {
	return 0, fmt.Errorf("serial port not supported on this platform")
}

func (p *Port) FlushInput() error {
	return fmt.Errorf("serial port not supported on this platform")
}
