//go:build !linux

package power

import (
	"fmt"
	"time"
)

func PulseKey(pin int, hold time.Duration) error {
	return fmt.Errorf("power: gpio not supported on this platform")
}
