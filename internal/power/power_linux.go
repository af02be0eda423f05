//go:build linux

package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// openKey requests the BCM GPIO wired to the modem's PWRKEY as a digital
// output using the Linux GPIO character device (libgpiod).
func openKey(pin int) (*gpiodKey, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("power: invalid gpio pin %d", pin)
	}

	// On Pi, line names are commonly "GPIO4", etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("sim7600gps-pwrkey"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &gpiodKey{chip: chip, line: line}, nil
	}

	return nil, fmt.Errorf("power: gpio line %q not found (or busy)", lineName)
}

type gpiodKey struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (k *gpiodKey) pulse(hold time.Duration) error {
	if err := k.line.SetValue(1); err != nil {
		return err
	}
	time.Sleep(hold)
	return k.line.SetValue(0)
}

func (k *gpiodKey) close() {
	if k.line != nil {
		// Leave the key released.
		_ = k.line.SetValue(0)
		_ = k.line.Close()
		k.line = nil
	}
	if k.chip != nil {
		_ = k.chip.Close()
		k.chip = nil
	}
}

// PulseKey holds the modem's PWRKEY line for the given duration. The SIM7600
// hats gate PWRKEY through a transistor, so driving the GPIO high presses
// the key.
func PulseKey(pin int, hold time.Duration) error {
	key, err := openKey(pin)
	if err != nil {
		return err
	}
	defer key.close()
	return key.pulse(hold)
}
