package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sim7600gps/internal/at"
	"sim7600gps/internal/cgps"
	"sim7600gps/internal/config"
	"sim7600gps/internal/power"
	"sim7600gps/internal/publish"
	"sim7600gps/internal/serial"
)

func main() {
	var (
		configPath string
		device     string
		mode       string
		timeout    time.Duration
		asJSON     bool
		debug      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config (optional)")
	flag.StringVar(&device, "device", "", "Serial device to prefer (overrides config)")
	flag.StringVar(&mode, "mode", "", "GPS mode: standalone, ue_based, ue_assisted (overrides config)")
	flag.DurationVar(&timeout, "timeout", 0, "Abort the session after this long (0 = run to a terminal state)")
	flag.BoolVar(&asJSON, "json", false, "Print the fix as JSON")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config load failed")
		}
	}
	if device != "" {
		cfg.Serial.Device = device
	}
	if mode != "" {
		cfg.GPS.Mode = mode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if cfg.Power.Enable {
		log.Info().Int("pin", cfg.Power.Pin).Msg("pulsing modem power key")
		if err := power.PulseKey(cfg.Power.Pin, cfg.Power.Pulse); err != nil {
			log.Fatal().Err(err).Msg("power key pulse failed")
		}
		select {
		case <-time.After(cfg.Power.BootWait):
		case <-ctx.Done():
			log.Fatal().Msg("interrupted while waiting for modem boot")
		}
	}

	tcfg := at.Config{Settle: cfg.Serial.Settle, Grace: cfg.Serial.Grace}

	path := cgps.Discover(ctx, cfg.Serial.Device, serial.Candidates(), openProbe(cfg.Serial.Baud), tcfg)
	if path == "" {
		log.Fatal().Msg("no device answered the gps status probe")
	}
	log.Info().Str("device", path).Int("baud", cfg.Serial.Baud).Msg("gps modem found")

	port, err := serial.Open(path, cfg.Serial.Baud)
	if err != nil {
		log.Fatal().Err(err).Str("device", path).Msg("serial open failed")
	}
	defer port.Close()
	if err := port.FlushInput(); err != nil {
		log.Fatal().Err(err).Msg("input flush failed")
	}

	sess := cgps.NewSession(at.NewTransport(port, tcfg), cgps.SessionConfig{
		Mode:          cgps.Mode(cfg.GPS.Mode),
		Warmup:        cfg.GPS.Warmup,
		PollInterval:  cfg.GPS.PollInterval,
		NotReadyPolls: cfg.GPS.NotReadyPolls,
	})
	res := sess.Run(ctx)

	switch res.Outcome {
	case cgps.Fixed:
		printFix(res.Fix, asJSON)
		if cfg.MQTT.Enable {
			publishFix(cfg, res.Fix)
		}
	case cgps.NotReady:
		fmt.Println("no fix: gps not ready")
		os.Exit(1)
	case cgps.Failed:
		fmt.Printf("no fix: %v\n", res.Err)
		os.Exit(1)
	}
}

func openProbe(baud int) cgps.OpenFunc {
	return func(path string) (cgps.ProbePort, error) {
		p, err := serial.Open(path, baud)
		if err != nil {
			return nil, err
		}
		if err := p.FlushInput(); err != nil {
			_ = p.Close()
			return nil, err
		}
		return p, nil
	}
}

func printFix(fix *cgps.Fix, asJSON bool) {
	if asJSON {
		b, err := json.Marshal(fix)
		if err != nil {
			log.Fatal().Err(err).Msg("fix marshal failed")
		}
		fmt.Println(string(b))
		return
	}
	fmt.Printf("lat=%.6f lon=%.6f time=%s alt=%.1fm speed=%.1f\n",
		fix.Latitude, fix.Longitude, fix.Time.Format(time.RFC3339Nano), fix.Altitude, fix.Speed)
}

func publishFix(cfg config.Config, fix *cgps.Fix) {
	pub, err := publish.NewMQTT(cfg.MQTT)
	if err != nil {
		log.Error().Err(err).Msg("mqtt connect failed, fix not published")
		return
	}
	defer pub.Close()
	if err := pub.PublishFix(fix); err != nil {
		log.Error().Err(err).Msg("mqtt publish failed")
	}
}
