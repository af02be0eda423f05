package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial SerialConfig `yaml:"serial"`
	GPS    GPSConfig    `yaml:"gps"`
	Power  PowerConfig  `yaml:"power"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
}

type SerialConfig struct {
	// Device may be empty to probe the candidate ttys instead.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	// Settle and Grace are the transport's quiescence windows. The reply has
	// no framing; end-of-reply is inferred from the line going quiet.
	Settle time.Duration `yaml:"settle"`
	Grace  time.Duration `yaml:"grace"`
}

type GPSConfig struct {
	// Mode: standalone, ue_based, or ue_assisted.
	Mode          string        `yaml:"mode"`
	Warmup        time.Duration `yaml:"warmup"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	NotReadyPolls int           `yaml:"not_ready_polls"`
}

// PowerConfig drives the modem's PWRKEY line through the GPIO character
// device, for hats where the modem stays off until pulsed.
type PowerConfig struct {
	Enable bool `yaml:"enable"`
	// Pin is the BCM GPIO number wired to PWRKEY.
	Pin   int           `yaml:"pin"`
	Pulse time.Duration `yaml:"pulse"`
	// BootWait is how long to give the modem after the pulse before talking
	// to it.
	BootWait time.Duration `yaml:"boot_wait"`
}

type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

// Default returns the configuration used when no file is given: probe for the
// modem, standalone GPS, stock SIM7600 timing.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	applyDefaults(&cfg)

	switch cfg.GPS.Mode {
	case "standalone", "ue_based", "ue_assisted":
	default:
		return Config{}, fmt.Errorf("gps.mode must be standalone, ue_based, or ue_assisted")
	}
	if cfg.Power.Enable && cfg.Power.Pin <= 0 {
		return Config{}, fmt.Errorf("power.pin is required when power.enable is true")
	}
	if cfg.MQTT.Enable && cfg.MQTT.Broker == "" {
		return Config{}, fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Serial.Settle <= 0 {
		cfg.Serial.Settle = 1 * time.Second
	}
	if cfg.Serial.Grace <= 0 {
		cfg.Serial.Grace = 10 * time.Millisecond
	}
	if cfg.GPS.Mode == "" {
		cfg.GPS.Mode = "standalone"
	}
	if cfg.GPS.Warmup <= 0 {
		cfg.GPS.Warmup = 2 * time.Second
	}
	if cfg.GPS.PollInterval <= 0 {
		cfg.GPS.PollInterval = 1500 * time.Millisecond
	}
	if cfg.GPS.NotReadyPolls <= 0 {
		cfg.GPS.NotReadyPolls = 1
	}
	if cfg.Power.Pulse <= 0 {
		cfg.Power.Pulse = 2 * time.Second
	}
	if cfg.Power.BootWait <= 0 {
		cfg.Power.BootWait = 10 * time.Second
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "sim7600gps"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "sim7600/fix"
	}
}
