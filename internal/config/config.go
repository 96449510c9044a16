package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (ACW_PORT, ACW_DB_PATH, ...).
const EnvPrefix = "ACW"

// MinInterCommandDelay is the shortest accepted ir.inter_command_delay. Indoor
// units drop frames that arrive closer together than this.
const MinInterCommandDelay = 200 * time.Millisecond

// IR transport drivers.
const (
	DriverLIRC = "lirc"
	DriverGPIO = "gpio"
	DriverMock = "mock"
)

var (
	errBadPeriod     = errors.New("watchdog.period must be > 0")
	errBadDelay      = errors.New("startup.startle_delay must be >= 0")
	errBadIRDelay    = fmt.Errorf("ir.inter_command_delay must be >= %s", MinInterCommandDelay)
	errBadDriver     = errors.New("ir.driver must be one of lirc, gpio, mock")
	errBadFramesFile = errors.New("ir.frames_file is required")
)

type Config struct {
	Port     string         `mapstructure:"port"`
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Watchdog WatchdogConfig `mapstructure:"watchdog"`
	Startup  StartupConfig  `mapstructure:"startup"`
	IR       IRConfig       `mapstructure:"ir"`
	Sensors  SensorsConfig  `mapstructure:"sensors"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WatchdogConfig struct {
	Period         time.Duration `mapstructure:"period"`
	LowThresholdC  float64       `mapstructure:"low_threshold_c"`
	HighThresholdC float64       `mapstructure:"high_threshold_c"`
}

type StartupConfig struct {
	StartleDelay time.Duration `mapstructure:"startle_delay"`
	Autostart    bool          `mapstructure:"autostart"`
}

type IRConfig struct {
	Driver            string        `mapstructure:"driver"`
	Device            string        `mapstructure:"device"`
	Pin               int           `mapstructure:"pin"`
	FramesFile        string        `mapstructure:"frames_file"`
	InterCommandDelay time.Duration `mapstructure:"inter_command_delay"`
}

type SensorsConfig struct {
	// Mock replaces the w1 bus with the Simulated list.
	Mock        bool               `mapstructure:"mock"`
	Calibration map[string]float64 `mapstructure:"calibration"`
	Simulated   []SimulatedSensor  `mapstructure:"simulated"`
}

type SimulatedSensor struct {
	Address      string  `mapstructure:"address"`
	TemperatureC float64 `mapstructure:"temperature_c"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type TwilioConfig struct {
	AccountSID string   `mapstructure:"account_sid"`
	AuthToken  string   `mapstructure:"auth_token"`
	FromPhone  string   `mapstructure:"from_phone"`
	ToPhones   []string `mapstructure:"to_phones"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "ac_watchdog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("watchdog.period", 15*time.Second)
	v.SetDefault("watchdog.low_threshold_c", 0.0)
	v.SetDefault("watchdog.high_threshold_c", 30.0)

	v.SetDefault("startup.startle_delay", 5*time.Second)
	v.SetDefault("startup.autostart", true)

	v.SetDefault("ir.driver", DriverMock)
	v.SetDefault("ir.device", "/dev/lirc0")
	v.SetDefault("ir.pin", 18)
	v.SetDefault("ir.frames_file", "configs/frames.yml")
	v.SetDefault("ir.inter_command_delay", 500*time.Millisecond)

	v.SetDefault("sensors.mock", false)
	v.SetDefault("sensors.calibration", map[string]float64{})
	v.SetDefault("sensors.simulated", []SimulatedSensor{})

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "ac_watchdog/alarms")
	v.SetDefault("mqtt.client_id", "ac-watchdog")
	v.SetDefault("mqtt.user", "")
	v.SetDefault("mqtt.password", "")

	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.from_phone", "")
	v.SetDefault("twilio.to_phones", []string{})
}

// Load reads the YAML file at path (or configs/config.yml when path is empty),
// applies ACW_* environment overrides and validates the result.
// A missing default file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the core cannot run without.
func (c *Config) Validate() error {
	if c.Watchdog.Period <= 0 {
		return errBadPeriod
	}
	if c.Startup.StartleDelay < 0 {
		return errBadDelay
	}
	if c.IR.InterCommandDelay < MinInterCommandDelay {
		return fmt.Errorf("%w, got %s", errBadIRDelay, c.IR.InterCommandDelay)
	}
	switch c.IR.Driver {
	case DriverLIRC, DriverGPIO, DriverMock:
	default:
		return fmt.Errorf("%w, got %q", errBadDriver, c.IR.Driver)
	}
	if strings.TrimSpace(c.IR.FramesFile) == "" {
		return errBadFramesFile
	}
	return nil
}
