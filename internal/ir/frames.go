package ir

import (
	"errors"
	"fmt"

	"ac_watchdog/internal/models"

	"github.com/spf13/viper"
)

var (
	errNoPulses      = errors.New("frame has no pulses")
	errEvenPulses    = errors.New("frame must start and end with a mark (odd pulse count)")
	errZeroPulse     = errors.New("frame contains a zero-length pulse")
	errDuplicate     = errors.New("duplicate frame")
	errMissingFrames = errors.New("frame file is missing commands")
)

type frameFile struct {
	CarrierHz int          `mapstructure:"carrier_hz"`
	Frames    []frameEntry `mapstructure:"frames"`
}

type frameEntry struct {
	Name      string   `mapstructure:"name"`
	CarrierHz int      `mapstructure:"carrier_hz"`
	Pulses    []uint32 `mapstructure:"pulses"`
}

// LoadFrames reads the frame file. Every fixed command must be present exactly
// once; names outside the fixed set are rejected.
func LoadFrames(path string) (map[models.CommandName]models.CommandFrame, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read frames %q: %w", path, err)
	}

	var ff frameFile
	if err := v.Unmarshal(&ff); err != nil {
		return nil, fmt.Errorf("decode frames %q: %w", path, err)
	}
	return buildFrames(ff)
}

func buildFrames(ff frameFile) (map[models.CommandName]models.CommandFrame, error) {
	frames := make(map[models.CommandName]models.CommandFrame, len(models.FrameNames))
	for _, entry := range ff.Frames {
		name, ok := models.ParseCommandName(entry.Name)
		if !ok || name == models.Autostart {
			return nil, fmt.Errorf("frame %q: %w", entry.Name, ErrUnknownCommand)
		}
		if _, dup := frames[name]; dup {
			return nil, fmt.Errorf("frame %q: %w", entry.Name, errDuplicate)
		}
		if err := validatePulses(entry.Pulses); err != nil {
			return nil, fmt.Errorf("frame %q: %w", entry.Name, err)
		}

		carrier := entry.CarrierHz
		if carrier == 0 {
			carrier = ff.CarrierHz
		}
		frames[name] = models.CommandFrame{
			Name:      name,
			CarrierHz: carrier,
			Pulses:    append([]uint32(nil), entry.Pulses...),
		}
	}

	var missing []models.CommandName
	for _, n := range models.FrameNames {
		if _, ok := frames[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", errMissingFrames, missing)
	}
	return frames, nil
}

func validatePulses(p []uint32) error {
	if len(p) == 0 {
		return errNoPulses
	}
	if len(p)%2 == 0 {
		return errEvenPulses
	}
	for _, d := range p {
		if d == 0 {
			return errZeroPulse
		}
	}
	return nil
}
