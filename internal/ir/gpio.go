package ir

import (
	"context"
	"fmt"
	"time"

	"ac_watchdog/internal/models"

	"github.com/stianeikeland/go-rpio/v4"
)

// Carrier is generated by hardware PWM with a 1/3 duty cycle.
const (
	dutyOn           = 1
	dutyCycle        = 3
	defaultCarrierHz = 38000
)

// GPIOTransmitter modulates an IR LED on a hardware-PWM capable BCM pin.
// Marks enable the carrier, spaces silence it; timing is busy-waited.
type GPIOTransmitter struct {
	pin int
}

func NewGPIOTransmitter(pin int) *GPIOTransmitter {
	return &GPIOTransmitter{pin: pin}
}

// pwmClock returns the PWM clock for a carrier so that one cycle spans dutyCycle ticks.
func pwmClock(carrierHz int) int {
	if carrierHz <= 0 {
		carrierHz = defaultCarrierHz
	}
	return carrierHz * dutyCycle
}

func (t *GPIOTransmitter) Transmit(ctx context.Context, frame models.CommandFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("open gpio: %w", err)
	}
	defer rpio.Close()

	pin := rpio.Pin(t.pin)
	pin.Mode(rpio.Pwm)
	pin.Freq(pwmClock(frame.CarrierHz))
	pin.DutyCycle(0, dutyCycle)
	rpio.StartPwm()
	defer func() {
		pin.DutyCycle(0, dutyCycle)
		rpio.StopPwm()
	}()

	deadline := time.Now()
	for i, p := range frame.Pulses {
		if i%2 == 0 {
			pin.DutyCycle(dutyOn, dutyCycle)
		} else {
			pin.DutyCycle(0, dutyCycle)
		}
		deadline = deadline.Add(time.Duration(p) * time.Microsecond)
		for time.Now().Before(deadline) {
		}
	}
	return nil
}
