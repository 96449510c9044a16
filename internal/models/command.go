package models

import "strings"

// CommandName identifies one predefined IR frame.
type CommandName string

const (
	PowerOn  CommandName = "PowerOn"
	PowerOff CommandName = "PowerOff"
	Temp16   CommandName = "Temp16"
	Temp18   CommandName = "Temp18"
	Temp20   CommandName = "Temp20"
	Temp24   CommandName = "Temp24"
	Temp28   CommandName = "Temp28"
	Temp30   CommandName = "Temp30"
	FanAuto  CommandName = "FanAuto"
	FanMin   CommandName = "FanMin"
	FanMid   CommandName = "FanMid"
	FanMax   CommandName = "FanMax"
	ModeCool CommandName = "ModeCool"
	ModeVent CommandName = "ModeVent"
	Display  CommandName = "Display"

	// Autostart is a sequence, not a frame.
	Autostart CommandName = "Autostart"
)

// FrameNames lists every name that must have a frame, in catalog order.
var FrameNames = []CommandName{
	PowerOn, PowerOff,
	Temp16, Temp18, Temp20, Temp24, Temp28, Temp30,
	FanAuto, FanMin, FanMid, FanMax,
	ModeCool, ModeVent,
	Display,
}

// AutostartSequence is sent by Autostart, in order.
var AutostartSequence = []CommandName{PowerOn, ModeCool, FanMax, Temp16}

// ParseCommandName matches s case-insensitively against the fixed names.
func ParseCommandName(s string) (CommandName, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(Autostart)) {
		return Autostart, true
	}
	for _, n := range FrameNames {
		if strings.EqualFold(s, string(n)) {
			return n, true
		}
	}
	return "", false
}

// CommandFrame is a raw mark/space timing sequence in microseconds, starting
// and ending with a mark.
type CommandFrame struct {
	Name      CommandName `json:"name"`
	CarrierHz int         `json:"carrier_hz"`
	Pulses    []uint32    `json:"pulses"`
}
