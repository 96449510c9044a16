package ir

import "encoding/binary"

// LIRC ioctl requests and modes (linux/lirc.h).
const (
	lircSetSendMode    = 0x40046911
	lircSetSendCarrier = 0x40046913
	lircModePulse      = 0x2

	bytesPerPulse = 4
)

// LIRCTransmitter writes frames to a LIRC character device such as /dev/lirc0.
type LIRCTransmitter struct {
	device string
}

func NewLIRCTransmitter(device string) *LIRCTransmitter {
	return &LIRCTransmitter{device: device}
}

// encodePulses packs timings as the little-endian uint32 stream LIRC expects.
func encodePulses(pulses []uint32) []byte {
	buf := make([]byte, len(pulses)*bytesPerPulse)
	for i, p := range pulses {
		binary.LittleEndian.PutUint32(buf[i*bytesPerPulse:], p)
	}
	return buf
}
