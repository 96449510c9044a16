package models

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressLen is the size of a one-wire ROM code.
const AddressLen = 8

var (
	errBadW1Name  = errors.New("invalid w1 slave name: expected ff-xxxxxxxxxxxx")
	errBadAddress = errors.New("invalid sensor address: expected 16 hex digits")
)

// SensorAddress is the 64-bit ROM code of a one-wire device in on-wire order:
// family code, 48-bit serial (LSB first), CRC8.
// The zero value means "no sensor".
type SensorAddress [AddressLen]byte

// IsZero reports whether the address is unset.
func (a SensorAddress) IsZero() bool {
	return a == SensorAddress{}
}

// String renders the address as 16 lowercase hex digits.
func (a SensorAddress) String() string {
	return hex.EncodeToString(a[:])
}

func (a SensorAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *SensorAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress parses the 16 hex digit form produced by String.
func ParseAddress(s string) (SensorAddress, error) {
	var a SensorAddress
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(b) != AddressLen {
		return a, errBadAddress
	}
	copy(a[:], b)
	return a, nil
}

// ParseW1Name converts a Linux w1 slave name such as "28-0316a2794fff" to a ROM code.
// The kernel prints the serial most-significant byte first; the ROM keeps it LSB first
// and ends with the Dallas CRC8 of the first seven bytes.
func ParseW1Name(name string) (SensorAddress, error) {
	var a SensorAddress

	family, serial, ok := strings.Cut(strings.TrimSpace(name), "-")
	if !ok || len(family) != 2 || len(serial) != 12 {
		return a, fmt.Errorf("%w: %q", errBadW1Name, name)
	}

	fb, err := hex.DecodeString(family)
	if err != nil {
		return a, fmt.Errorf("%w: %q", errBadW1Name, name)
	}
	sb, err := hex.DecodeString(serial)
	if err != nil {
		return a, fmt.Errorf("%w: %q", errBadW1Name, name)
	}

	a[0] = fb[0]
	for i := 0; i < len(sb); i++ {
		a[1+i] = sb[len(sb)-1-i]
	}
	a[7] = crc8(a[:7])
	return a, nil
}

// crc8 is the Dallas/Maxim one-wire CRC (polynomial x^8 + x^5 + x^4 + 1, reflected 0x8C).
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		for i := 0; i < 8; i++ {
			mix := (crc ^ b) & 0x01
			crc >>= 1
			if mix != 0 {
				crc ^= 0x8C
			}
			b >>= 1
		}
	}
	return crc
}
