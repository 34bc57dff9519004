package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Calibration holds per channel bounds measured against a black (Mins) and a
// white (Maxs) reference surface.
type Calibration struct {
	Mins [NumChannels]uint16 `json:"mins"`
	Maxs [NumChannels]uint16 `json:"maxs"`
}

// DefaultCalibration is assigned to every new sensor until a calibration is
// run or loaded.
func DefaultCalibration() Calibration {
	return Calibration{
		Maxs: [NumChannels]uint16{1, 1, 1, 1, 1},
	}
}

// Ready is true when every channel has mins <= maxs.
func (cal *Calibration) Ready() bool {
	for _, ch := range Channels {
		if cal.Mins[ch] > cal.Maxs[ch] {
			return false
		}
	}
	return true
}

// Scale normalises a raw reading of ch to 0-1.
func (cal *Calibration) Scale(ch Channel, raw uint16) float64 {
	return Scale(float64(raw), float64(cal.Mins[ch]), float64(cal.Maxs[ch]))
}

// Map maps a raw reading of ch onto [outMin, outMax].
func (cal *Calibration) Map(ch Channel, raw uint16, outMin, outMax float64) float64 {
	return Map(float64(raw), float64(cal.Mins[ch]), float64(cal.Maxs[ch]), outMin, outMax)
}

// Encode produces the stored text form, {"mins":[...],"maxs":[...]}.
func (cal Calibration) Encode() (string, error) {
	b, err := json.Marshal(cal)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeCalibration parses the stored text form. Arrays must hold exactly one
// whole number in 0-65535 per channel.
func DecodeCalibration(text string) (cal Calibration, err error) {
	stored := struct {
		Mins []float64 `json:"mins"`
		Maxs []float64 `json:"maxs"`
	}{}
	dec := json.NewDecoder(strings.NewReader(text))
	if err = dec.Decode(&stored); err != nil {
		return cal, err
	}
	if dec.More() {
		return cal, fmt.Errorf("trailing data after calibration")
	}

	if err = fill(cal.Mins[:], stored.Mins, "mins"); err != nil {
		return Calibration{}, err
	}
	if err = fill(cal.Maxs[:], stored.Maxs, "maxs"); err != nil {
		return Calibration{}, err
	}
	return cal, nil
}

func fill(dst []uint16, src []float64, name string) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%s has %d entries, expected %d", name, len(src), len(dst))
	}
	for i, v := range src {
		if v < 0 || v > math.MaxUint16 || v != math.Trunc(v) {
			return fmt.Errorf("%s[%s] value %v is not a raw sensor reading", name, Channel(i), v)
		}
		dst[i] = uint16(v)
	}
	return nil
}
