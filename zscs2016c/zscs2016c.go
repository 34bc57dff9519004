package zscs2016c

import (
	"encoding/binary"
	"fmt"

	"github.com/go-stack/stack"
	"periph.io/x/conn/v3/i2c"

	"github.com/TeamNorCal/ledsense/errors"
	"github.com/TeamNorCal/ledsense/model"
)

// I²C addresses selected by the address pin.
const (
	AddressLow  uint16 = 0x42
	AddressHigh uint16 = 0x43
)

// Registers.
const (
	regCommand    = 0x80
	regDeviceID   = 0x82
	regRevisionID = 0x83
	regRed        = 0xa0
	regGreen      = 0xa2
	regBlue       = 0xa4
	regClear      = 0xa6
	regIR         = 0xa8
)

// Command register bits. The register is 16 bits wide.
const (
	PON     uint16 = 1 << 0   // Power on
	RGBEn   uint16 = 1 << 1   // RGB, clear and IR conversion enable
	WEn     uint16 = 1 << 2   // Wait state enable
	DarkEn  uint16 = 1 << 4   // Dark offset cancellation enable
	RGBTime uint16 = 0x7 << 8 // Optical integration time
	WTime   uint16 = 1 << 11  // Wait time
	AGain   uint16 = 0x3 << 12
	IRGain  uint16 = 0x3 << 14
)

var channelReg = [model.NumChannels]byte{
	model.Red:   regRed,
	model.Green: regGreen,
	model.Blue:  regBlue,
	model.IR:    regIR,
	model.Clear: regClear,
}

// Dev is a handle to one sensor.
type Dev struct {
	d i2c.Dev
}

// New opens a handle to the sensor and powers it on. addrBit selects 0x43
// instead of 0x42.
func New(b i2c.Bus, addrBit bool) (dev *Dev, err errors.Error) {
	addr := AddressLow
	if addrBit {
		addr = AddressHigh
	}
	dev = &Dev{d: i2c.Dev{Bus: b, Addr: addr}}
	if err = dev.Init(); err != nil {
		return nil, err
	}
	return dev, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ZSCS2016C{%s}", &d.d)
}

// Init powers the sensor on and enables the color conversions, clearing every
// other command bit.
func (d *Dev) Init() (err errors.Error) {
	return d.SetCommand(0xffff, PON|RGBEn)
}

// Reset returns the command register to its power up state.
func (d *Dev) Reset() (err errors.Error) {
	return d.SetCommand(0xffff, 0)
}

// SetCommand replaces the command register bits selected by mask with value,
// leaving the other bits as they are.
func (d *Dev) SetCommand(mask, value uint16) (err errors.Error) {
	var cur [2]byte
	if errGo := d.d.Tx([]byte{regCommand}, cur[:]); errGo != nil {
		return errors.Wrap(errGo).With("device", d.String()).With("stack", stack.Trace().TrimRuntime())
	}
	v := binary.LittleEndian.Uint16(cur[:])
	v = v&^mask | value&mask

	w := []byte{regCommand, 0, 0}
	binary.LittleEndian.PutUint16(w[1:], v)
	if errGo := d.d.Tx(w, nil); errGo != nil {
		return errors.Wrap(errGo).With("device", d.String()).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

// Command reads the command register.
func (d *Dev) Command() (value uint16, err errors.Error) {
	return d.read16(regCommand)
}

// DeviceID reads the identification register.
func (d *Dev) DeviceID() (id byte, err errors.Error) {
	var b [1]byte
	if errGo := d.d.Tx([]byte{regDeviceID}, b[:]); errGo != nil {
		return 0, errors.Wrap(errGo).With("device", d.String()).With("stack", stack.Trace().TrimRuntime())
	}
	return b[0], nil
}

// RevisionID reads the silicon revision register.
func (d *Dev) RevisionID() (id byte, err errors.Error) {
	var b [1]byte
	if errGo := d.d.Tx([]byte{regRevisionID}, b[:]); errGo != nil {
		return 0, errors.Wrap(errGo).With("device", d.String()).With("stack", stack.Trace().TrimRuntime())
	}
	return b[0], nil
}

// ReadRaw reads one channel.
func (d *Dev) ReadRaw(ch model.Channel) (uint16, error) {
	if !ch.Valid() {
		return 0, errors.New("invalid channel").With("channel", ch).With("stack", stack.Trace().TrimRuntime())
	}
	v, err := d.read16(channelReg[ch])
	if err != nil {
		return 0, err.With("channel", ch)
	}
	return v, nil
}

// ReadRawRGB reads the red, green and blue channels in one transaction.
func (d *Dev) ReadRawRGB() (rgb [3]uint16, err error) {
	var b [6]byte
	if errGo := d.d.Tx([]byte{regRed}, b[:]); errGo != nil {
		return rgb, errors.Wrap(errGo).With("device", d.String()).With("stack", stack.Trace().TrimRuntime())
	}
	for i := range rgb {
		rgb[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return rgb, nil
}

// ReadRawRed reads the red channel.
func (d *Dev) ReadRawRed() (uint16, error) { return d.ReadRaw(model.Red) }

// ReadRawGreen reads the green channel.
func (d *Dev) ReadRawGreen() (uint16, error) { return d.ReadRaw(model.Green) }

// ReadRawBlue reads the blue channel.
func (d *Dev) ReadRawBlue() (uint16, error) { return d.ReadRaw(model.Blue) }

// ReadRawIR reads the infrared channel.
func (d *Dev) ReadRawIR() (uint16, error) { return d.ReadRaw(model.IR) }

// ReadRawClear reads the unfiltered channel.
func (d *Dev) ReadRawClear() (uint16, error) { return d.ReadRaw(model.Clear) }

func (d *Dev) read16(reg byte) (value uint16, err errors.Error) {
	var b [2]byte
	if errGo := d.d.Tx([]byte{reg}, b[:]); errGo != nil {
		return 0, errors.Wrap(errGo).With("device", d.String()).With("register", fmt.Sprintf("%#02x", reg)).With("stack", stack.Trace().TrimRuntime())
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}
