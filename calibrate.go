package ledsense

// This file contains the calibration engine for a color sensor.  A run samples
// the sensor over a white and then a black reference surface and records the
// per channel extremes, which are later used to normalise raw readings.

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
	"github.com/TeamNorCal/ledsense/kvstore"
	"github.com/TeamNorCal/ledsense/model"
)

const (
	// SettleDelay is the time given to place the sensor on a reference
	// surface before sampling begins.
	SettleDelay = 3000 * time.Millisecond

	// SampleInterval is waited after every sample.
	SampleInterval = 10 * time.Millisecond

	// Samples is the number of samples taken per reference surface.
	Samples = 30

	// Namespace is the key-value namespace calibrations are stored under.
	Namespace = "ZSCS2016C_calib"
)

var (
	ErrNotFound        = errors.New("calibration not found")
	ErrDeserialization = errors.New("stored calibration is malformed")
	ErrConcurrentRun   = errors.New("calibration run already in progress")
	ErrIndexRange      = errors.New("pixel index out of range")
	ErrChannel         = errors.New("unknown sensor channel")
)

// RawReader reads uncalibrated sensor channels.
type RawReader interface {
	ReadRaw(ch model.Channel) (uint16, error)
	ReadRawRGB() ([3]uint16, error)
}

// Option configures a Calibrator.
type Option func(c *Calibrator)

// WithClock replaces the wall clock used for the calibration waits.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Calibrator) {
		c.clock = clock
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger logxi.Logger) Option {
	return func(c *Calibrator) {
		c.logger = logger
	}
}

// WithEvents sends calibration progress to eventC, typically the input of a
// FanOut.
func WithEvents(eventC chan<- Event) Option {
	return func(c *Calibrator) {
		c.eventC = eventC
	}
}

// Calibrator turns raw readings into normalised values using a calibration
// that is measured, assigned, or loaded from a key-value store.
type Calibrator struct {
	reader RawReader
	store  kvstore.Store
	clock  clockwork.Clock
	logger logxi.Logger
	eventC chan<- Event

	cal     model.Calibration
	running bool
	sync.Mutex
}

// NewCalibrator starts with the default calibration.  store may be nil when
// persistence is not needed.
func NewCalibrator(reader RawReader, store kvstore.Store, opts ...Option) (c *Calibrator) {
	c = &Calibrator{
		reader: reader,
		store:  store,
		clock:  clockwork.NewRealClock(),
		logger: logxi.New("ledsense"),
		cal:    model.DefaultCalibration(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// calibrationRun is the private state of one run.
type calibrationRun struct {
	id     string
	phase  Phase
	sample int
	mins   [model.NumChannels]uint16
	maxs   [model.NumChannels]uint16
}

// Run measures a new calibration.  The sensor must be held over a white
// surface for the first phase and a black one for the second.  The result
// replaces the in-memory calibration but is not persisted.
//
// A cancelled ctx discards the run and returns ctx.Err() as is.
func (c *Calibrator) Run(ctx context.Context) (cal model.Calibration, err error) {
	c.Lock()
	if c.running {
		c.Unlock()
		return cal, errors.Wrap(ErrConcurrentRun).With("stack", stack.Trace().TrimRuntime())
	}
	c.running = true
	c.Unlock()

	defer func() {
		c.Lock()
		c.running = false
		c.Unlock()
	}()

	run := &calibrationRun{
		id:    uuid.New().String(),
		phase: PhaseIdle,
	}

	if err = c.runPhases(ctx, run); err != nil {
		run.phase = PhaseIdle
		c.notify(Event{RunID: run.id, Phase: run.phase, Message: "aborted", Err: err})
		c.logger.Warn("calibration aborted", "run", run.id, "error", err.Error())
		return cal, err
	}

	cal = model.Calibration{Mins: run.mins, Maxs: run.maxs}

	c.Lock()
	c.cal = cal
	c.Unlock()

	c.notify(Event{RunID: run.id, Phase: run.phase, Message: "done", Calibration: cal})
	c.logger.Info("calibration done", "run", run.id, "mins", cal.Mins, "maxs", cal.Maxs)

	return cal, nil
}

func (c *Calibrator) runPhases(ctx context.Context, run *calibrationRun) (err error) {
	run.phase = PhaseSamplingWhite
	if err = c.samplePhase(ctx, run, "place on white", func(ch model.Channel, v uint16) {
		if v > run.maxs[ch] {
			run.maxs[ch] = v
		}
	}); err != nil {
		return err
	}

	run.phase = PhaseSamplingBlack
	for i := range run.mins {
		run.mins[i] = math.MaxUint16
	}
	if err = c.samplePhase(ctx, run, "place on black", func(ch model.Channel, v uint16) {
		if v < run.mins[ch] {
			run.mins[ch] = v
		}
	}); err != nil {
		return err
	}

	run.phase = PhaseReady
	return nil
}

func (c *Calibrator) samplePhase(ctx context.Context, run *calibrationRun, prompt string, keep func(ch model.Channel, v uint16)) (err error) {
	c.notify(Event{RunID: run.id, Phase: run.phase, Message: prompt})
	c.logger.Info(prompt, "run", run.id)

	if err = c.sleep(ctx, SettleDelay); err != nil {
		return err
	}

	c.notify(Event{RunID: run.id, Phase: run.phase, Message: "measuring"})
	c.logger.Debug("measuring", "run", run.id, "phase", run.phase)

	for run.sample = 0; run.sample != Samples; run.sample++ {
		for _, ch := range model.Channels {
			v, errGo := c.reader.ReadRaw(ch)
			if errGo != nil {
				return errors.Wrap(errGo).With("run", run.id).With("phase", run.phase.String()).With("sample", run.sample).With("channel", ch.String()).With("stack", stack.Trace().TrimRuntime())
			}
			keep(ch, v)
		}
		if err = c.sleep(ctx, SampleInterval); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calibrator) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := c.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Calibrator) notify(ev Event) {
	if c.eventC == nil {
		return
	}
	select {
	case c.eventC <- ev:
		return
	default:
	}

	timer := c.clock.NewTimer(100 * time.Millisecond)
	defer timer.Stop()

	select {
	case c.eventC <- ev:
	case <-timer.Chan():
		c.logger.Warn("calibration event dropped", "event", ev.String())
	}
}

// Calibration returns a copy of the current calibration.
func (c *Calibrator) Calibration() model.Calibration {
	c.Lock()
	defer c.Unlock()
	return c.cal
}

// SetCalibration replaces the current calibration.
func (c *Calibrator) SetCalibration(cal model.Calibration) {
	c.Lock()
	c.cal = cal
	c.Unlock()
}

// Read returns channel ch normalised to 0-1.
func (c *Calibrator) Read(ch model.Channel) (value float64, err error) {
	if !ch.Valid() {
		return 0, errors.Wrap(ErrChannel).With("channel", ch.String()).With("stack", stack.Trace().TrimRuntime())
	}
	raw, errGo := c.reader.ReadRaw(ch)
	if errGo != nil {
		return 0, errors.Wrap(errGo).With("channel", ch.String()).With("stack", stack.Trace().TrimRuntime())
	}
	cal := c.Calibration()
	return cal.Scale(ch, raw), nil
}

// ReadRed returns the red channel normalised to 0-1.
func (c *Calibrator) ReadRed() (float64, error) { return c.Read(model.Red) }

// ReadGreen returns the green channel normalised to 0-1.
func (c *Calibrator) ReadGreen() (float64, error) { return c.Read(model.Green) }

// ReadBlue returns the blue channel normalised to 0-1.
func (c *Calibrator) ReadBlue() (float64, error) { return c.Read(model.Blue) }

// ReadIR returns the infrared channel normalised to 0-1.
func (c *Calibrator) ReadIR() (float64, error) { return c.Read(model.IR) }

// ReadClear returns the unfiltered channel normalised to 0-1.
func (c *Calibrator) ReadClear() (float64, error) { return c.Read(model.Clear) }

// ReadRGB reads red, green and blue in one transaction and maps them onto
// 0-255.
func (c *Calibrator) ReadRGB() (color colors.Rgb, err error) {
	raw, errGo := c.reader.ReadRawRGB()
	if errGo != nil {
		return 0, errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	cal := c.Calibration()

	var rgb [3]int
	for i, ch := range []model.Channel{model.Red, model.Green, model.Blue} {
		v := cal.Map(ch, raw[i], 0, 255)
		rgb[i] = int(math.Min(math.Max(v, 0), 255))
	}
	return colors.Pack(rgb[0], rgb[1], rgb[2]), nil
}

// SaveCalibration stores the current calibration under id.
func (c *Calibrator) SaveCalibration(id string) (err error) {
	if c.store == nil {
		return errors.New("no calibration store configured").With("stack", stack.Trace().TrimRuntime())
	}
	text, errGo := c.Calibration().Encode()
	if errGo != nil {
		return errors.Wrap(errGo).With("id", id).With("stack", stack.Trace().TrimRuntime())
	}

	bucket, errGo := c.store.Open(Namespace)
	if errGo != nil {
		return errors.Wrap(errGo).With("namespace", Namespace).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = bucket.Set(id, text); errGo != nil {
		return errors.Wrap(errGo).With("namespace", Namespace).With("id", id).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = bucket.Commit(); errGo != nil {
		return errors.Wrap(errGo).With("namespace", Namespace).With("id", id).With("stack", stack.Trace().TrimRuntime())
	}
	c.logger.Debug("calibration saved", "id", id, "namespace", Namespace)
	return nil
}

// LoadCalibration replaces the current calibration with the one stored under
// id.  On error the current calibration is left as it was.
func (c *Calibrator) LoadCalibration(id string) (err error) {
	if c.store == nil {
		return errors.New("no calibration store configured").With("stack", stack.Trace().TrimRuntime())
	}
	bucket, errGo := c.store.Open(Namespace)
	if errGo != nil {
		return errors.Wrap(errGo).With("namespace", Namespace).With("stack", stack.Trace().TrimRuntime())
	}
	text, isPresent, errGo := bucket.GetString(id)
	if errGo != nil {
		return errors.Wrap(errGo).With("namespace", Namespace).With("id", id).With("stack", stack.Trace().TrimRuntime())
	}
	if !isPresent || len(text) == 0 {
		return errors.Wrap(ErrNotFound).With("namespace", Namespace).With("id", id).With("stack", stack.Trace().TrimRuntime())
	}

	cal, errGo := model.DecodeCalibration(text)
	if errGo != nil {
		return errors.Wrap(ErrDeserialization).With("id", id).With("reason", errGo.Error()).With("stack", stack.Trace().TrimRuntime())
	}

	c.SetCalibration(cal)
	c.logger.Debug("calibration loaded", "id", id, "namespace", Namespace)
	return nil
}
