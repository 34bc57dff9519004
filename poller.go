package ledsense

// This file implements a poller that reads calibrated colors from a sensor on
// a regular basis and relays them to a listener, along with a mirror that
// paints every reading onto a strip.

import (
	"time"

	"github.com/go-stack/stack"
	"github.com/jonboulle/clockwork"
	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

// RGBReader produces calibrated colors, usually a Calibrator.
type RGBReader interface {
	ReadRGB() (colors.Rgb, error)
}

// Reading is one color sample.
type Reading struct {
	At    time.Time  `json:"time"`
	Color colors.Rgb `json:"-"`
	Hex   string     `json:"color"`
}

// Poller samples an RGBReader at a fixed interval.
type Poller struct {
	source   RGBReader
	interval time.Duration
	clock    clockwork.Clock
	logger   logxi.Logger

	readingC chan<- Reading
	errorC   chan<- errors.Error
}

// NewPoller creates a poller sending to readingC and reporting failures on
// errorC.  A nil clock selects the wall clock.
func NewPoller(source RGBReader, interval time.Duration, clock clockwork.Clock, readingC chan<- Reading, errorC chan<- errors.Error) (p *Poller) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		source:   source,
		interval: interval,
		clock:    clock,
		logger:   logxi.New("ledsense"),
		readingC: readingC,
		errorC:   errorC,
	}
}

func (p *Poller) sendErr(err errors.Error, quitC <-chan struct{}) {
	select {
	case p.errorC <- err:
	case <-quitC:
	case <-time.After(500 * time.Millisecond):
		p.logger.Warn("could not send poller error", "error", err.Error())
	}
}

func (p *Poller) poll(quitC <-chan struct{}) {
	color, errGo := p.source.ReadRGB()
	if errGo != nil {
		p.sendErr(errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime()), quitC)
		return
	}

	reading := Reading{
		At:    p.clock.Now(),
		Color: color,
		Hex:   color.Hex(),
	}

	select {
	case p.readingC <- reading:
	case <-quitC:
	case <-time.After(750 * time.Millisecond):
		p.sendErr(errors.New("sensor reading dropped").With("color", reading.Hex).With("stack", stack.Trace().TrimRuntime()), quitC)
	}
}

// Run polls until quitC is closed.
func (p *Poller) Run(quitC <-chan struct{}) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			p.poll(quitC)
		case <-quitC:
			return
		}
	}
}

// Mirror paints every reading across strip until quitC is closed or readingC
// is closed.
func Mirror(strip *Strip, readingC <-chan Reading, errorC chan<- errors.Error, quitC <-chan struct{}) {
	for {
		select {
		case reading, isOpen := <-readingC:
			if !isOpen {
				return
			}
			strip.SetAll(reading.Color)
			if err := strip.Show(); err != nil {
				select {
				case errorC <- err.With("color", reading.Hex):
				case <-quitC:
					return
				case <-time.After(100 * time.Millisecond):
				}
			}
		case <-quitC:
			return
		}
	}
}
