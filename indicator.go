package ledsense

// This module tracks calibration events that are broadcast to it and mirrors
// the progress of the run as colors on an LED strip, so that the person
// holding the sensor knows which surface to present next.

import (
	"sync"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

// IndicatorColor is the color shown for ev.
func IndicatorColor(ev Event) colors.Rgb {
	if ev.Err != nil {
		return colors.Red
	}
	switch ev.Phase {
	case PhaseSamplingWhite:
		if ev.Message == "measuring" {
			return colors.Yellow
		}
		return colors.White
	case PhaseSamplingBlack:
		if ev.Message == "measuring" {
			return colors.Orange
		}
		return colors.Blue
	case PhaseReady:
		return colors.Green
	}
	return colors.Off
}

// Indicator displays calibration progress on a strip.
type Indicator struct {
	strip  *Strip
	logger logxi.Logger

	last *Event
	sync.Mutex
}

// NewIndicator drives strip, which is cleared until the first event arrives.
func NewIndicator(strip *Strip) (ind *Indicator) {
	return &Indicator{
		strip:  strip,
		logger: logxi.New("ledsense"),
	}
}

// Last returns the most recently displayed event.
func (ind *Indicator) Last() (ev Event, ok bool) {
	ind.Lock()
	defer ind.Unlock()
	if ind.last == nil {
		return ev, false
	}
	return *ind.last, true
}

func (ind *Indicator) process(ev Event) (err errors.Error) {
	color := IndicatorColor(ev)
	ind.logger.Debug("indicator", "event", ev.String(), "color", color.Hex())

	if color == colors.Off {
		ind.strip.Clear()
	} else {
		ind.strip.SetAll(color)
	}

	ind.Lock()
	ind.last = &ev
	ind.Unlock()

	if err = ind.strip.Show(); err != nil {
		return err.With("run", ev.RunID)
	}
	return nil
}

// Run subscribes to calibration events and displays them until quitC is
// closed.
func (ind *Indicator) Run(subscribeC chan<- chan Event, errorC chan<- errors.Error, quitC <-chan struct{}) {

	// Allow messages to queue up as only the last one is displayed when
	// backed up
	updateC := make(chan Event, 10)

	select {
	case subscribeC <- updateC:
	case <-quitC:
		return
	}

	ind.strip.Clear()

	for {
		select {
		case ev := <-updateC:
			// Skip intermediate events when more are waiting
			if len(updateC) != 0 {
				continue
			}
			if err := ind.process(ev); err != nil {
				select {
				case errorC <- err:
				case <-quitC:
					return
				case <-time.After(20 * time.Millisecond):
					ind.logger.Warn("could not send indicator error", "error", err.Error())
				}
			}
		case <-quitC:
			return
		}
	}
}
