package main

import (
	"fmt"
	"io"

	"github.com/TeamNorCal/ledsense"
)

// This file implements a monitor that subscribes to and displays the
// calibration events using event subscription

func runMonitoring(w io.Writer, subscribeC chan<- chan ledsense.Event, quitC <-chan struct{}) {

	eventC := make(chan ledsense.Event, 1)
	select {
	case subscribeC <- eventC:
	case <-quitC:
		return
	}

	for {
		select {
		case ev := <-eventC:
			logger.Debug(fmt.Sprintf("%+v", ev))
			fmt.Fprintln(w, prompt(ev))
		case <-quitC:
			return
		}
	}
}

func prompt(ev ledsense.Event) string {
	switch {
	case ev.Err != nil:
		return "calibration aborted: " + ev.Err.Error()
	case ev.Phase == ledsense.PhaseReady:
		return "calibration done"
	case ev.Message == "measuring":
		return "measuring..."
	}
	return "Place on " + map[ledsense.Phase]string{
		ledsense.PhaseSamplingWhite: "white",
		ledsense.PhaseSamplingBlack: "black",
	}[ev.Phase] + "..."
}
