package ledsense

import (
	"testing"
	"time"

	logxi "github.com/mgutz/logxi/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

func TestIndicatorColor(t *testing.T) {
	data := []struct {
		ev       Event
		expected colors.Rgb
	}{
		{Event{Phase: PhaseIdle}, colors.Off},
		{Event{Phase: PhaseSamplingWhite, Message: "place on white"}, colors.White},
		{Event{Phase: PhaseSamplingWhite, Message: "measuring"}, colors.Yellow},
		{Event{Phase: PhaseSamplingBlack, Message: "place on black"}, colors.Blue},
		{Event{Phase: PhaseSamplingBlack, Message: "measuring"}, colors.Orange},
		{Event{Phase: PhaseReady, Message: "done"}, colors.Green},
		{Event{Phase: PhaseIdle, Message: "aborted", Err: assert.AnError}, colors.Red},
	}
	for i, line := range data {
		if actual := IndicatorColor(line.ev); actual != line.expected {
			t.Fatalf("line %d: event %s showed %s, expected %s", i, line.ev, actual, line.expected)
		}
	}
}

func TestIndicatorProcess(t *testing.T) {
	out := &recorder{}
	strip := NewStrip(out, 2)
	strip.SetLinearize(false)
	ind := NewIndicator(strip)
	ind.logger = logxi.NullLog

	_, ok := ind.Last()
	assert.False(t, ok)

	require.NoError(t, ind.process(Event{RunID: "r", Phase: PhaseReady}))
	sets, shows := out.snapshot()
	assert.Equal(t, []pixelSet{{0, colors.Green}, {1, colors.Green}}, sets)
	assert.Equal(t, 1, shows)

	last, ok := ind.Last()
	require.True(t, ok)
	assert.Equal(t, "r", last.RunID)

	out.showErr = assert.AnError
	err := ind.process(Event{RunID: "s", Phase: PhaseIdle})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	runID, _ := errors.Value(err, "run")
	assert.Equal(t, "s", runID)
}

func TestIndicatorRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	quitC := make(chan struct{})
	doneC := make(chan struct{})

	fan := StartFanOut[Event](logxi.NullLog, quitC)
	errorC := make(chan errors.Error, 1)

	out := &recorder{}
	strip := NewStrip(out, 3)
	strip.SetLinearize(false)
	ind := NewIndicator(strip)
	ind.logger = logxi.NullLog

	go func() {
		defer close(doneC)
		ind.Run(fan.SubC, errorC, quitC)
	}()
	require.Eventually(t, func() bool { return fan.Subscribers() == 1 }, time.Second, time.Millisecond)

	fan.InC <- Event{RunID: "r", Phase: PhaseSamplingWhite, Message: "place on white"}
	require.Eventually(t, func() bool {
		ev, ok := ind.Last()
		return ok && ev.Phase == PhaseSamplingWhite
	}, time.Second, time.Millisecond)

	sets, _ := out.snapshot()
	require.Len(t, sets, 6)
	for _, set := range sets[:3] {
		assert.Equal(t, colors.Off, set.color)
	}
	for _, set := range sets[3:] {
		assert.Equal(t, colors.White, set.color)
	}

	close(quitC)
	<-doneC
	assert.Empty(t, errorC)
}
