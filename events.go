package ledsense

import (
	"fmt"
	"sync"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/ledsense/model"
)

// Phase is the stage a calibration run has reached.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSamplingWhite
	PhaseSamplingBlack
	PhaseReady
)

var phaseNames = []string{"idle", "sampling-white", "sampling-black", "ready"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Event reports progress of a calibration run.  Err is set on the final
// event of a run that failed or was cancelled, in which case Phase is
// PhaseIdle.
type Event struct {
	RunID       string
	Phase       Phase
	Message     string
	Calibration model.Calibration
	Err         error
}

func (ev Event) String() string {
	if ev.Err != nil {
		return fmt.Sprintf("%s %s %s: %s", ev.RunID, ev.Phase, ev.Message, ev.Err)
	}
	return fmt.Sprintf("%s %s %s", ev.RunID, ev.Phase, ev.Message)
}

type subs[T any] struct {
	subs []chan T
	sync.Mutex
}

// FanOut relays every value sent to its input channel to all subscribers.
// A subscriber that does not accept a value within the send timeout misses
// that value but remains subscribed.
type FanOut[T any] struct {
	InC  chan T
	SubC chan chan T

	timeout time.Duration
	logger  logxi.Logger
	subs    subs[T]
}

// StartFanOut starts the broadcast goroutine, which exits when quitC is
// closed.
func StartFanOut[T any](logger logxi.Logger, quitC <-chan struct{}) (fan *FanOut[T]) {
	if logger == nil {
		logger = logxi.New("ledsense")
	}
	fan = &FanOut[T]{
		InC:     make(chan T, 1),
		SubC:    make(chan chan T, 1),
		timeout: 250 * time.Millisecond,
		logger:  logger,
	}

	go fan.run(quitC)

	return fan
}

// Subscribers returns the number of channels currently receiving values.
func (fan *FanOut[T]) Subscribers() int {
	fan.subs.Lock()
	defer fan.subs.Unlock()
	return len(fan.subs.subs)
}

func (fan *FanOut[T]) run(quitC <-chan struct{}) {
	defer fan.logger.Debug("fanout stopped")
	for {
		select {
		case <-quitC:
			return
		case sub := <-fan.SubC:
			if sub != nil {
				fan.subs.Lock()
				fan.subs.subs = append(fan.subs.subs, sub)
				fan.subs.Unlock()
				fan.logger.Debug("subscription added")
			}
		case msg := <-fan.InC:
			fan.subs.Lock()
			subscribers := append([]chan T{}, fan.subs.subs...)
			fan.subs.Unlock()

			for _, ch := range subscribers {
				select {
				case ch <- msg:
				case <-time.After(fan.timeout):
					fan.logger.Warn("subscription failed to send", "value", msg)
				case <-quitC:
					return
				}
			}
		}
	}
}
