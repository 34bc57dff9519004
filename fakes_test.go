package ledsense

import (
	"context"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/model"
)

type pixelSet struct {
	index int
	color colors.Rgb
}

// recorder is an Output that remembers every pixel written
type recorder struct {
	sets    []pixelSet
	shows   int
	showErr error
	sync.Mutex
}

func (r *recorder) Set(index int, color colors.Rgb) {
	r.Lock()
	defer r.Unlock()
	r.sets = append(r.sets, pixelSet{index: index, color: color})
}

func (r *recorder) Show() error {
	r.Lock()
	defer r.Unlock()
	r.shows++
	return r.showErr
}

func (r *recorder) snapshot() (sets []pixelSet, shows int) {
	r.Lock()
	defer r.Unlock()
	return append([]pixelSet{}, r.sets...), r.shows
}

// fakeSensor returns fixed raw values until they are replaced
type fakeSensor struct {
	values [model.NumChannels]uint16
	reads  int
	err    error
	sync.Mutex
}

func (f *fakeSensor) set(values [model.NumChannels]uint16) {
	f.Lock()
	f.values = values
	f.Unlock()
}

func (f *fakeSensor) fail(err error) {
	f.Lock()
	f.err = err
	f.Unlock()
}

func (f *fakeSensor) ReadRaw(ch model.Channel) (uint16, error) {
	f.Lock()
	defer f.Unlock()
	f.reads++
	if f.err != nil {
		return 0, f.err
	}
	return f.values[ch], nil
}

func (f *fakeSensor) ReadRawRGB() ([3]uint16, error) {
	f.Lock()
	defer f.Unlock()
	f.reads++
	if f.err != nil {
		return [3]uint16{}, f.err
	}
	return [3]uint16{f.values[model.Red], f.values[model.Green], f.values[model.Blue]}, nil
}

func all(v uint16) (values [model.NumChannels]uint16) {
	for i := range values {
		values[i] = v
	}
	return values
}

// blockUntil waits for the fake clock to have n waiters, giving up when ctx
// is done
func blockUntil(ctx context.Context, t *testing.T, clock clockwork.FakeClock, n int) {
	t.Helper()

	waiter, ok := clock.(interface {
		BlockUntilContext(ctx context.Context, n int) error
	})
	require.True(t, ok, "fake clock cannot block with a context")
	require.NoError(t, waiter.BlockUntilContext(ctx, n))
}
