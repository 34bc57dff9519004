package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamNorCal/ledsense"
	"github.com/TeamNorCal/ledsense/colors"
)

func TestSimulatorRecordsFrames(t *testing.T) {
	ln, errGo := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, errGo)

	frames := &lastFrames{channels: map[string][]string{}}
	doneC := make(chan error, 1)
	go func() {
		doneC <- serve(ln, frames)
	}()

	out := ledsense.NewOPCOutput(ln.Addr().String(), 3, 2)
	out.Set(0, colors.White)
	out.Set(1, 0x0000ff)
	require.NoError(t, out.Show())

	require.Eventually(t, func() bool {
		_, isPresent := frames.get(3)
		return isPresent
	}, 2*time.Second, 5*time.Millisecond)

	pixels, _ := frames.get(3)
	assert.Equal(t, []string{"#ffffff", "#0000ff"}, pixels)

	rec := httptest.NewRecorder()
	frames.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := map[string][]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string][]string{"3": {"#ffffff", "#0000ff"}}, body)

	require.NoError(t, out.Close())
	require.NoError(t, ln.Close())
	assert.Error(t, <-doneC)
}
