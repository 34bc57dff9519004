package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

// termOutput renders the strip as a row of 24 bit colored cells, used when no
// LED server is configured
type termOutput struct {
	w      io.Writer
	pixels []colors.Rgb
	sync.Mutex
}

func newTermOutput(w io.Writer, count int) (out *termOutput) {
	return &termOutput{
		w:      w,
		pixels: make([]colors.Rgb, count),
	}
}

func (out *termOutput) Set(index int, color colors.Rgb) {
	out.Lock()
	defer out.Unlock()
	if index < 0 || index >= len(out.pixels) {
		return
	}
	out.pixels[index] = color
}

func (out *termOutput) Show() (err error) {
	out.Lock()
	defer out.Unlock()

	str := strings.Builder{}
	str.WriteString("\r")
	for _, px := range out.pixels {
		r, g, b := px.Unpack()
		fmt.Fprintf(&str, "\x1b[48;2;%d;%d;%dm  \x1b[0m", r, g, b)
	}
	str.WriteString(" ")
	_, err = io.WriteString(out.w, str.String())
	return err
}

func msgWatch(w io.Writer, errorC <-chan errors.Error, quitC <-chan struct{}) {
	for {
		select {
		case err := <-errorC:
			if err == nil {
				continue
			}
			logger.Warn(err.Error())
			if w != nil {
				fmt.Fprintln(w, err.Error())
			}
		case <-quitC:
			return
		}
	}
}
