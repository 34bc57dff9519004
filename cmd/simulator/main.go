package main

// The simulator stands in for a fadecandy server.  It accepts Open Pixel
// Control connections, logs every frame received, and optionally serves the
// last frame of each channel over HTTP.

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/ledsense"
)

var (
	listen   = flag.String("listen", ":7890", "Address the OPC server binds to")
	httpAddr = flag.String("http", "", "Address serving the last frame of every channel as JSON, disabled when empty")

	// create Logger interface
	logW = logxi.NewLogger(logxi.NewConcurrentWriter(os.Stdout), "ledsense-simulator")
)

type lastFrames struct {
	channels map[string][]string
	sync.Mutex
}

func (f *lastFrames) store(channel byte, pixels []string) {
	f.Lock()
	defer f.Unlock()
	f.channels[fmt.Sprint(channel)] = pixels
}

func (f *lastFrames) get(channel byte) (pixels []string, isPresent bool) {
	f.Lock()
	defer f.Unlock()
	pixels, isPresent = f.channels[fmt.Sprint(channel)]
	return pixels, isPresent
}

func (f *lastFrames) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.Lock()
	body, errGo := json.Marshal(f.channels)
	f.Unlock()
	if errGo != nil {
		http.Error(w, errGo.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func main() {

	flag.Parse()

	frames := &lastFrames{channels: map[string][]string{}}

	ln, errGo := net.Listen("tcp", *listen)
	if errGo != nil {
		logW.Fatal(errGo.Error(), "listen", *listen)
		os.Exit(-1)
	}
	logW.Info("listening", "address", ln.Addr().String())

	if len(*httpAddr) != 0 {
		go func() {
			if errGo := http.ListenAndServe(*httpAddr, frames); errGo != nil {
				logW.Warn(errGo.Error(), "http", *httpAddr)
			}
		}()
	}

	if errGo = serve(ln, frames); errGo != nil {
		logW.Warn(errGo.Error())
	}
}

// serve accepts connections until the listener is closed
func serve(ln net.Listener, frames *lastFrames) error {
	for {
		conn, errGo := ln.Accept()
		if errGo != nil {
			return errGo
		}
		go handle(conn, frames)
	}
}

func handle(conn net.Conn, frames *lastFrames) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	logW.Debug("client connected", "remote", remote)

	for {
		msg, errGo := ledsense.ReadOPC(conn)
		if errGo != nil {
			if errGo != io.EOF {
				logW.Warn(errGo.Error(), "remote", remote)
			}
			logW.Debug("client disconnected", "remote", remote)
			return
		}
		if msg.Command != ledsense.OPCSetPixels {
			logW.Debug("ignoring command", "command", msg.Command, "remote", remote)
			continue
		}

		pixels := msg.Pixels()
		hexes := make([]string, 0, len(pixels))
		for _, px := range pixels {
			hexes = append(hexes, px.Hex())
		}
		frames.store(msg.Channel, hexes)

		logW.Info("frame", "channel", msg.Channel, "pixels", strings.Join(hexes, " "))
	}
}
