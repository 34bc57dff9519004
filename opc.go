package ledsense

// This file contains an Open Pixel Control client for fadecandy style LED
// servers.  Pixels are buffered by Set and written as a single frame by
// Show, which skips the network entirely when the frame did not change.

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cnf/structhash"
	"github.com/go-stack/stack"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

// OPC command bytes.
const (
	OPCSetPixels byte = 0
	OPCSysEx     byte = 255
)

// OPCHeaderLen is the size of the frame header preceding the pixel data.
const OPCHeaderLen = 4

type opcFrame struct {
	Channel byte
	Pixels  []colors.Rgb
}

// EncodeOPC builds a set-pixels message, three bytes per pixel in R, G, B
// order, with a big endian length in the header.
func EncodeOPC(channel byte, pixels []colors.Rgb) []byte {
	n := len(pixels) * 3
	msg := make([]byte, OPCHeaderLen, OPCHeaderLen+n)
	msg[0] = channel
	msg[1] = OPCSetPixels
	msg[2] = byte(n >> 8)
	msg[3] = byte(n)
	for _, px := range pixels {
		r, g, b := px.Unpack()
		msg = append(msg, r, g, b)
	}
	return msg
}

// OPCMessage is one decoded message.
type OPCMessage struct {
	Channel byte
	Command byte
	Data    []byte
}

// Pixels decodes set-pixels data, ignoring a trailing partial pixel.
func (msg *OPCMessage) Pixels() (pixels []colors.Rgb) {
	pixels = make([]colors.Rgb, 0, len(msg.Data)/3)
	for i := 0; i+2 < len(msg.Data); i += 3 {
		pixels = append(pixels, colors.Pack(int(msg.Data[i]), int(msg.Data[i+1]), int(msg.Data[i+2])))
	}
	return pixels
}

// ReadOPC reads the next message from r.
func ReadOPC(r io.Reader) (msg *OPCMessage, err error) {
	hdr := [OPCHeaderLen]byte{}
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	msg = &OPCMessage{
		Channel: hdr[0],
		Command: hdr[1],
		Data:    make([]byte, int(hdr[2])<<8|int(hdr[3])),
	}
	if _, errGo := io.ReadFull(r, msg.Data); errGo != nil {
		return nil, errors.Wrap(errGo, "truncated opc message").With("channel", msg.Channel).With("length", len(msg.Data)).With("stack", stack.Trace().TrimRuntime())
	}
	return msg, nil
}

// OPCOutput buffers a frame of pixels for one OPC channel.
type OPCOutput struct {
	server  string
	channel byte
	timeout time.Duration

	pixels []colors.Rgb
	last   []byte
	conn   net.Conn
	sync.Mutex
}

// NewOPCOutput creates an output for count pixels on channel of server.
// The connection is made by the first Show.
func NewOPCOutput(server string, channel byte, count int) (out *OPCOutput) {
	return &OPCOutput{
		server:  server,
		channel: channel,
		timeout: 2 * time.Second,
		pixels:  make([]colors.Rgb, count),
	}
}

// Set buffers one pixel.  Indexes outside the frame are ignored.
func (out *OPCOutput) Set(index int, color colors.Rgb) {
	out.Lock()
	defer out.Unlock()
	if index < 0 || index >= len(out.pixels) {
		return
	}
	out.pixels[index] = color
}

// Pixels returns a copy of the buffered frame.
func (out *OPCOutput) Pixels() []colors.Rgb {
	out.Lock()
	defer out.Unlock()
	return append([]colors.Rgb{}, out.pixels...)
}

func (out *OPCOutput) connect() (err errors.Error) {
	if out.conn != nil {
		return nil
	}
	conn, errGo := net.DialTimeout("tcp", out.server, out.timeout)
	if errGo != nil {
		return errors.Wrap(errGo).With("url", out.server).With("stack", stack.Trace().TrimRuntime())
	}
	out.conn = conn
	return nil
}

// Show sends the buffered frame unless it is identical to the last frame
// sent.  A failed write drops the connection, the next Show reconnects.
func (out *OPCOutput) Show() error {
	out.Lock()
	defer out.Unlock()

	frame := opcFrame{Channel: out.channel, Pixels: out.pixels}
	hash := structhash.Md5(frame, 1)
	if bytes.Equal(out.last, hash) {
		return nil
	}

	if err := out.connect(); err != nil {
		return err
	}

	if errGo := out.conn.SetWriteDeadline(time.Now().Add(out.timeout)); errGo != nil {
		out.conn.Close()
		out.conn = nil
		return errors.Wrap(errGo).With("url", out.server).With("stack", stack.Trace().TrimRuntime())
	}
	if _, errGo := out.conn.Write(EncodeOPC(out.channel, out.pixels)); errGo != nil {
		out.conn.Close()
		out.conn = nil
		return errors.Wrap(errGo).With("url", out.server).With("stack", stack.Trace().TrimRuntime())
	}
	out.last = hash
	return nil
}

// Close drops the connection.
func (out *OPCOutput) Close() (err error) {
	out.Lock()
	defer out.Unlock()
	if out.conn == nil {
		return nil
	}
	err = out.conn.Close()
	out.conn = nil
	out.last = nil
	return err
}
