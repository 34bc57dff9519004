package ledsense

// This file contains an output that publishes LED frames, and optionally
// sensor readings, to an MQTT broker so that remote displays can mirror the
// strip.

import (
	"encoding/json"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-stack/stack"

	"github.com/TeamNorCal/ledsense/colors"
	"github.com/TeamNorCal/ledsense/errors"
)

// Publisher is the part of an MQTT client used for publishing.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTFrame is the JSON payload of a published frame.
type MQTTFrame struct {
	Seq    uint64   `json:"seq"`
	Pixels []string `json:"pixels"`
}

// MQTTOutput buffers a frame of pixels and publishes it on Show.
type MQTTOutput struct {
	client  Publisher
	topic   string
	qos     byte
	timeout time.Duration

	seq    uint64
	pixels []colors.Rgb
	sync.Mutex
}

// NewMQTTOutput publishes frames of count pixels on topic, readings go to
// topic/reading.
func NewMQTTOutput(client Publisher, topic string, count int) (out *MQTTOutput) {
	return &MQTTOutput{
		client:  client,
		topic:   topic,
		qos:     0,
		timeout: 2 * time.Second,
		pixels:  make([]colors.Rgb, count),
	}
}

// Set buffers one pixel.  Indexes outside the frame are ignored.
func (out *MQTTOutput) Set(index int, color colors.Rgb) {
	out.Lock()
	defer out.Unlock()
	if index < 0 || index >= len(out.pixels) {
		return
	}
	out.pixels[index] = color
}

func (out *MQTTOutput) publish(topic string, v interface{}) (err errors.Error) {
	payload, errGo := json.Marshal(v)
	if errGo != nil {
		return errors.Wrap(errGo).With("topic", topic).With("stack", stack.Trace().TrimRuntime())
	}
	token := out.client.Publish(topic, out.qos, false, payload)
	if !token.WaitTimeout(out.timeout) {
		return errors.New("mqtt publish timed out").With("topic", topic).With("timeout", out.timeout).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = token.Error(); errGo != nil {
		return errors.Wrap(errGo).With("topic", topic).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

// Show publishes the buffered frame.
func (out *MQTTOutput) Show() error {
	out.Lock()
	out.seq++
	frame := MQTTFrame{
		Seq:    out.seq,
		Pixels: make([]string, len(out.pixels)),
	}
	for i, px := range out.pixels {
		frame.Pixels[i] = px.Hex()
	}
	out.Unlock()

	if err := out.publish(out.topic, frame); err != nil {
		return err
	}
	return nil
}

// PublishReading publishes a sensor reading.
func (out *MQTTOutput) PublishReading(reading Reading) error {
	if err := out.publish(out.topic+"/reading", reading); err != nil {
		return err
	}
	return nil
}

// DialMQTT connects to broker, for example tcp://localhost:1883.
func DialMQTT(broker string, clientID string) (client mqtt.Client, err errors.Error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client = mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, errors.New("mqtt connect timed out").With("broker", broker).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo := token.Error(); errGo != nil {
		return nil, errors.Wrap(errGo).With("broker", broker).With("stack", stack.Trace().TrimRuntime())
	}
	return client, nil
}
