package ledsense

import (
	"encoding/json"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamNorCal/ledsense/colors"
)

type published struct {
	topic   string
	payload []byte
}

type fakeToken struct {
	mqtt.DummyToken
	err     error
	expired bool
}

func (tok *fakeToken) WaitTimeout(time.Duration) bool {
	return !tok.expired
}

func (tok *fakeToken) Error() error {
	return tok.err
}

type fakeBroker struct {
	msgs  []published
	token mqtt.Token
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.msgs = append(b.msgs, published{topic: topic, payload: payload.([]byte)})
	if b.token != nil {
		return b.token
	}
	return &mqtt.DummyToken{}
}

func TestMQTTOutputShow(t *testing.T) {
	broker := &fakeBroker{}
	out := NewMQTTOutput(broker, "ledsense/strip", 2)

	out.Set(0, colors.White)
	out.Set(5, colors.White)
	require.NoError(t, out.Show())
	out.Set(1, 0x00ff00)
	require.NoError(t, out.Show())

	require.Len(t, broker.msgs, 2)
	assert.Equal(t, "ledsense/strip", broker.msgs[0].topic)
	assert.JSONEq(t, `{"seq":1,"pixels":["#ffffff","#000000"]}`, string(broker.msgs[0].payload))

	frame := MQTTFrame{}
	require.NoError(t, json.Unmarshal(broker.msgs[1].payload, &frame))
	assert.Equal(t, uint64(2), frame.Seq)
	assert.Equal(t, []string{"#ffffff", "#00ff00"}, frame.Pixels)
}

func TestMQTTOutputReading(t *testing.T) {
	broker := &fakeBroker{}
	out := NewMQTTOutput(broker, "ledsense/strip", 1)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, out.PublishReading(Reading{At: at, Color: 0x7f7f7f, Hex: "#7f7f7f"}))

	require.Len(t, broker.msgs, 1)
	assert.Equal(t, "ledsense/strip/reading", broker.msgs[0].topic)
	assert.JSONEq(t, `{"time":"2024-01-02T03:04:05Z","color":"#7f7f7f"}`, string(broker.msgs[0].payload))
}

func TestMQTTOutputFailures(t *testing.T) {
	broker := &fakeBroker{token: &fakeToken{err: assert.AnError}}
	out := NewMQTTOutput(broker, "t", 1)
	assert.ErrorIs(t, out.Show(), assert.AnError)

	broker.token = &fakeToken{expired: true}
	assert.Error(t, out.Show())
}
