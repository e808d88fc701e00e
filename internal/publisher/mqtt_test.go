package publisher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/gridsales/internal/config"
	"github.com/jgoulah/gridsales/pkg/models"
)

type fakeToken struct {
	done    bool
	err     error
	channel chan struct{}
}

func newToken(done bool, err error) *fakeToken {
	ch := make(chan struct{})
	if done {
		close(ch)
	}
	return &fakeToken{done: done, err: err, channel: ch}
}

func (t *fakeToken) Wait() bool                     { return t.done }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Done() <-chan struct{}          { return t.channel }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	token        mqtt.Token
	connected    bool
	disconnected bool
	messages     []published
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, published{topic, qos, retained, payload.([]byte)})
	return c.token
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) {
	c.disconnected = true
	c.connected = false
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "gridsales/sales/built", Topic("gridsales", models.Sales))
	assert.Equal(t, "eia/reliability/built", Topic("eia", models.Reliability))
}

func TestPublish(t *testing.T) {
	client := &fakeClient{token: newToken(true, nil), connected: true}
	p := NewWithClient(client, "")

	finished := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	err := p.Publish(Summary{
		RunID:      "run-1",
		Dataset:    models.Sales,
		FirstYear:  2010,
		LastYear:   2024,
		Rows:       41234,
		Output:     "data/all_sales.xlsx",
		FinishedAt: finished,
	})
	require.NoError(t, err)

	require.Len(t, client.messages, 1)
	msg := client.messages[0]
	assert.Equal(t, "gridsales/sales/built", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, "sales", got["dataset"])
	assert.Equal(t, float64(41234), got["rows"])
	assert.Equal(t, "2026-10-01T08:30:00Z", got["finished_at"])
}

func TestPublishErrors(t *testing.T) {
	brokerErr := errors.New("not authorized")

	p := NewWithClient(&fakeClient{token: newToken(true, brokerErr)}, "gridsales")
	err := p.Publish(Summary{Dataset: models.Reliability})
	require.Error(t, err)
	assert.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), "gridsales/reliability/built")

	p = NewWithClient(&fakeClient{token: newToken(false, nil)}, "gridsales")
	err = p.Publish(Summary{Dataset: models.Sales})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClose(t *testing.T) {
	client := &fakeClient{connected: true}
	NewWithClient(client, "gridsales").Close()
	assert.True(t, client.disconnected)

	idle := &fakeClient{}
	NewWithClient(idle, "gridsales").Close()
	assert.False(t, idle.disconnected)
}

func TestNewRequiresBroker(t *testing.T) {
	_, err := New(config.MQTTConfig{Enabled: true}, "gridsales-test")
	assert.Error(t, err)
}
