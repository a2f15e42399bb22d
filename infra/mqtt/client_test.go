package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosched/hydrosched/infra/logger"
)

type mockToken struct {
	err error
}

func (t *mockToken) Wait() bool                       { return true }
func (t *mockToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *mockToken) Error() error                     { return t.err }
func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type mockClient struct {
	disconnected bool
	published    [][]byte
	publishErrs  int
	callback     paho.MessageHandler
}

func (m *mockClient) IsConnected() bool       { return true }
func (m *mockClient) Connect() paho.Token     { return &mockToken{} }
func (m *mockClient) Disconnect(quiesce uint) { m.disconnected = true }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	if m.publishErrs > 0 {
		m.publishErrs--
		return &mockToken{err: errors.New("publish failed")}
	}
	m.published = append(m.published, payload.([]byte))
	return &mockToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	m.callback = callback
	return &mockToken{}
}

type mockMessage struct {
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 0 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return "hydrosched/solve/request" }
func (m *mockMessage) MessageID() uint16 { return 1 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}

func newTestClient(mc *mockClient) *PahoClient {
	cfg := Config{}
	cfg.SetDefaults()
	return &PahoClient{
		cli:        mc,
		cfg:        cfg,
		logger:     logger.NopLogger{},
		maxRetries: 2,
		backoff:    time.Millisecond,
	}
}

func TestClose_DisconnectsClient(t *testing.T) {
	mc := &mockClient{}
	client := newTestClient(mc)
	client.Close()
	assert.True(t, mc.disconnected)
}

func TestSubscribeRequests_DecodesPayload(t *testing.T) {
	mc := &mockClient{}
	client := newTestClient(mc)

	var got SolveRequest
	require.NoError(t, client.SubscribeRequests(func(req SolveRequest) { got = req }))
	require.NotNil(t, mc.callback)

	mc.callback(nil, &mockMessage{payload: []byte(`{"request_id":"r1","scenario":{"horizon":2,"inflow":[10],"price":[10],"storage_max":[100],"flow_max":[5],"period_flow_max":8,"head":0.85}}`)})
	assert.Equal(t, "r1", got.RequestID)
	assert.Equal(t, 2, got.Scenario.Horizon)
	assert.Equal(t, []float64{10}, got.Scenario.Inflow)
}

func TestSubscribeRequests_DropsMalformedPayload(t *testing.T) {
	mc := &mockClient{}
	client := newTestClient(mc)

	called := false
	require.NoError(t, client.SubscribeRequests(func(SolveRequest) { called = true }))
	mc.callback(nil, &mockMessage{payload: []byte("not json")})
	assert.False(t, called)
}

func TestPublishResult_RetriesOnFailure(t *testing.T) {
	mc := &mockClient{publishErrs: 1}
	client := newTestClient(mc)

	err := client.PublishResult(SolveResponse{RequestID: "r1", Converged: true})
	require.NoError(t, err)
	require.Len(t, mc.published, 1)
	assert.Contains(t, string(mc.published[0]), `"request_id":"r1"`)
}

func TestPublishResult_ExhaustsRetries(t *testing.T) {
	mc := &mockClient{publishErrs: 10}
	client := newTestClient(mc)

	err := client.PublishResult(SolveResponse{RequestID: "r2"})
	require.Error(t, err)
	assert.Empty(t, mc.published)
}
