package publish

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/baetyl/baetyl-geoportal/v2/catalog"
	"github.com/baetyl/baetyl-geoportal/v2/client"
	"github.com/baetyl/baetyl-geoportal/v2/config"
	"github.com/baetyl/baetyl-geoportal/v2/resolver"
)

type mockClient struct {
	name     string
	sent     [][]byte
	started  bool
	closed   bool
	startErr error
	sendErr  error
}

func (m *mockClient) SendOrDrop(data []byte) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, data)
	return nil
}

func (m *mockClient) Start() error {
	m.started = true
	return m.startErr
}

func (m *mockClient) Close() error {
	m.closed = true
	return nil
}

func mockFactory(clients map[string]*mockClient) Factory {
	return func(info config.TargetInfo) (client.Client, error) {
		if info.Kind == "broken" {
			return nil, errors.New("broken target")
		}
		m := &mockClient{name: info.Name}
		clients[info.Name] = m
		return m, nil
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	c, err := catalog.Build(resolver.New(false, resolver.NoHost()), []string{"k1"})
	require.NoError(t, err)
	return c
}

func TestPublisher(t *testing.T) {
	clients := map[string]*mockClient{}
	p, err := NewPublisher([]config.TargetInfo{
		{Name: "broker", Kind: config.KindMqtt},
		{Name: "archive", Kind: config.KindS3},
	}, mockFactory(clients))
	require.NoError(t, err)
	assert.Equal(t, []string{"broker", "archive"}, p.Targets())
	assert.True(t, clients["broker"].started)
	assert.True(t, clients["archive"].started)

	c := testCatalog(t)
	assert.NoError(t, p.Publish(c))
	for _, name := range []string{"broker", "archive"} {
		require.Len(t, clients[name].sent, 1)
		var out map[string]interface{}
		assert.NoError(t, json.Unmarshal(clients[name].sent[0], &out))
		assert.Equal(t, "wxs.ign.fr", out["hostname"])
	}

	p.Close()
	assert.True(t, clients["broker"].closed)
	assert.True(t, clients["archive"].closed)
}

func TestPublisherPartialFailure(t *testing.T) {
	clients := map[string]*mockClient{}
	p, err := NewPublisher([]config.TargetInfo{
		{Name: "t1", Kind: config.KindHTTP},
		{Name: "t2", Kind: config.KindHTTP},
		{Name: "t3", Kind: config.KindHTTP},
	}, mockFactory(clients))
	require.NoError(t, err)
	defer p.Close()
	clients["t1"].sendErr = errors.New("queue closed")
	clients["t3"].sendErr = errors.New("queue closed")

	err = p.Publish(testCatalog(t))
	assert.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "t1")
	assert.Contains(t, err.Error(), "t3")
	assert.Len(t, clients["t2"].sent, 1)
}

func TestPublisherErrors(t *testing.T) {
	clients := map[string]*mockClient{}
	_, err := NewPublisher([]config.TargetInfo{
		{Name: "t1", Kind: config.KindHTTP},
		{Name: "t1", Kind: config.KindMqtt},
	}, mockFactory(clients))
	assert.Error(t, err)
	assert.True(t, clients["t1"].closed)

	clients = map[string]*mockClient{}
	_, err = NewPublisher([]config.TargetInfo{
		{Name: "t1", Kind: config.KindHTTP},
		{Name: "t2", Kind: "broken"},
	}, mockFactory(clients))
	assert.Error(t, err)
	assert.True(t, clients["t1"].closed)

	_, err = NewPublisher([]config.TargetInfo{{Name: "t1", Kind: "ftp"}}, nil)
	assert.Error(t, err)
}

func TestPublisherNoTargets(t *testing.T) {
	p, err := NewPublisher(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Targets())
	assert.NoError(t, p.Publish(testCatalog(t)))
	p.Close()
}
