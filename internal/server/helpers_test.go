package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func startTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.Seed == nil {
		seed := int64(42)
		opts.Seed = &seed
	}
	srv := NewServer(opts, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Stop)
	return srv, ts
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &testClient{t: t, conn: conn}
	welcome := decode[WelcomeData](t, c.expect(MessageTypeWelcome))
	require.NotEmpty(t, welcome.ClientID)
	c.id = welcome.ClientID
	return c
}

func (c *testClient) send(msgType MessageType, data any) {
	c.t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) next() Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

// expect skips messages until one of the given type arrives
func (c *testClient) expect(msgType MessageType) Message {
	c.t.Helper()
	for i := 0; i < 50; i++ {
		if msg := c.next(); msg.Type == msgType {
			return msg
		}
	}
	c.t.Fatalf("no %s message received", msgType)
	return Message{}
}

func (c *testClient) expectError(code string) ErrorData {
	c.t.Helper()
	data := decode[ErrorData](c.t, c.expect(MessageTypeError))
	require.Equal(c.t, code, data.Code, data.Message)
	return data
}

func decode[T any](t *testing.T, msg Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}
