package thetactl_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

type websocketData struct {
	messageType int
	data        []byte
}

// mockServer is an HTTP server whose only job is to receive websocket
// upgrade requests and hand the resulting connections to tests.
type mockServer struct {
	WebsocketURL     string
	ConnectedSockets chan *websocket.Conn
	srv              *httptest.Server
}

func (m *mockServer) Start(t *testing.T) {
	m.ConnectedSockets = make(chan *websocket.Conn, 1)

	upgrader := websocket.Upgrader{}

	m.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			assert.FailNow(t, "failed to upgrade websocket connection")
		}

		m.ConnectedSockets <- conn
	}))

	url, _ := url.Parse(m.srv.URL)
	url.Scheme = "ws"
	m.WebsocketURL = url.String()
}

func (m *mockServer) Close() {
	close(m.ConnectedSockets)
	m.srv.Close()
}

// testClient is a websocket client that records everything it receives,
// pings included.
type testClient struct {
	*websocket.Conn
	out chan websocketData
}

func (c *testClient) Connect(url string) {
	var err error

	c.out = make(chan websocketData, 1)

	if c.Conn, _, err = websocket.DefaultDialer.Dial(url, nil); err != nil {
		panic(err)
	}

	c.SetPingHandler(func(appData string) error {
		c.out <- websocketData{websocket.PingMessage, []byte(appData)}
		return nil
	})

	go func() {
		for {
			tt, mess, err := c.ReadMessage()
			if err != nil {
				close(c.out)
				return
			}
			c.out <- websocketData{tt, mess}
		}
	}()
}

// WaitReceive waits for a message of the given type whose payload matches
// dataRegex. An empty dataRegex matches anything.
func (c *testClient) WaitReceive(expectedType int, dataRegex string) error {
	const timeout = time.Millisecond * 400

	if dataRegex == "" {
		dataRegex = ".*"
	}

	rxp := regexp.MustCompile(dataRegex)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return fmt.Errorf("timeout waiting for match for '%s'", dataRegex)
		case actual := <-c.out:
			if actual.messageType == expectedType && rxp.Match(actual.data) {
				return nil
			}
		}
	}
}
