package rtspgateway

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountTCPSessionsIgnoresClosed(t *testing.T) {
	srv := newTestServer()

	open := NewSession(fakeResponder{}, &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1}, 60)
	closed := NewSession(fakeResponder{}, &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 2}, 60)
	closed.Close()

	srv.Sessions.Add(open)
	srv.Sessions.Add(closed)

	require.Equal(t, 1, srv.countTCPSessions())
}

func TestCountTCPSessionsEmpty(t *testing.T) {
	srv := newTestServer()
	require.Equal(t, 0, srv.countTCPSessions())
}
