package rtspgateway

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/description"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

func TestHandleTeardownRemovesSingleTrackWithoutClosing(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	connSess := NewSession(&fakeFrameResponder{}, &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 1}, 60)
	srv.Sessions.Add(connSess)

	track0 := &description.Media{Control: "trackID=0"}
	track1 := &description.Media{Control: "trackID=1"}
	connSess.AddTrack(&rtpmedia.TransportContext{Media: track0}, &rtpmedia.TransportContext{Media: track0})
	connSess.AddTrack(&rtpmedia.TransportContext{Media: track1}, &rtpmedia.TransportContext{Media: track1})

	req := mustRequest(t, base.Teardown, "rtsp://host/live/cam1/trackID=0", base.Header{"CSeq": base.HeaderValue{"1"}})
	res, err := srv.handleTeardown(connSess, req)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)

	require.Len(t, connSess.ClientContexts(), 1)
	require.NotEqual(t, SessionStateClosed, connSess.State())
	_, ok := srv.Sessions.FindByID(connSess.ID)
	require.True(t, ok)
}

func TestHandleTeardownClosesSessionOnLastTrack(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	connSess := NewSession(&fakeFrameResponder{}, &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 1}, 60)
	srv.Sessions.Add(connSess)

	track0 := &description.Media{Control: "trackID=0"}
	connSess.AddTrack(&rtpmedia.TransportContext{Media: track0}, &rtpmedia.TransportContext{Media: track0})

	req := mustRequest(t, base.Teardown, "rtsp://host/live/cam1/trackID=0", base.Header{"CSeq": base.HeaderValue{"1"}})
	res, err := srv.handleTeardown(connSess, req)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)

	require.Equal(t, SessionStateClosed, connSess.State())
	_, ok := srv.Sessions.FindByID(connSess.ID)
	require.False(t, ok)
}

func TestHandleTeardownWithNoResolvableTrackClosesWholeSession(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	connSess := NewSession(&fakeFrameResponder{}, &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 1}, 60)
	srv.Sessions.Add(connSess)

	track0 := &description.Media{Control: "trackID=0"}
	connSess.AddTrack(&rtpmedia.TransportContext{Media: track0}, &rtpmedia.TransportContext{Media: track0})

	req := mustRequest(t, base.Teardown, "rtsp://host/live/cam1/", base.Header{"CSeq": base.HeaderValue{"1"}})
	res, err := srv.handleTeardown(connSess, req)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
	require.Equal(t, SessionStateClosed, connSess.State())
}
