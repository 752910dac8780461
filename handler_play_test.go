package rtspgateway

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/description"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

func TestHandlePlayRejectsMissingRangeWhenRequired(t *testing.T) {
	srv := newTestServer()
	srv.Config.RequireRangeHeader = true
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	connSess := NewSession(&fakeFrameResponder{}, &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 1}, 60)
	srv.Sessions.Add(connSess)

	req := mustRequest(t, base.Play, "rtsp://host/live/cam1/", base.Header{"CSeq": base.HeaderValue{"1"}})
	res, err := srv.handlePlay(connSess, req)
	require.Error(t, err)
	require.Equal(t, base.StatusBadRequest, res.StatusCode)
}

func TestHandlePlayRejectsUnreadySource(t *testing.T) {
	srv := newTestServer()
	src := NewSource("cam1", nil, nullPuller{})
	require.NoError(t, srv.Sources.Add(src))

	connSess := NewSession(&fakeFrameResponder{}, &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 1}, 60)
	srv.Sessions.Add(connSess)

	req := mustRequest(t, base.Play, "rtsp://host/live/cam1/", base.Header{"CSeq": base.HeaderValue{"1"}})
	res, err := srv.handlePlay(connSess, req)
	require.Error(t, err)
	require.Equal(t, base.StatusPreconditionFailed, res.StatusCode)
}

func TestHandlePlayBuildsRTPInfoAndStartsReports(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	connSess := NewSession(&fakeFrameResponder{}, &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 1}, 60)
	srv.Sessions.Add(connSess)

	media := &description.Media{Control: "trackID=0"}
	clientCtx := &rtpmedia.TransportContext{Media: media, LastSeq: 55, LastRTPTime: 9000}
	connSess.AddTrack(clientCtx, clientCtx)

	mc := &fakeMediaClient{}
	connSess.SetMediaClient(mc)

	req := mustRequest(t, base.Play, "rtsp://host/live/cam1/", base.Header{
		"CSeq":  base.HeaderValue{"1"},
		"Range": base.HeaderValue{"npt=5-10"},
	})
	res, err := srv.handlePlay(connSess, req)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
	require.Contains(t, res.Header, "RTP-Info")
	require.Contains(t, res.Header, "Range")
	require.Equal(t, SessionStatePlaying, connSess.State())
}

func TestTrackURLUsesAbsoluteControl(t *testing.T) {
	req := reqWithPath("rtsp://host/live/cam1/")
	ctx := &rtpmedia.TransportContext{Media: &description.Media{Control: "rtsp://other/track1"}}
	require.Equal(t, "rtsp://other/track1", trackURL(req, ctx))
}

func TestTrackURLAppendsRelativeControl(t *testing.T) {
	req := reqWithPath("rtsp://host/live/cam1/")
	ctx := &rtpmedia.TransportContext{Media: &description.Media{Control: "trackID=0"}}
	require.Equal(t, "rtsp://host/live/cam1/trackID=0", trackURL(req, ctx))
}
