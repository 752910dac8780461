package rtspgateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtspgateway/rtspgateway/pkg/base"
)

func TestHandleGetParameterReturnsOK(t *testing.T) {
	srv := newTestServer()
	res, err := srv.handleGetParameter(nil, &base.Request{})
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
}

func TestHandleSetParameterReturnsOK(t *testing.T) {
	srv := newTestServer()
	res, err := srv.handleSetParameter(nil, &base.Request{})
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
}

func TestHandlePauseTransitionsState(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	connSess := NewSession(&fakeFrameResponder{}, nil, 60)
	connSess.BindSource(src)
	connSess.Play()

	req := mustRequest(t, base.Pause, "rtsp://host/live/cam1/", base.Header{"CSeq": base.HeaderValue{"1"}})
	res, err := srv.handlePause(connSess, req)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
	require.Equal(t, SessionStatePaused, connSess.State())
}
