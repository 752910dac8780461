package rtspgateway

import (
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/description"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

// fakeFrameResponder is a Responder that also implements FrameWriter, the
// minimum a control connection needs to accept an interleaved SETUP.
type fakeFrameResponder struct {
	responses []*base.Response
	frames    [][]byte
}

func (r *fakeFrameResponder) WriteResponse(res *base.Response) error {
	r.responses = append(r.responses, res)
	return nil
}

func (r *fakeFrameResponder) WriteInterleavedFrame(_ int, payload []byte) error {
	r.frames = append(r.frames, payload)
	return nil
}

func newReadySource(t *testing.T, name string) *Source {
	src := NewSource(name, nil, nullPuller{})
	require.NoError(t, src.Start())

	media := &description.Media{Control: "trackID=0"}
	ctx := &rtpmedia.TransportContext{Media: media, RTCPEnabled: true}
	src.SetDescription(&description.Session{Medias: []*description.Media{media}}, []*rtpmedia.TransportContext{ctx})
	return src
}

func mustRequest(t *testing.T, method base.Method, rawURL string, header base.Header) *base.Request {
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	bu := base.URL(*u)
	return &base.Request{
		Method:  method,
		URL:     &bu,
		Version: base.Version10,
		Header:  header,
	}
}

func TestScenarioHappyPathSetupAndPlay(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	remote := &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 51000}
	responder := &fakeFrameResponder{}
	connSess := NewSession(responder, remote, 60)
	srv.Sessions.Add(connSess)

	setupReq := mustRequest(t, base.Setup, "rtsp://host/live/cam1/trackID=0", base.Header{
		"CSeq":      base.HeaderValue{"1"},
		"Transport": base.HeaderValue{"RTP/AVP/TCP;unicast;interleaved=0-1"},
	})
	res := srv.handleRequest(connSess, setupReq)
	require.Equal(t, base.StatusOK, res.StatusCode)
	require.Contains(t, res.Header, "Session")
	require.Contains(t, res.Header, "Transport")

	token := res.Header["Session"][0]

	playReq := mustRequest(t, base.Play, "rtsp://host/live/cam1/", base.Header{
		"CSeq":    base.HeaderValue{"2"},
		"Session": base.HeaderValue{token},
	})
	res = srv.handleRequest(connSess, playReq)
	require.Equal(t, base.StatusOK, res.StatusCode)
	require.Equal(t, SessionStatePlaying, connSess.State())
}

func TestScenarioForceTCPRejectsUDPSetup(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	src.ForceTCP = true
	require.NoError(t, srv.Sources.Add(src))

	remote := &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 51000}
	connSess := NewSession(&fakeFrameResponder{}, remote, 60)
	srv.Sessions.Add(connSess)

	setupReq := mustRequest(t, base.Setup, "rtsp://host/live/cam1/trackID=0", base.Header{
		"CSeq":      base.HeaderValue{"1"},
		"Transport": base.HeaderValue{"RTP/AVP;unicast;client_port=4000-4001"},
	})
	res := srv.handleRequest(connSess, setupReq)
	require.Equal(t, base.StatusUnsupportedTransport, res.StatusCode)
}

func TestScenarioAuthChallengeThenAccept(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	src.AuthScheme = AuthSchemeBasic
	src.Credential = &Credential{User: "admin", Pass: "secret"}
	require.NoError(t, srv.Sources.Add(src))

	remote := &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 51000}
	connSess := NewSession(&fakeFrameResponder{}, remote, 60)
	srv.Sessions.Add(connSess)

	descReq := mustRequest(t, base.Describe, "rtsp://host/live/cam1/", base.Header{
		"CSeq":   base.HeaderValue{"1"},
		"Accept": base.HeaderValue{"application/sdp"},
	})
	res := srv.handleRequest(connSess, descReq)
	require.Equal(t, base.StatusUnauthorized, res.StatusCode)
	require.Contains(t, res.Header, "WWW-Authenticate")

	descReq2 := mustRequest(t, base.Describe, "rtsp://host/live/cam1/", base.Header{
		"CSeq":          base.HeaderValue{"2"},
		"Accept":        base.HeaderValue{"application/sdp"},
		"Authorization": base.HeaderValue{"Basic YWRtaW46c2VjcmV0"},
	})
	res = srv.handleRequest(connSess, descReq2)
	require.Equal(t, base.StatusOK, res.StatusCode)
}

func TestScenarioHijackRejectsCrossHostSessionReuse(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	owner := &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 51000}
	ownerSess := NewSession(&fakeFrameResponder{}, owner, 60)
	srv.Sessions.Add(ownerSess)
	tok := ownerSess.MintTokenIfNeeded()
	srv.Sessions.IndexToken(ownerSess)

	attacker := &net.TCPAddr{IP: net.ParseIP("198.51.100.7"), Port: 6000}
	attackerConn := NewSession(&fakeFrameResponder{}, attacker, 60)
	srv.Sessions.Add(attackerConn)

	req := mustRequest(t, base.Pause, "rtsp://host/live/cam1/", base.Header{
		"CSeq":    base.HeaderValue{"1"},
		"Session": base.HeaderValue{tok},
	})
	res := srv.handleRequest(attackerConn, req)
	require.Equal(t, base.StatusUnauthorized, res.StatusCode)
}

func TestScenarioDuplicateCSeqIsDropped(t *testing.T) {
	srv := newTestServer()
	src := newReadySource(t, "cam1")
	require.NoError(t, srv.Sources.Add(src))

	remote := &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 51000}
	connSess := NewSession(&fakeFrameResponder{}, remote, 60)
	srv.Sessions.Add(connSess)

	req := mustRequest(t, base.Options, "rtsp://host/live/cam1/", base.Header{
		"CSeq": base.HeaderValue{"7"},
	})
	res := srv.handleRequest(connSess, req)
	require.Equal(t, base.StatusOK, res.StatusCode)

	res = srv.handleRequest(connSess, req)
	require.Nil(t, res)
}
