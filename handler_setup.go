package rtspgateway

import (
	"fmt"
	"net"
	"path"
	"strings"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/headers"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

// findTrack matches the final segment of a SETUP request URI against each
// media's control attribute, by equality or containment, and returns the
// source's transport context for that track.
func findTrack(req *base.Request, src *Source) (*rtpmedia.TransportContext, bool) {
	desc := src.Description()
	if desc == nil {
		return nil, false
	}

	seg := path.Base(req.URL.Path)
	contexts := src.TransportContexts()

	for i, media := range desc.Medias {
		if i >= len(contexts) {
			break
		}
		if media.Control == seg || strings.Contains(media.Control, seg) || strings.Contains(seg, media.Control) {
			return contexts[i], true
		}
	}

	return nil, false
}

func (srv *Server) handleSetup(sess *Session, req *base.Request, connSess *Session, remote net.Addr) (*base.Response, error) {
	src, err := srv.resolveSource(req)
	if err != nil {
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if !src.Ready() {
		err := liberrors.ErrPreconditionFailed{Reason: "source not ready"}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	sourceCtx, ok := findTrack(req, src)
	if !ok {
		err := liberrors.ErrNotFound{Path: req.URL.Path}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if err := authenticate(src, req); err != nil {
		return srv.authResponse(src, err)
	}

	var th headers.Transport
	if err := th.Read(req.Header["Transport"]); err != nil {
		err := liberrors.ErrMalformedRequest{Err: err}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if th.ClientPorts == nil && th.InterleavedIDs == nil {
		err := liberrors.ErrMalformedRequest{Err: fmt.Errorf("Transport header carries neither client_port nor interleaved")}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	var clientCtx *rtpmedia.TransportContext
	var respTH headers.Transport

	switch {
	case th.ClientPorts != nil && src.ForceTCP:
		err := liberrors.ErrUnsupportedTransport{Err: fmt.Errorf("source requires TCP delivery")}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err

	case th.ClientPorts != nil:
		clientCtx, respTH, err = srv.setupUDP(sess, remote, *th.ClientPorts, sourceCtx)
		if err != nil {
			err := liberrors.ErrUnsupportedTransport{Err: err}
			return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
		}

	default:
		clientCtx, respTH, err = setupTCP(sess, connSess, remote, *th.InterleavedIDs, sourceCtx)
		if err != nil {
			err := liberrors.ErrUnsupportedTransport{Err: err}
			return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
		}
	}

	clientCtx.Media = sourceCtx.Media
	clientCtx.Format = sourceCtx.Format
	clientCtx.LastNTPTime = sourceCtx.LastNTPTime
	clientCtx.LastRTPTime = sourceCtx.LastRTPTime
	clientCtx.LastSeq = sourceCtx.LastSeq

	sess.AddTrack(clientCtx, sourceCtx)
	sess.BindSource(src)
	sess.EnsureReady()

	token := sess.MintTokenIfNeeded()
	srv.Sessions.IndexToken(sess)

	respSession := headers.Session{Session: token}
	if t := sess.TimeoutSeconds(); t > 0 {
		uv := uint(t)
		respSession.Timeout = &uv
	}

	return &base.Response{
		StatusCode: base.StatusOK,
		Header: base.Header{
			"Session":   respSession.Write(),
			"Transport": respTH.Write(),
		},
	}, nil
}

// setupUDP allocates a UDP port pair and wires the client transport context
// to a pair of connected sockets addressed to the client's requested ports.
func (srv *Server) setupUDP(sess *Session, remote net.Addr, clientPorts [2]int, sourceCtx *rtpmedia.TransportContext) (*rtpmedia.TransportContext, headers.Transport, error) {
	ctx, th, err := buildUDPTransportContext(srv.udpPorts, clientPorts, sourceCtx.RTCPEnabled)
	if err != nil {
		return nil, headers.Transport{}, err
	}

	rtpCh, rtcpCh := sess.nextInterleavedChannels()
	ctx.ChannelRTP = rtpCh
	ctx.ChannelRTCP = rtcpCh

	if sess.LocalAddr() != nil {
		if h, _, splitErr := net.SplitHostPort(sess.LocalAddr().String()); splitErr == nil {
			if ip := net.ParseIP(h); ip != nil {
				th.Source = &ip
			}
		}
	}

	clientIP, _, splitErr := net.SplitHostPort(remote.String())
	if splitErr != nil {
		clientIP = remote.String()
	}
	ip := net.ParseIP(clientIP)

	rtpW, err := newUDPWriter(th.ServerPorts[0], ip, clientPorts[0])
	if err != nil {
		srv.udpPorts.release(th.ServerPorts[0])
		return nil, headers.Transport{}, err
	}

	rtcpW, err := newUDPWriter(th.ServerPorts[1], ip, clientPorts[1])
	if err != nil {
		rtpW.Close()
		srv.udpPorts.release(th.ServerPorts[0])
		return nil, headers.Transport{}, err
	}

	mc := sess.MediaClient()
	if mc == nil {
		mc = rtpmedia.NewClient(false)
		mc.WriteRTP = sess.rtpWriteFunc()
		mc.WriteRTCP = sess.rtcpWriteFunc()
		sess.SetMediaClient(mc)
	}

	sess.RegisterTrackIO(ctx, rtpW, rtcpW)
	mc.AddContext(ctx)

	return ctx, th, nil
}

// setupTCP attaches a client transport context delivered over the control
// connection, switching an existing UDP media client to TCP mode if needed.
func setupTCP(sess, connSess *Session, remote net.Addr, interleaved [2]int, sourceCtx *rtpmedia.TransportContext) (*rtpmedia.TransportContext, headers.Transport, error) {
	fw, ok := connSess.Responder().(FrameWriter)
	if !ok {
		return nil, headers.Transport{}, fmt.Errorf("control connection cannot carry interleaved frames")
	}

	mc := sess.MediaClient()
	switch {
	case mc == nil:
		mc = rtpmedia.NewClient(true)
		mc.WriteRTP = sess.rtpWriteFunc()
		mc.WriteRTCP = sess.rtcpWriteFunc()
		sess.SetMediaClient(mc)

	case !mc.IsTCP():
		mc.Disconnect()
		sess.ClearTracks()
		mc.SetTransportProtocol(true)
	}

	ctx, th := buildTCPTransportContext(interleaved, sourceCtx.RTCPEnabled)

	sess.RegisterTrackIO(ctx,
		frameChannelWriter{fw: fw, channel: ctx.ChannelRTP},
		frameChannelWriter{fw: fw, channel: ctx.ChannelRTCP})
	mc.AddContext(ctx)

	if sess != connSess {
		sess.RebindRemoteAddr(connSess.Responder(), remote)
	}

	return ctx, th, nil
}
