package rtspgateway

import (
	"errors"
	"net"
	"strings"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/headers"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
)

var errMissingCSeq = errors.New("CSeq header missing or duplicated")

// sameHost reports whether two addresses share an IP, ignoring port. A
// Session's stored endpoint is only ever compared at this granularity: a
// legitimate UDP-to-TCP transport switch opens a new connection (and thus
// a new port) from the same client, while an off-path hijack attempt
// typically comes from a different host entirely.
func sameHost(a, b net.Addr) bool {
	if a == nil || b == nil {
		return false
	}

	ha, _, err1 := net.SplitHostPort(a.String())
	hb, _, err2 := net.SplitHostPort(b.String())
	if err1 != nil {
		ha = a.String()
	}
	if err2 != nil {
		hb = b.String()
	}
	return ha == hb
}

// errorResponse builds a bare response for a status code reached before a
// Session could be resolved or a handler invoked.
func (srv *Server) errorResponse(code base.StatusCode, cseq string) *base.Response {
	res := &base.Response{StatusCode: code, Header: base.Header{}}
	if cseq != "" {
		res.Header["CSeq"] = base.HeaderValue{cseq}
	}
	return res
}

// finalizeResponse injects the Server and CSeq headers required on every
// response, without overriding a value a handler has already set.
func (srv *Server) finalizeResponse(res *base.Response, cseq string) {
	if res.Header == nil {
		res.Header = base.Header{}
	}
	if _, ok := res.Header["CSeq"]; !ok {
		res.Header["CSeq"] = base.HeaderValue{cseq}
	}
	if _, ok := res.Header["Server"]; !ok {
		res.Header["Server"] = base.HeaderValue{srv.Config.ServerName}
	}
}

// handleRequest is the single entry point every transport (TCP, UDP, HTTP
// tunnel) funnels requests through. connSess is the Session owned by the
// transport the request physically arrived on; the logical Session acted
// upon may differ when a Session header names a session that switched
// transports. handleRequest returns nil when the request must be silently
// dropped (a duplicate CSeq retransmission).
func (srv *Server) handleRequest(connSess *Session, req *base.Request) *base.Response {
	remote := connSess.RemoteAddr()
	srv.Logger.logRequest(remote, req)

	cseqVals := req.Header["CSeq"]
	if len(cseqVals) != 1 {
		res := srv.errorResponse(base.StatusBadRequest, "")
		srv.finalizeResponse(res, "")
		srv.Logger.logResponse(remote, res, liberrors.ErrMalformedRequest{Err: errMissingCSeq})
		return res
	}
	cseq := cseqVals[0]

	sess := connSess
	if sh, ok := req.Header["Session"]; ok && len(sh) > 0 {
		var sv headers.Session
		if err := sv.Read(sh); err != nil {
			res := srv.errorResponse(base.StatusBadRequest, cseq)
			srv.finalizeResponse(res, cseq)
			return res
		}

		found, ok := srv.Sessions.FindByToken(strings.TrimSpace(sv.Session))
		if !ok {
			res := srv.errorResponse(base.StatusSessionNotFound, cseq)
			srv.finalizeResponse(res, cseq)
			return res
		}

		if !sameHost(found.RemoteAddr(), remote) {
			res := srv.errorResponse(base.StatusUnauthorized, cseq)
			srv.finalizeResponse(res, cseq)
			return res
		}

		sess = found
	}

	if sess.IsDuplicateRequest(cseq) {
		return nil
	}

	if req.Version.GreaterThan(base.Version10) {
		res := srv.errorResponse(base.StatusRTSPVersionNotSupported, cseq)
		srv.finalizeResponse(res, cseq)
		sess.MarkServiced(cseq)
		return res
	}

	if srv.Config.RequireUserAgent && len(req.Header["User-Agent"]) == 0 {
		res := srv.errorResponse(base.StatusBadRequest, cseq)
		srv.finalizeResponse(res, cseq)
		sess.MarkServiced(cseq)
		return res
	}

	sess.Touch()

	res, err := srv.dispatchMethod(sess, req, connSess, remote)
	if res == nil {
		res = &base.Response{StatusCode: liberrors.StatusCode(err)}
	}

	srv.finalizeResponse(res, cseq)
	sess.MarkServiced(cseq)
	srv.Logger.logResponse(remote, res, err)
	return res
}

func (srv *Server) dispatchMethod(sess *Session, req *base.Request, connSess *Session, remote net.Addr) (*base.Response, error) {
	switch req.Method {
	case base.Options:
		return srv.handleOptions(sess, req)

	case base.Describe:
		return srv.handleDescribe(sess, req)

	case base.Setup:
		return srv.handleSetup(sess, req, connSess, remote)

	case base.Play:
		return srv.handlePlay(sess, req)

	case base.Pause:
		return srv.handlePause(sess, req)

	case base.Teardown:
		return srv.handleTeardown(sess, req)

	case base.GetParameter:
		return srv.handleGetParameter(sess, req)

	case base.SetParameter:
		return srv.handleSetParameter(sess, req)

	default:
		err := liberrors.ErrMethodNotAllowed{Method: req.Method}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}
}
