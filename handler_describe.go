package rtspgateway

import (
	"fmt"
	"net"
	"strings"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
)

func (srv *Server) handleDescribe(sess *Session, req *base.Request) (*base.Response, error) {
	src, err := srv.resolveSource(req)
	if err != nil {
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if accept := req.Header["Accept"]; len(accept) != 1 || strings.TrimSpace(accept[0]) != "application/sdp" {
		err := liberrors.ErrMalformedRequest{Err: fmt.Errorf("Accept header must be application/sdp")}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if err := authenticate(src, req); err != nil {
		return srv.authResponse(src, err)
	}

	if !src.Ready() {
		err := liberrors.ErrMethodNotAllowed{Method: req.Method}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	desc := src.Description()

	contentBase := req.URL.String()
	if strings.Contains(req.URL.Path, "/live/") {
		host := req.URL.Hostname()
		if sess.LocalAddr() != nil {
			if h, _, splitErr := net.SplitHostPort(sess.LocalAddr().String()); splitErr == nil {
				host = h
			}
		}
		contentBase = fmt.Sprintf("rtsp://%s/live/%s/", host, src.ID.String())
	}

	body, err := desc.Marshal(false)
	if err != nil {
		return &base.Response{StatusCode: base.StatusInternalServerError}, err
	}

	return &base.Response{
		StatusCode: base.StatusOK,
		Header: base.Header{
			"Content-Base": base.HeaderValue{contentBase},
			"Content-Type": base.HeaderValue{"application/sdp"},
		},
		Body: body,
	}, nil
}

// authResponse turns an authentication error into the 401/403 response it
// maps to, attaching a WWW-Authenticate challenge on 401.
func (srv *Server) authResponse(src *Source, err error) (*base.Response, error) {
	res := &base.Response{StatusCode: liberrors.StatusCode(err)}

	if _, ok := err.(liberrors.ErrUnauthorized); ok {
		res.Header = base.Header{"WWW-Authenticate": challengeHeader(src)}
	}

	return res, err
}
