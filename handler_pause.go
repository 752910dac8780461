package rtspgateway

import (
	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
)

func (srv *Server) handlePause(sess *Session, req *base.Request) (*base.Response, error) {
	src, err := srv.resolveSource(req)
	if err != nil {
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if err := authenticate(src, req); err != nil {
		return srv.authResponse(src, err)
	}

	sess.Pause()

	return &base.Response{StatusCode: base.StatusOK}, nil
}
