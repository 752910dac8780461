package rtspgateway

import (
	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
)

// resolveSource maps a request URL to a registered Source, or returns the
// typed not-found error the caller should propagate.
func (srv *Server) resolveSource(req *base.Request) (*Source, error) {
	src := srv.Sources.Resolve(req.URL.Path)
	if src == nil {
		return nil, liberrors.ErrNotFound{Path: req.URL.Path}
	}
	return src, nil
}

func (srv *Server) handleOptions(sess *Session, req *base.Request) (*base.Response, error) {
	_, err := srv.resolveSource(req)
	if err != nil {
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	return &base.Response{
		StatusCode: base.StatusOK,
		Header: base.Header{
			"Public": base.HeaderValue{
				"DESCRIBE, SETUP, PLAY, PAUSE, TEARDOWN, GET_PARAMETER",
			},
		},
	}, nil
}
