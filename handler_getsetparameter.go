package rtspgateway

import (
	"github.com/rtspgateway/rtspgateway/pkg/base"
)

// handleGetParameter responds 200 with no body. It carries no distinct
// keep-alive logic of its own: every request already refreshes
// lastActivity in the central dispatcher, and GET_PARAMETER with no body
// is simply the method clients conventionally use to exercise that path.
func (srv *Server) handleGetParameter(sess *Session, req *base.Request) (*base.Response, error) {
	return &base.Response{StatusCode: base.StatusOK}, nil
}

func (srv *Server) handleSetParameter(sess *Session, req *base.Request) (*base.Response, error) {
	return &base.Response{StatusCode: base.StatusOK}, nil
}
