package rtspgateway

import (
	"path"
	"strings"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/description"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
)

func (srv *Server) handleTeardown(sess *Session, req *base.Request) (*base.Response, error) {
	src, err := srv.resolveSource(req)
	if err != nil {
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if err := authenticate(src, req); err != nil {
		return srv.authResponse(src, err)
	}

	var media *description.Media
	seg := path.Base(req.URL.Path)
	for _, ctx := range sess.ClientContexts() {
		if ctx.Media != nil && (ctx.Media.Control == seg || strings.Contains(ctx.Media.Control, seg)) {
			media = ctx.Media
			break
		}
	}

	remaining := -1
	if media != nil {
		_, remaining = sess.RemoveTrack(media)
	}

	if media == nil || remaining == 0 {
		sess.Close()
		srv.Sessions.Remove(sess)
	}

	return &base.Response{StatusCode: base.StatusOK}, nil
}
