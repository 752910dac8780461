package rtspgateway

import (
	"fmt"
	"strings"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/headers"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

var errRangeRequired = fmt.Errorf("Range header is required")

func (srv *Server) handlePlay(sess *Session, req *base.Request) (*base.Response, error) {
	src, err := srv.resolveSource(req)
	if err != nil {
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	if err := authenticate(src, req); err != nil {
		return srv.authResponse(src, err)
	}

	if !src.Ready() {
		err := liberrors.ErrPreconditionFailed{Reason: "source not ready"}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	rangeVal := req.Header["Range"]
	if srv.Config.RequireRangeHeader && len(rangeVal) == 0 {
		err := liberrors.ErrMalformedRequest{Err: errRangeRequired}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	rng, err := parseRange(rangeVal)
	if err != nil {
		err := liberrors.ErrMalformedRequest{Err: err}
		return &base.Response{StatusCode: liberrors.StatusCode(err)}, err
	}

	ctxs := sess.ClientContexts()
	rtpInfo := make(headers.RTPInfo, 0, len(ctxs))
	for _, ctx := range ctxs {
		seq := ctx.LastSeq
		rtptime := ctx.LastRTPTime
		rtpInfo = append(rtpInfo, &headers.RTPInfoEntry{
			URL:            trackURL(req, ctx),
			SequenceNumber: &seq,
			Timestamp:      &rtptime,
		})
	}

	sess.BindSource(src)
	sess.Play()

	if mc := sess.MediaClient(); mc != nil {
		mc.SendSendersReports()
	}

	header := base.Header{}
	if rng != nil {
		header["Range"] = writeRangeHeader(rng)
	}
	if len(rtpInfo) > 0 {
		header["RTP-Info"] = rtpInfo.Write()
	}

	return &base.Response{
		StatusCode: base.StatusOK,
		Header:     header,
	}, nil
}

// trackURL builds the per-track RTP-Info URL by resolving the media's
// control attribute against the request's own URL.
func trackURL(req *base.Request, ctx *rtpmedia.TransportContext) string {
	if ctx.Media == nil || ctx.Media.Control == "" {
		return req.URL.String()
	}

	if strings.HasPrefix(ctx.Media.Control, "rtsp://") || strings.HasPrefix(ctx.Media.Control, "rtsps://") {
		return ctx.Media.Control
	}

	baseURL := strings.TrimSuffix(req.URL.String(), "/")
	return baseURL + "/" + ctx.Media.Control
}
