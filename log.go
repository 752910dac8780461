package rtspgateway

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/rtspgateway/rtspgateway/pkg/base"
)

// Logger is the logging collaborator consumed by the control plane. A nil
// Logger is valid everywhere it is accepted; callers must guard with
// logNilSafe-style nil checks before invoking it, or embed noopLogger.
type Logger interface {
	logRequest(remote net.Addr, req *base.Request)
	logResponse(remote net.Addr, res *base.Response, err error)
	logException(remote net.Addr, err error)
}

// ZerologLogger adapts a zerolog.Logger to the Logger collaborator.
type ZerologLogger struct {
	Base zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(base zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{Base: base}
}

func (l *ZerologLogger) logRequest(remote net.Addr, req *base.Request) {
	l.Base.Debug().
		Str("remote", remote.String()).
		Str("method", string(req.Method)).
		Str("url", req.URL.String()).
		Str("cseq", firstHeader(req.Header, "CSeq")).
		Msg("request")
}

func (l *ZerologLogger) logResponse(remote net.Addr, res *base.Response, err error) {
	ev := l.Base.Debug()
	if err != nil {
		ev = l.Base.Warn().Err(err)
	}
	ev.
		Str("remote", remote.String()).
		Int("status", int(res.StatusCode)).
		Msg("response")
}

func (l *ZerologLogger) logException(remote net.Addr, err error) {
	l.Base.Error().
		Str("remote", remote.String()).
		Err(err).
		Msg("exception")
}

func firstHeader(h base.Header, key string) string {
	if v, ok := h[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// noopLogger discards everything; used when a Server is built with no
// Logger configured.
type noopLogger struct{}

func (noopLogger) logRequest(net.Addr, *base.Request)          {}
func (noopLogger) logResponse(net.Addr, *base.Response, error) {}
func (noopLogger) logException(net.Addr, error)                {}
