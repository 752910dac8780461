package rtspgateway

import (
	"net"
	"time"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/conn"
)

// tcpResponder writes responses back over an accepted control connection.
type tcpResponder struct {
	nconn net.Conn
	c     *conn.Conn
}

// WriteResponse implements Responder.
func (r *tcpResponder) WriteResponse(res *base.Response) error {
	return r.c.WriteResponse(res)
}

// serveTCPConn owns one accepted TCP connection end to end: it creates a
// Session, then loops reading a request, dispatching it synchronously, and
// writing the response, re-arming for the next request on the same
// connection (pipelining) until the peer disconnects or the Session is
// torn down.
func (srv *Server) serveTCPConn(nconn net.Conn) {
	defer srv.wg.Done()
	defer nconn.Close()

	responder := &tcpResponder{nconn: nconn, c: conn.NewConn(nconn)}
	sess := NewSession(responder, nconn.RemoteAddr(), srv.Config.ClientInactivityTimeoutSeconds)
	sess.SetLocalAddr(nconn.LocalAddr())
	srv.Sessions.Add(sess)
	defer func() {
		sess.Close()
		srv.Sessions.Remove(sess)
	}()

	readTimeout := time.Duration(srv.Config.ReceiveTimeoutMs) * time.Millisecond

	for {
		if sess.State() == SessionStateClosed {
			return
		}

		nconn.SetReadDeadline(time.Now().Add(readTimeout))

		req, err := responder.c.ReadRequestIgnoreFrames()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}

		res := srv.handleRequest(sess, req)
		if res == nil {
			continue
		}

		nconn.SetWriteDeadline(time.Now().Add(time.Duration(srv.Config.SendTimeoutMs) * time.Millisecond))

		if err := responder.WriteResponse(res); err != nil {
			return
		}
	}
}
