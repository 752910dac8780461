package rtspgateway

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rtspgateway/rtspgateway/pkg/base64stream"
)

func isHTTPTunnelRequest(req *http.Request) bool {
	return ((req.Method == http.MethodGet && req.Header.Get("Accept") == "application/x-rtsp-tunnelled") ||
		(req.Method == http.MethodPost && req.Header.Get("Content-Type") == "application/x-rtsp-tunnelled")) &&
		req.Header.Get("X-Sessioncookie") != ""
}

func isWebSocketTunnelRequest(req *http.Request) bool {
	return req.Method == http.MethodGet &&
		req.Header.Get("Connection") == "Upgrade" &&
		req.Header.Get("Upgrade") == "websocket" &&
		req.Header.Get("Sec-WebSocket-Protocol") == "rtsp.onvif.org"
}

var tunnelUpgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// httpTunnelConn presents a paired GET/POST RTSP-over-HTTP tunnel as a
// single net.Conn: reads decode the POST channel's base64 body, writes
// base64-encode onto the GET channel, per the application/x-rtsp-tunnelled
// wire contract.
type httpTunnelConn struct {
	post  net.Conn
	postR io.Reader
	get   net.Conn
	getW  io.WriteCloser
}

func newHTTPTunnelConn(post net.Conn, postBR *bufio.Reader, get net.Conn) net.Conn {
	return &httpTunnelConn{
		post:  post,
		postR: base64stream.New(postBR),
		get:   get,
		getW:  base64stream.NewWriter(get),
	}
}

func (c *httpTunnelConn) Read(p []byte) (int, error)  { return c.postR.Read(p) }
func (c *httpTunnelConn) Write(p []byte) (int, error) { return c.getW.Write(p) }

func (c *httpTunnelConn) Close() error {
	c.getW.Close()
	c.post.Close()
	c.get.Close()
	return nil
}

func (c *httpTunnelConn) LocalAddr() net.Addr  { return c.post.LocalAddr() }
func (c *httpTunnelConn) RemoteAddr() net.Addr { return c.post.RemoteAddr() }

func (c *httpTunnelConn) SetDeadline(t time.Time) error {
	c.post.SetDeadline(t) //nolint:errcheck
	return c.get.SetDeadline(t)
}

func (c *httpTunnelConn) SetReadDeadline(t time.Time) error  { return c.post.SetReadDeadline(t) }
func (c *httpTunnelConn) SetWriteDeadline(t time.Time) error { return c.get.SetWriteDeadline(t) }

// wsTunnelConn adapts a WebSocket connection carrying binary RTSP frames
// into a net.Conn, so it can be driven by the same per-connection loop as
// a plain TCP or HTTP-tunnelled control connection.
type wsTunnelConn struct {
	wc      *websocket.Conn
	readBuf []byte
	wmu     sync.Mutex
}

func (c *wsTunnelConn) Read(p []byte) (int, error) {
	if len(c.readBuf) == 0 {
		msgType, data, err := c.wc.ReadMessage()
		if err != nil {
			return 0, err
		}
		if msgType != websocket.BinaryMessage {
			return 0, fmt.Errorf("unexpected websocket message type %v", msgType)
		}
		c.readBuf = data
	}
	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

func (c *wsTunnelConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.wc.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsTunnelConn) Close() error                       { return c.wc.Close() }
func (c *wsTunnelConn) LocalAddr() net.Addr                { return c.wc.LocalAddr() }
func (c *wsTunnelConn) RemoteAddr() net.Addr               { return c.wc.RemoteAddr() }
func (c *wsTunnelConn) SetDeadline(t time.Time) error {
	c.wc.SetReadDeadline(t)  //nolint:errcheck
	return c.wc.SetWriteDeadline(t)
}
func (c *wsTunnelConn) SetReadDeadline(t time.Time) error  { return c.wc.SetReadDeadline(t) }
func (c *wsTunnelConn) SetWriteDeadline(t time.Time) error { return c.wc.SetWriteDeadline(t) }

// tunnelHalf is one cookie's pending GET/POST pairing.
type tunnelHalf struct {
	get    net.Conn
	post   net.Conn
	postBR *bufio.Reader
	ready  chan struct{}
}

// httpTunnelListener accepts raw TCP connections on the HTTP-tunnel port
// and demultiplexes them into plain base64 HTTP tunnels or WebSocket
// tunnels.
type httpTunnelListener struct {
	ln net.Listener

	mu      sync.Mutex
	pending map[string]*tunnelHalf
}

func (srv *Server) startHTTPListener() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", srv.Config.EnableHTTP))
	if err != nil {
		return err
	}

	l := &httpTunnelListener{ln: ln, pending: make(map[string]*tunnelHalf)}

	srv.mu.Lock()
	srv.httpListener = l
	srv.mu.Unlock()

	srv.wg.Add(1)
	go srv.runHTTPListener(l)

	return nil
}

func (srv *Server) stopHTTPListener() {
	srv.mu.Lock()
	l := srv.httpListener
	srv.httpListener = nil
	srv.mu.Unlock()

	if l != nil {
		l.ln.Close()
	}
}

func (srv *Server) runHTTPListener(l *httpTunnelListener) {
	defer srv.wg.Done()

	for {
		nconn, err := l.ln.Accept()
		if err != nil {
			return
		}
		go srv.handleHTTPConn(l, nconn)
	}
}

func writeTunnelOK(w net.Conn, proto int) error {
	res := http.Response{
		StatusCode:    http.StatusOK,
		ProtoMajor:    1,
		ProtoMinor:    proto,
		Header:        http.Header{},
		ContentLength: -1,
	}
	res.Header.Set("Cache-Control", "no-cache")
	res.Header.Set("Pragma", "no-cache")
	res.Header.Set("Content-Type", "application/x-rtsp-tunnelled")

	var buf bytes.Buffer
	if err := res.Write(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (srv *Server) handleHTTPConn(l *httpTunnelListener, nconn net.Conn) {
	br := bufio.NewReader(nconn)

	req, err := http.ReadRequest(br)
	if err != nil {
		nconn.Close()
		return
	}

	switch {
	case isWebSocketTunnelRequest(req):
		srv.acceptWebSocketTunnel(req, nconn, br)

	case isHTTPTunnelRequest(req):
		if err := writeTunnelOK(nconn, req.ProtoMinor); err != nil {
			nconn.Close()
			return
		}
		srv.joinHTTPTunnel(l, req, nconn, br)

	default:
		res := http.Response{StatusCode: http.StatusBadRequest, ProtoMajor: 1, ProtoMinor: req.ProtoMinor, Header: http.Header{}}
		var buf bytes.Buffer
		res.Write(&buf) //nolint:errcheck
		nconn.Write(buf.Bytes()) //nolint:errcheck
		nconn.Close()
	}
}

func (srv *Server) joinHTTPTunnel(l *httpTunnelListener, req *http.Request, nconn net.Conn, br *bufio.Reader) {
	cookie := req.Header.Get("X-Sessioncookie")
	isPost := req.Method == http.MethodPost

	l.mu.Lock()
	h, ok := l.pending[cookie]
	if !ok {
		h = &tunnelHalf{ready: make(chan struct{})}
		l.pending[cookie] = h
	}
	if isPost {
		h.post, h.postBR = nconn, br
	} else {
		h.get = nconn
	}
	complete := h.get != nil && h.post != nil
	if complete {
		delete(l.pending, cookie)
	}
	l.mu.Unlock()

	if complete {
		close(h.ready)
		tunnel := newHTTPTunnelConn(h.post, h.postBR, h.get)
		srv.wg.Add(1)
		go srv.serveTCPConn(tunnel)
		return
	}

	select {
	case <-h.ready:
		// the other half completed the pairing and owns the connection now.
	case <-time.After(15 * time.Second):
		l.mu.Lock()
		delete(l.pending, cookie)
		l.mu.Unlock()
		nconn.Close()
	}
}

func (srv *Server) acceptWebSocketTunnel(req *http.Request, nconn net.Conn, br *bufio.Reader) {
	rw := bufio.NewReadWriter(br, bufio.NewWriter(nconn))
	fw := &hijackResponseWriter{conn: nconn, rw: rw, header: http.Header{}}

	wc, err := tunnelUpgrader.Upgrade(fw, req, nil)
	if err != nil {
		nconn.Close()
		return
	}

	srv.wg.Add(1)
	go srv.serveTCPConn(&wsTunnelConn{wc: wc})
}

// hijackResponseWriter is the minimal http.ResponseWriter + http.Hijacker
// needed to drive gorilla's Upgrade without running a full net/http server
// over a connection that was already accepted and partially read.
type hijackResponseWriter struct {
	conn   net.Conn
	rw     *bufio.ReadWriter
	header http.Header
	status int
}

func (w *hijackResponseWriter) Header() http.Header { return w.header }

func (w *hijackResponseWriter) Write(p []byte) (int, error) { return w.rw.Write(p) }

func (w *hijackResponseWriter) WriteHeader(status int) { w.status = status }

func (w *hijackResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.conn, w.rw, nil
}
