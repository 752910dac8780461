package rtspgateway

import (
	"bufio"
	"bytes"
	"net"
	"sync"

	"golang.org/x/net/ipv4"

	"github.com/rtspgateway/rtspgateway/pkg/base"
)

// udpResponder writes responses back over the standalone UDP RTSP
// listener, addressed to whichever peer sent the original datagram.
type udpResponder struct {
	conn *net.UDPConn
	addr *net.UDPAddr
}

func (r *udpResponder) WriteResponse(res *base.Response) error {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	if err := res.Write(bw); err != nil {
		return err
	}
	_, err := r.conn.WriteToUDP(buf.Bytes(), r.addr)
	return err
}

// udpRTSPListener seeds one Session per distinct source address, the first
// datagram from a peer standing in for a TCP accept.
type udpRTSPListener struct {
	conn  *net.UDPConn
	pconn *ipv4.PacketConn

	mu       sync.Mutex
	sessions map[string]*Session
}

func (srv *Server) startUDPListener() error {
	network := "udp4"
	if srv.Config.EnableUDPv6 {
		network = "udp"
	}

	conn, err := net.ListenUDP(network, &net.UDPAddr{Port: srv.Config.EnableUDP})
	if err != nil {
		return err
	}

	pconn := ipv4.NewPacketConn(conn)
	if network == "udp4" {
		pconn.SetControlMessage(ipv4.FlagDst, true) //nolint:errcheck
	}

	l := &udpRTSPListener{conn: conn, pconn: pconn, sessions: make(map[string]*Session)}

	srv.mu.Lock()
	srv.udpListener = l
	srv.mu.Unlock()

	srv.wg.Add(1)
	go srv.runUDPListener(l)

	return nil
}

func (srv *Server) stopUDPListener() {
	srv.mu.Lock()
	l := srv.udpListener
	srv.udpListener = nil
	srv.mu.Unlock()

	if l != nil {
		l.conn.Close()
	}
}

func (srv *Server) runUDPListener(l *udpRTSPListener) {
	defer srv.wg.Done()

	buf := make([]byte, 64*1024)
	for {
		n, cm, src, err := l.pconn.ReadFrom(buf)
		if err != nil {
			return
		}
		addr, ok := src.(*net.UDPAddr)
		if !ok {
			continue
		}

		req := &base.Request{}
		rb := bufio.NewReader(bytes.NewReader(buf[:n]))
		if err := req.Read(rb); err != nil {
			srv.Logger.logException(addr, err)
			continue
		}

		var dst net.IP
		if cm != nil {
			dst = cm.Dst
		}
		sess := l.sessionFor(srv, addr, dst)

		res := srv.handleRequest(sess, req)
		if res == nil {
			continue
		}

		responder := &udpResponder{conn: l.conn, addr: addr}
		if err := responder.WriteResponse(res); err != nil {
			srv.Logger.logException(addr, err)
		}
	}
}

// sessionFor returns the cached Session for addr, creating one on its first
// datagram. dst is the packet's learned destination address (from the IPv4
// control message), used in place of the listener's own wildcard local
// address so a multi-homed host reports the correct interface in a SETUP
// response's Transport source= attribute.
func (l *udpRTSPListener) sessionFor(srv *Server, addr *net.UDPAddr, dst net.IP) *Session {
	key := addr.String()

	l.mu.Lock()
	defer l.mu.Unlock()

	if sess, ok := l.sessions[key]; ok && sess.State() != SessionStateClosed {
		return sess
	}

	responder := &udpResponder{conn: l.conn, addr: addr}
	sess := NewSession(responder, addr, srv.Config.ClientInactivityTimeoutSeconds)

	local := l.conn.LocalAddr()
	if dst != nil {
		if udpLocal, ok := local.(*net.UDPAddr); ok {
			local = &net.UDPAddr{IP: dst, Port: udpLocal.Port}
		}
	}
	sess.SetLocalAddr(local)

	l.sessions[key] = sess
	srv.Sessions.Add(sess)
	return sess
}
