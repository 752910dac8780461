package rtspgateway

import (
	"fmt"
	"net"
	"sync"
	"time"
)

// Server is the RTSP control-plane acceptor: it owns the TCP listener, the
// optional UDP and HTTP-tunnel bridges, the two registries, and the
// maintenance loop.
type Server struct {
	Config   Config
	Sources  *SourceRegistry
	Sessions *SessionRegistry
	Logger   Logger

	udpPorts *udpPortPool

	mu           sync.Mutex
	listener     net.Listener
	udpListener  *udpRTSPListener
	httpListener *httpTunnelListener
	closed       bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewServer builds a Server around an already-populated SourceRegistry.
// Config fields left at zero value are filled in by ApplyDefaults.
func NewServer(cfg Config, sources *SourceRegistry) *Server {
	cfg.ApplyDefaults()

	return &Server{
		Config:   cfg,
		Sources:  sources,
		Sessions: NewSessionRegistry(),
		Logger:   noopLogger{},
		udpPorts: newUDPPortPool(cfg.MinimumUdpPort, cfg.MaximumUdpPort),
	}
}

// Start binds the TCP control listener, marks the Source Registry
// listening (starting every already-registered source), and launches the
// accept and maintenance loops. Optional UDP and HTTP bridges are started
// if configured.
func (srv *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", srv.Config.Port))
	if err != nil {
		return err
	}

	srv.mu.Lock()
	srv.listener = ln
	srv.stopCh = make(chan struct{})
	srv.mu.Unlock()

	srv.Sources.SetListening(true)
	for _, src := range srv.Sources.Iter() {
		if src.State() == SourceStateStopped {
			if err := src.Start(); err != nil {
				srv.Logger.logException(ln.Addr(), err)
			}
		}
	}

	srv.wg.Add(1)
	go srv.acceptLoop()

	srv.wg.Add(1)
	go srv.maintenanceLoop()

	if srv.Config.EnableUDP != 0 {
		if err := srv.startUDPListener(); err != nil {
			return err
		}
	}

	if srv.Config.EnableHTTP != 0 {
		if err := srv.startHTTPListener(); err != nil {
			return err
		}
	}

	return nil
}

// Stop signals every loop, disposes the listening sockets, stops all
// sources, disconnects every Session, and clears the Session Registry.
func (srv *Server) Stop() {
	srv.mu.Lock()
	if srv.closed {
		srv.mu.Unlock()
		return
	}
	srv.closed = true
	close(srv.stopCh)
	if srv.listener != nil {
		srv.listener.Close()
	}
	srv.mu.Unlock()

	srv.stopUDPListener()
	srv.stopHTTPListener()

	srv.Sources.SetListening(false)
	for _, src := range srv.Sources.Iter() {
		src.Stop()
	}

	for _, sess := range srv.Sessions.Snapshot() {
		sess.Close()
		srv.Sessions.Remove(sess)
	}

	srv.wg.Wait()
}

func (srv *Server) acceptLoop() {
	defer srv.wg.Done()

	for {
		nconn, err := srv.listener.Accept()
		if err != nil {
			return
		}

		if srv.countTCPSessions() >= srv.Config.MaximumClients {
			nconn.Close()
			continue
		}

		srv.wg.Add(1)
		go srv.serveTCPConn(nconn)
	}
}

func (srv *Server) countTCPSessions() int {
	n := 0
	for _, sess := range srv.Sessions.Snapshot() {
		if sess.State() != SessionStateClosed {
			n++
		}
	}
	return n
}

func (srv *Server) maintenanceLoop() {
	defer srv.wg.Done()

	interval := time.Duration(srv.Config.MaintenanceIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			srv.runMaintenance()
		case <-srv.stopCh:
			return
		}
	}
}
