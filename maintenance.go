package rtspgateway

import (
	"fmt"
	"time"
)

// internalAddr stands in for net.Addr in log calls with no real peer, such
// as a source restart, so Logger implementations that dereference the
// remote unconditionally never see a bare nil interface.
type internalAddr string

func (a internalAddr) Network() string { return "internal" }
func (a internalAddr) String() string  { return string(a) }

const maintenanceAddr = internalAddr("maintenance")

// runMaintenance sweeps the Session Registry for inactive clients and the
// Source Registry for sources stuck Started-but-not-Ready, restarting
// them. It never propagates an error: a faulted sweep this tick is
// retried next tick rather than taking the server down.
func (srv *Server) runMaintenance() {
	defer func() {
		if r := recover(); r != nil {
			srv.Logger.logException(maintenanceAddr, fmt.Errorf("maintenance sweep panicked: %v", r))
		}
	}()

	now := time.Now()

	for _, sess := range srv.Sessions.Snapshot() {
		timeout := sess.TimeoutSeconds()
		if timeout < 0 {
			continue
		}
		if sess.IdleSince(now) <= time.Duration(timeout)*time.Second {
			continue
		}

		if mc := sess.MediaClient(); mc != nil {
			mc.SendGoodbyes()
		}
		sess.Close()
		srv.Sessions.Remove(sess)
	}

	for _, src := range srv.Sources.Iter() {
		if src.State() == SourceStateStarted && !src.Ready() {
			src.Stop()
			if err := src.Start(); err != nil {
				srv.Logger.logException(maintenanceAddr, err)
			}
		}
	}
}
