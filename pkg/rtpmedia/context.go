// Package rtpmedia implements the per-session outgoing RTP/RTCP delivery
// collaborator: packet framing over UDP or an interleaved TCP channel, and
// periodic control traffic (sender reports, goodbyes). Jitter buffering,
// loss detection and codec-specific payloading are out of scope here; this
// package only tracks enough per-track state to keep RTCP honest.
package rtpmedia

import (
	"time"

	"github.com/rtspgateway/rtspgateway/pkg/description"
)

// TransportContext is the per-track state bound to one media description:
// the channel pair (TCP) or port pair (UDP) it is framed on, its SSRC, and
// the last timestamps copied from the source so RTP-Info can be built
// without waiting for a packet to flow.
type TransportContext struct {
	Media  *description.Media
	Format description.Format

	// ChannelRTP/ChannelRTCP are set when delivery is interleaved TCP.
	ChannelRTP  int
	ChannelRTCP int

	// ClientPorts/ServerPorts are set when delivery is UDP unicast.
	ClientPorts *[2]int
	ServerPorts *[2]int

	SSRC        uint32
	RTCPEnabled bool

	LastNTPTime time.Time
	LastRTPTime uint32
	LastSeq     uint16
}
