package rtpmedia

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// WriteFunc sends a framed RTP or RTCP payload to the peer of one
// TransportContext. It is supplied by the acceptor/transport bridge, which
// knows whether the owning session is UDP or interleaved TCP.
type WriteFunc func(ctx *TransportContext, payload []byte) error

type trackStats struct {
	packetCount uint32
	octetCount  uint32
}

// Client is the outgoing media client owned by one session. It keeps one
// rtcpsender-style accumulator per attached TransportContext and emits
// sender reports and goodbyes on request; actual scheduling of periodic
// reports belongs to the maintenance/session layer, not to this type.
type Client struct {
	WriteRTP  WriteFunc
	WriteRTCP WriteFunc

	mu       sync.Mutex
	tcp      bool
	contexts []*TransportContext
	stats    map[*TransportContext]*trackStats
}

// NewClient allocates a Client. protocolTCP selects the initial transport
// mode; it can be changed later with SetTransportProtocol.
func NewClient(protocolTCP bool) *Client {
	return &Client{
		tcp:   protocolTCP,
		stats: make(map[*TransportContext]*trackStats),
	}
}

// Connect marks the client ready to deliver packets. There is no dial step:
// UDP ports are already bound by the acceptor, and TCP delivery reuses the
// control connection.
func (c *Client) Connect() error {
	return nil
}

// Disconnect detaches every context.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contexts = nil
	c.stats = make(map[*TransportContext]*trackStats)
}

// AddContext attaches a new track to the client.
func (c *Client) AddContext(ctx *TransportContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contexts = append(c.contexts, ctx)
	c.stats[ctx] = &trackStats{}
}

// TransportContexts returns the currently attached tracks.
func (c *Client) TransportContexts() []*TransportContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*TransportContext, len(c.contexts))
	copy(out, c.contexts)
	return out
}

// SetTransportProtocol switches delivery mode and clears every attached
// context; the caller must rebuild TransportContexts with channel/port
// assignments appropriate to the new mode.
func (c *Client) SetTransportProtocol(tcp bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tcp = tcp
	c.contexts = nil
	c.stats = make(map[*TransportContext]*trackStats)
}

// IsTCP reports the current transport mode.
func (c *Client) IsTCP() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tcp
}

// seconds since 1 January 1900; higher 32 bits are the integer part, lower
// 32 bits are the fractional part.
func ntpTimeGoToRTCP(v time.Time) uint64 {
	s := uint64(v.UnixNano()) + 2208988800*1000000000
	return (s/1000000000)<<32 | (s % 1000000000)
}

// WritePacketRTP marshals and forwards an RTP packet to this client's peer,
// updating the sender-report accounting for its context.
func (c *Client) WritePacketRTP(ctx *TransportContext, pkt *rtp.Packet) error {
	if c.WriteRTP == nil {
		return nil
	}

	byts, err := pkt.Marshal()
	if err != nil {
		return err
	}

	if err := c.WriteRTP(ctx, byts); err != nil {
		return err
	}

	c.mu.Lock()
	if st, ok := c.stats[ctx]; ok {
		st.packetCount++
		st.octetCount += uint32(len(pkt.Payload))
	}
	c.mu.Unlock()

	return nil
}

// SendSendersReports emits one RTCP sender report per attached context,
// built from the timestamps most recently copied from the source.
func (c *Client) SendSendersReports() {
	c.mu.Lock()
	contexts := make([]*TransportContext, len(c.contexts))
	copy(contexts, c.contexts)
	stats := make(map[*TransportContext]*trackStats, len(c.stats))
	for k, v := range c.stats {
		stats[k] = v
	}
	c.mu.Unlock()

	for _, ctx := range contexts {
		if !ctx.RTCPEnabled || c.WriteRTCP == nil {
			continue
		}

		st := stats[ctx]
		if st == nil {
			st = &trackStats{}
		}

		sr := &rtcp.SenderReport{
			SSRC:        ctx.SSRC,
			NTPTime:     ntpTimeGoToRTCP(ctx.LastNTPTime),
			RTPTime:     ctx.LastRTPTime,
			PacketCount: st.packetCount,
			OctetCount:  st.octetCount,
		}

		byts, err := sr.Marshal()
		if err != nil {
			continue
		}

		c.WriteRTCP(ctx, byts) //nolint:errcheck
	}
}

// SendGoodbyes emits a best-effort RTCP BYE for every attached context.
func (c *Client) SendGoodbyes() {
	c.mu.Lock()
	contexts := make([]*TransportContext, len(c.contexts))
	copy(contexts, c.contexts)
	c.mu.Unlock()

	if c.WriteRTCP == nil {
		return
	}

	for _, ctx := range contexts {
		bye := &rtcp.Goodbye{Sources: []uint32{ctx.SSRC}}

		byts, err := bye.Marshal()
		if err != nil {
			continue
		}

		c.WriteRTCP(ctx, byts) //nolint:errcheck
	}
}
