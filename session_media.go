package rtspgateway

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/rtspgateway/rtspgateway/pkg/headers"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

// udpPortPool allocates even/odd RTP/RTCP port pairs out of [min, max].
type udpPortPool struct {
	mu   sync.Mutex
	min  int
	max  int
	used map[int]bool
}

func newUDPPortPool(min, max int) *udpPortPool {
	return &udpPortPool{min: min, max: max, used: make(map[int]bool)}
}

// allocate reserves a fresh RTP/RTCP port pair, or reports ok=false if the
// pool is exhausted.
func (p *udpPortPool) allocate() (rtpPort int, rtcpPort int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for port := p.min; port+1 <= p.max; port += 2 {
		if !p.used[port] {
			p.used[port] = true
			p.used[port+1] = true
			return port, port + 1, true
		}
	}
	return 0, 0, false
}

// release returns a port pair to the pool.
func (p *udpPortPool) release(rtpPort int) {
	p.mu.Lock()
	delete(p.used, rtpPort)
	delete(p.used, rtpPort+1)
	p.mu.Unlock()
}

// nextInterleavedChannels returns the next pair of interleaved channel
// numbers: 0/1 for the first track, then lastData+2/lastControl+2.
func (sess *Session) nextInterleavedChannels() (int, int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.clientContexts) == 0 {
		return 0, 1
	}
	last := sess.clientContexts[len(sess.clientContexts)-1]
	return last.ChannelRTP + 2, last.ChannelRTCP + 2
}

func randomSSRC() uint32 {
	var b [4]byte
	_, err := rand.Read(b[:])
	if err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b[:])
}

// buildUDPTransportContext allocates a UDP port pair and assembles the
// client-side TransportContext plus the Transport header to answer with.
func buildUDPTransportContext(pool *udpPortPool, clientPorts [2]int, rtcpEnabled bool) (*rtpmedia.TransportContext, headers.Transport, error) {
	rtpPort, rtcpPort, ok := pool.allocate()
	if !ok {
		return nil, headers.Transport{}, fmt.Errorf("no UDP ports available")
	}

	ssrc := randomSSRC()
	serverPorts := [2]int{rtpPort, rtcpPort}
	reqClientPorts := clientPorts

	ctx := &rtpmedia.TransportContext{
		ClientPorts: &reqClientPorts,
		ServerPorts: &serverPorts,
		SSRC:        ssrc,
		RTCPEnabled: rtcpEnabled,
	}

	delivery := headers.TransportDeliveryUnicast
	th := headers.Transport{
		Protocol:    headers.TransportProtocolUDP,
		Delivery:    &delivery,
		ClientPorts: &reqClientPorts,
		ServerPorts: &serverPorts,
		SSRC:        &ssrc,
	}

	return ctx, th, nil
}

// buildTCPTransportContext assembles the client-side TransportContext and
// Transport header for interleaved delivery over the control connection.
func buildTCPTransportContext(interleaved [2]int, rtcpEnabled bool) (*rtpmedia.TransportContext, headers.Transport) {
	ssrc := randomSSRC()

	ctx := &rtpmedia.TransportContext{
		ChannelRTP:  interleaved[0],
		ChannelRTCP: interleaved[1],
		SSRC:        ssrc,
		RTCPEnabled: rtcpEnabled,
	}

	delivery := headers.TransportDeliveryUnicast
	th := headers.Transport{
		Protocol:       headers.TransportProtocolTCP,
		Delivery:       &delivery,
		InterleavedIDs: &interleaved,
		SSRC:           &ssrc,
	}

	return ctx, th
}
