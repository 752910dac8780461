package rtspgateway

import (
	"io"
	"net"

	"github.com/rtspgateway/rtspgateway/pkg/base"
)

// FrameWriter is implemented by a Responder that can also carry
// interleaved RTP/RTCP frames over its control connection.
type FrameWriter interface {
	WriteInterleavedFrame(channel int, payload []byte) error
}

// WriteInterleavedFrame implements FrameWriter for a TCP control
// connection.
func (r *tcpResponder) WriteInterleavedFrame(channel int, payload []byte) error {
	return r.c.WriteInterleavedFrame(&base.InterleavedFrame{Channel: channel, Payload: payload})
}

// frameChannelWriter adapts one interleaved channel of a FrameWriter to
// io.Writer, for use as a per-context RTP or RTCP sink.
type frameChannelWriter struct {
	fw      FrameWriter
	channel int
}

func (w frameChannelWriter) Write(p []byte) (int, error) {
	if err := w.fw.WriteInterleavedFrame(w.channel, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// udpWriter is a connected UDP socket used to send RTP or RTCP packets
// back to one client port.
type udpWriter struct {
	conn *net.UDPConn
}

func newUDPWriter(serverPort int, clientIP net.IP, clientPort int) (*udpWriter, error) {
	conn, err := net.DialUDP("udp", &net.UDPAddr{Port: serverPort}, &net.UDPAddr{IP: clientIP, Port: clientPort})
	if err != nil {
		return nil, err
	}
	return &udpWriter{conn: conn}, nil
}

func (w *udpWriter) Write(p []byte) (int, error) {
	return w.conn.Write(p)
}

func (w *udpWriter) Close() error {
	return w.conn.Close()
}

var _ io.Writer = (*udpWriter)(nil)
var _ io.Writer = frameChannelWriter{}
