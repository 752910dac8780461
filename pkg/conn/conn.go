// Package conn contains a buffered RTSP connection implementation shared by
// the TCP listener and the HTTP tunnel bridge.
package conn

import (
	"bufio"
	"io"

	"github.com/rtspgateway/rtspgateway/pkg/base"
)

const (
	readBufferSize       = 4096
	maxInterleavedFrameSize = 64 * 1024
)

// Conn is a buffered RTSP connection: it knows how to tell an interleaved
// frame apart from a textual request or response on the same byte stream.
type Conn struct {
	bw  *bufio.Writer
	br  *bufio.Reader
	req base.Request
	res base.Response
	fr  base.InterleavedFrame
}

// NewConn allocates a Conn around a ReadWriter.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		bw: bufio.NewWriter(rw),
		br: bufio.NewReaderSize(rw, readBufferSize),
	}
}

// ReadRequest reads a Request.
func (c *Conn) ReadRequest() (*base.Request, error) {
	err := c.req.Read(c.br)
	return &c.req, err
}

// ReadResponse reads a Response.
func (c *Conn) ReadResponse() (*base.Response, error) {
	err := c.res.Read(c.br)
	return &c.res, err
}

// ReadInterleavedFrame reads an InterleavedFrame.
func (c *Conn) ReadInterleavedFrame() (*base.InterleavedFrame, error) {
	err := c.fr.Read(maxInterleavedFrameSize, c.br)
	return &c.fr, err
}

func (c *Conn) peekIsInterleavedFrame() (bool, error) {
	b, err := c.br.Peek(1)
	if err != nil {
		return false, err
	}
	return b[0] == 0x24, nil
}

// ReadInterleavedFrameOrRequest reads an InterleavedFrame or a Request.
func (c *Conn) ReadInterleavedFrameOrRequest() (interface{}, error) {
	isFrame, err := c.peekIsInterleavedFrame()
	if err != nil {
		return nil, err
	}

	if isFrame {
		return c.ReadInterleavedFrame()
	}

	return c.ReadRequest()
}

// ReadInterleavedFrameOrResponse reads an InterleavedFrame or a Response.
func (c *Conn) ReadInterleavedFrameOrResponse() (interface{}, error) {
	isFrame, err := c.peekIsInterleavedFrame()
	if err != nil {
		return nil, err
	}

	if isFrame {
		return c.ReadInterleavedFrame()
	}

	return c.ReadResponse()
}

// ReadRequestIgnoreFrames reads a Request and discards any frame received in between.
func (c *Conn) ReadRequestIgnoreFrames() (*base.Request, error) {
	for {
		recv, err := c.ReadInterleavedFrameOrRequest()
		if err != nil {
			return nil, err
		}

		if req, ok := recv.(*base.Request); ok {
			return req, nil
		}
	}
}

// ReadResponseIgnoreFrames reads a Response and discards any frame received in between.
func (c *Conn) ReadResponseIgnoreFrames() (*base.Response, error) {
	for {
		recv, err := c.ReadInterleavedFrameOrResponse()
		if err != nil {
			return nil, err
		}

		if res, ok := recv.(*base.Response); ok {
			return res, nil
		}
	}
}

// WriteRequest writes a request.
func (c *Conn) WriteRequest(req *base.Request) error {
	return req.Write(c.bw)
}

// WriteResponse writes a response.
func (c *Conn) WriteResponse(res *base.Response) error {
	return res.Write(c.bw)
}

// WriteInterleavedFrame writes an interleaved frame.
func (c *Conn) WriteInterleavedFrame(fr *base.InterleavedFrame) error {
	fr.Write(c.bw)
	return c.bw.Flush()
}
