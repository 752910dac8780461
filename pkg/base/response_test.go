package base

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var casesResponse = []struct {
	name string
	byts []byte
	res  Response
}{
	{
		"ok",
		[]byte("RTSP/1.0 200 OK\r\n" +
			"CSeq: 2\r\n" +
			"Date: Sat, Aug 16 2014 02:22:28 GMT\r\n" +
			"Session: 645252166\r\n" +
			"WWW-Authenticate: Digest realm=\"4419b63f5e51\", nonce=\"8b84a3b789283a8bea8da7fa7d41f08b\", stale=\"FALSE\"\r\n" +
			"WWW-Authenticate: Basic realm=\"4419b63f5e51\"\r\n" +
			"\r\n",
		),
		Response{
			StatusCode:    StatusOK,
			StatusMessage: "OK",
			Version:       Version10,
			Header: Header{
				"CSeq":    HeaderValue{"2"},
				"Session": HeaderValue{"645252166"},
				"WWW-Authenticate": HeaderValue{
					"Digest realm=\"4419b63f5e51\", nonce=\"8b84a3b789283a8bea8da7fa7d41f08b\", stale=\"FALSE\"",
					"Basic realm=\"4419b63f5e51\"",
				},
				"Date": HeaderValue{"Sat, Aug 16 2014 02:22:28 GMT"},
			},
		},
	},
	{
		"ok with payload",
		[]byte("RTSP/1.0 200 OK\r\n" +
			"CSeq: 2\r\n" +
			"Content-Base: rtsp://example.com/media.mp4\r\n" +
			"Content-Length: 82\r\n" +
			"Content-Type: application/sdp\r\n" +
			"\r\n" +
			"m=video 0 RTP/AVP 96\n" +
			"a=control:streamid=0\n" +
			"a=rtpmap:96 MP4V-ES/5544\n",
		),
		Response{
			StatusCode:    200,
			StatusMessage: "OK",
			Version:       Version10,
			Header: Header{
				"Content-Base":   HeaderValue{"rtsp://example.com/media.mp4"},
				"Content-Length": HeaderValue{"82"},
				"Content-Type":   HeaderValue{"application/sdp"},
				"CSeq":           HeaderValue{"2"},
			},
			Body: []byte("m=video 0 RTP/AVP 96\n" +
				"a=control:streamid=0\n" +
				"a=rtpmap:96 MP4V-ES/5544\n",
			),
		},
	},
}

func TestResponseRead(t *testing.T) {
	var res Response

	for _, c := range casesResponse {
		t.Run(c.name, func(t *testing.T) {
			err := res.Read(bufio.NewReader(bytes.NewBuffer(c.byts)))
			require.NoError(t, err)
			require.Equal(t, c.res, res)
		})
	}
}

func TestResponseReadErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
	}{
		{"empty", []byte{}},
		{"missing code, message, eol", []byte("RTSP/1.0")},
		{"missing message, eol", []byte("RTSP/1.0 200")},
		{"missing eol", []byte("RTSP/1.0 200 OK")},
		{"invalid protocol", []byte("XXX 200 OK\r\n")},
		{"code too long", []byte("RTSP/1.0 1234 OK\r\n")},
		{"invalid code", []byte("RTSP/1.0 str OK\r\n")},
		{"empty message", []byte("RTSP/1.0 200 \r\n")},
		{"invalid body", []byte("RTSP/1.0 200 OK\r\nContent-Length: 17\r\n\r\n123")},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var res Response
			err := res.Read(bufio.NewReader(bytes.NewBuffer(ca.byts)))
			require.Error(t, err)
		})
	}
}

func TestResponseWrite(t *testing.T) {
	for _, c := range casesResponse {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			bw := bufio.NewWriter(&buf)
			err := c.res.Write(bw)
			require.NoError(t, err)
			require.Equal(t, string(c.byts), buf.String())
		})
	}
}

func TestResponseWriteAutoFillStatus(t *testing.T) {
	res := Response{
		StatusCode: StatusMethodNotAllowed,
		Header: Header{
			"CSeq": HeaderValue{"2"},
		},
	}
	byts := "RTSP/1.0 405 Method Not Allowed\r\n" +
		"CSeq: 2\r\n" +
		"\r\n"

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	err := res.Write(bw)
	require.NoError(t, err)
	require.Equal(t, byts, buf.String())
}

func TestResponseString(t *testing.T) {
	byts := []byte("RTSP/1.0 200 OK\r\n" +
		"CSeq: 3\r\n" +
		"Content-Length: 7\r\n" +
		"\r\n" +
		"testing")

	var res Response
	err := res.Read(bufio.NewReader(bytes.NewBuffer(byts)))
	require.NoError(t, err)
	require.Equal(t, string(byts), res.String())
}
