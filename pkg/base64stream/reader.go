// Package base64stream decodes a continuous base64 byte stream, as used by
// the RTSP-over-HTTP tunnel's upstream (POST) channel, where request bytes
// arrive base64-encoded with no outer framing.
package base64stream

import (
	"bytes"
	"encoding/base64"
	"io"
)

const readChunk = 1024

type reader struct {
	r       io.Reader
	predec  []byte
	postdec []byte
}

// Read implements io.Reader, decoding as many whole base64 quanta as are
// available and buffering any leftover decoded bytes for the next call.
func (r *reader) Read(p []byte) (int, error) {
	for len(r.postdec) == 0 {
		todec := r.predec

		if len(todec)%4 != 0 {
			todec = todec[:(len(todec)/4)*4]
		}

		if i := bytes.IndexByte(todec, '='); i >= 0 {
			if len(todec) > (i+1) && todec[i+1] == '=' {
				i++
			}
			todec = todec[:i+1]
		}

		if len(todec) == 0 {
			buf := make([]byte, readChunk)
			n, err := r.r.Read(buf)
			if err != nil && n == 0 {
				return 0, err
			}

			r.predec = append(r.predec, buf[:n]...)
			continue
		}

		r.predec = r.predec[len(todec):]

		out, err := base64.StdEncoding.DecodeString(string(todec))
		if err != nil {
			return 0, err
		}

		r.postdec = append(r.postdec, out...)
	}

	n := copy(p, r.postdec)
	r.postdec = r.postdec[n:]

	return n, nil
}

// New wraps r, decoding a base64 stream with no fixed quantum boundaries.
func New(r io.Reader) io.Reader {
	return &reader{r: r}
}
