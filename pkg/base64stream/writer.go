package base64stream

import (
	"encoding/base64"
	"io"
)

// NewWriter wraps w, base64-encoding everything written to it as a single
// continuous stream, the mirror image of New on the tunnel's GET channel.
// The returned writer must be closed once the connection is done, so that
// any trailing partial group is flushed with its padding.
func NewWriter(w io.Writer) io.WriteCloser {
	return base64.NewEncoder(base64.StdEncoding, w)
}
