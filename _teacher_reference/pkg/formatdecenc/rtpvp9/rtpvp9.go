// Package rtpvp9 contains a RTP/VP9 decoder and encoder.
package rtpvp9

const (
	rtpClockRate = 90000 // VP9 always uses 90khz
)
