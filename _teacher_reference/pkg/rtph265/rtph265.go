// Package rtph265 contains a RTP/H265 decoder and encoder.
package rtph265

const (
	rtpClockRate = 90000 // H265 always uses 90khz
)
