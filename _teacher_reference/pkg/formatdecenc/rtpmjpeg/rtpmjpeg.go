// Package rtpmjpeg contains a RTP/M-JPEG decoder and encoder.
package rtpmjpeg

const (
	rtpClockRate = 90000
	maxDimension = 2040
)
