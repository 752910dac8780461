// Package rtcpreceiver contains a utility to generate RTCP receiver reports.
package rtcpreceiver

import "github.com/bluenviron/gortsplib/v4/pkg/rtpreceiver"

// RTCPReceiver is a utility to receive RTP packets.
//
// Deprecated: replaced by rtpreceiver.Receiver
type RTCPReceiver = rtpreceiver.Receiver
