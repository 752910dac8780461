package rtspgateway

import "github.com/rtspgateway/rtspgateway/pkg/rtpmedia"

// MediaClient is the per-session collaborator that owns a Session's
// outgoing RTP/RTCP delivery. The control plane only drives its lifecycle
// and transport mode; packet forwarding itself runs on a worker owned by
// the client, outside this package.
type MediaClient interface {
	Connect() error
	Disconnect()
	AddContext(ctx *rtpmedia.TransportContext)
	TransportContexts() []*rtpmedia.TransportContext
	SendSendersReports()
	SendGoodbyes()
	SetTransportProtocol(tcp bool)
	IsTCP() bool
}

var _ MediaClient = (*rtpmedia.Client)(nil)
