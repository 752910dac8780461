package rtspgateway

import (
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/description"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

// SessionState is one point in the per-client control-plane state machine.
type SessionState int

// session states.
const (
	SessionStateNew SessionState = iota
	SessionStateReady
	SessionStatePlaying
	SessionStateClosed
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case SessionStateNew:
		return "new"
	case SessionStateReady:
		return "ready"
	case SessionStatePlaying:
		return "playing"
	case SessionStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Responder writes a response back to whatever transport a Session was
// created on: a TCP connection, a UDP peer, or an HTTP tunnel.
type Responder interface {
	WriteResponse(res *base.Response) error
}

// Session represents one connected RTSP client. A Session is owned by the
// I/O worker currently servicing it; the only cross-thread access is from
// the Session Registry and the Maintenance loop, which touch only state,
// lastActivity and the socket (for a best-effort BYE), always under mu.
type Session struct {
	ID uuid.UUID

	mu             sync.Mutex
	state          SessionState
	token          string
	responder      Responder
	remoteAddr     net.Addr
	localAddr      net.Addr
	lastCSeq       string
	lastActivity   time.Time
	timeoutSeconds int

	source         *Source
	mediaClient    MediaClient
	clientContexts []*rtpmedia.TransportContext
	sourceContexts []*rtpmedia.TransportContext

	rtpWriters  map[*rtpmedia.TransportContext]io.Writer
	rtcpWriters map[*rtpmedia.TransportContext]io.Writer
}

// NewSession creates a Session in the New state, bound to the given
// responder and remote endpoint.
func NewSession(responder Responder, remoteAddr net.Addr, timeoutSeconds int) *Session {
	return &Session{
		ID:             uuid.New(),
		state:          SessionStateNew,
		responder:      responder,
		remoteAddr:     remoteAddr,
		lastActivity:   time.Now(),
		timeoutSeconds: timeoutSeconds,
	}
}

// SetLocalAddr records the local endpoint the Session was accepted on,
// used to build the Content-Base URL on DESCRIBE.
func (sess *Session) SetLocalAddr(addr net.Addr) {
	sess.mu.Lock()
	sess.localAddr = addr
	sess.mu.Unlock()
}

// LocalAddr returns the local endpoint, or nil if unset.
func (sess *Session) LocalAddr() net.Addr {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.localAddr
}

// Touch refreshes lastActivity, resetting the inactivity timer.
func (sess *Session) Touch() {
	sess.mu.Lock()
	sess.lastActivity = time.Now()
	sess.mu.Unlock()
}

// IdleSince reports how long it has been since the last request.
func (sess *Session) IdleSince(now time.Time) time.Duration {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return now.Sub(sess.lastActivity)
}

// TimeoutSeconds returns the inactivity threshold; -1 means disabled.
func (sess *Session) TimeoutSeconds() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.timeoutSeconds
}

// SetTimeoutSeconds overrides the inactivity threshold.
func (sess *Session) SetTimeoutSeconds(v int) {
	sess.mu.Lock()
	sess.timeoutSeconds = v
	sess.mu.Unlock()
}

// State returns the current state.
func (sess *Session) State() SessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// Token returns the minted RTSP Session token, or "" if none has been
// minted yet.
func (sess *Session) Token() string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.token
}

// RemoteAddr returns the endpoint this Session was created on.
func (sess *Session) RemoteAddr() net.Addr {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.remoteAddr
}

// RebindRemoteAddr updates the stored endpoint, used when a Session
// switches from UDP to an interleaved TCP control connection.
func (sess *Session) RebindRemoteAddr(responder Responder, remoteAddr net.Addr) {
	sess.mu.Lock()
	sess.responder = responder
	sess.remoteAddr = remoteAddr
	sess.mu.Unlock()
}

// Responder returns the current responder.
func (sess *Session) Responder() Responder {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.responder
}

// IsDuplicateRequest reports whether cseq equals the last serviced CSeq.
func (sess *Session) IsDuplicateRequest(cseq string) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.lastCSeq != "" && sess.lastCSeq == cseq
}

// MarkServiced records cseq as the last serviced request.
func (sess *Session) MarkServiced(cseq string) {
	sess.mu.Lock()
	sess.lastCSeq = cseq
	sess.mu.Unlock()
}

// MintTokenIfNeeded assigns a Session token on first call and returns it;
// subsequent calls are no-ops that return the existing token.
func (sess *Session) MintTokenIfNeeded() string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.token == "" {
		sess.token = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	return sess.token
}

// Source returns the attached source, or nil.
func (sess *Session) Source() *Source {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.source
}

// BindSource associates the Session with the source it is setting up
// tracks against. It does not by itself start forwarding; see Play.
func (sess *Session) BindSource(src *Source) {
	sess.mu.Lock()
	sess.source = src
	sess.mu.Unlock()
}

// MediaClient returns the outgoing media client, creating none.
func (sess *Session) MediaClient() MediaClient {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.mediaClient
}

// SetMediaClient installs the outgoing media client, lazily created on the
// first successful SETUP.
func (sess *Session) SetMediaClient(mc MediaClient) {
	sess.mu.Lock()
	sess.mediaClient = mc
	sess.mu.Unlock()
}

// AddTrack appends a client/source transport context pair, keeping the two
// lists aligned by media description as required by the attachment
// invariant.
func (sess *Session) AddTrack(clientCtx, sourceCtx *rtpmedia.TransportContext) {
	sess.mu.Lock()
	sess.clientContexts = append(sess.clientContexts, clientCtx)
	sess.sourceContexts = append(sess.sourceContexts, sourceCtx)
	sess.mu.Unlock()
}

// ClientContexts returns a snapshot of the client transport contexts.
func (sess *Session) ClientContexts() []*rtpmedia.TransportContext {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]*rtpmedia.TransportContext, len(sess.clientContexts))
	copy(out, sess.clientContexts)
	return out
}

// SourceContexts returns a snapshot of the source transport contexts the
// Session is attached to.
func (sess *Session) SourceContexts() []*rtpmedia.TransportContext {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]*rtpmedia.TransportContext, len(sess.sourceContexts))
	copy(out, sess.sourceContexts)
	return out
}

// RemoveTrack drops the track whose media description matches media,
// keeping the remaining tracks untouched. It reports whether any track
// remains afterwards.
func (sess *Session) RemoveTrack(media *description.Media) (removed bool, remaining int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	for i, c := range sess.clientContexts {
		if c.Media == media {
			sess.clientContexts = append(sess.clientContexts[:i], sess.clientContexts[i+1:]...)
			sess.sourceContexts = append(sess.sourceContexts[:i], sess.sourceContexts[i+1:]...)
			removed = true
			break
		}
	}

	return removed, len(sess.clientContexts)
}

// ClearTracks drops every attached track.
func (sess *Session) ClearTracks() {
	sess.mu.Lock()
	sess.clientContexts = nil
	sess.sourceContexts = nil
	sess.rtpWriters = nil
	sess.rtcpWriters = nil
	sess.mu.Unlock()
}

// RegisterTrackIO associates the RTP and RTCP sinks for one client
// transport context, consulted by the WriteFunc closures installed on the
// Session's media client.
func (sess *Session) RegisterTrackIO(ctx *rtpmedia.TransportContext, rtpW, rtcpW io.Writer) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.rtpWriters == nil {
		sess.rtpWriters = make(map[*rtpmedia.TransportContext]io.Writer)
		sess.rtcpWriters = make(map[*rtpmedia.TransportContext]io.Writer)
	}
	sess.rtpWriters[ctx] = rtpW
	sess.rtcpWriters[ctx] = rtcpW
}

// rtpWriteFunc returns the rtpmedia.WriteFunc installed on this Session's
// media client for RTP payloads.
func (sess *Session) rtpWriteFunc() rtpmedia.WriteFunc {
	return func(ctx *rtpmedia.TransportContext, payload []byte) error {
		sess.mu.Lock()
		w := sess.rtpWriters[ctx]
		sess.mu.Unlock()
		if w == nil {
			return nil
		}
		_, err := w.Write(payload)
		return err
	}
}

// rtcpWriteFunc returns the rtpmedia.WriteFunc installed on this Session's
// media client for RTCP payloads.
func (sess *Session) rtcpWriteFunc() rtpmedia.WriteFunc {
	return func(ctx *rtpmedia.TransportContext, payload []byte) error {
		sess.mu.Lock()
		w := sess.rtcpWriters[ctx]
		sess.mu.Unlock()
		if w == nil {
			return nil
		}
		_, err := w.Write(payload)
		return err
	}
}

// setState transitions the Session to a new state.
func (sess *Session) setState(s SessionState) {
	sess.mu.Lock()
	sess.state = s
	sess.mu.Unlock()
}

// Play transitions Ready -> Playing.
func (sess *Session) Play() {
	sess.setState(SessionStatePlaying)
}

// Pause transitions Playing -> Ready without tearing anything down.
func (sess *Session) Pause() {
	sess.setState(SessionStateReady)
}

// EnsureReady transitions New -> Ready, used on the first successful SETUP.
func (sess *Session) EnsureReady() {
	sess.mu.Lock()
	if sess.state == SessionStateNew {
		sess.state = SessionStateReady
	}
	sess.mu.Unlock()
}

// Close tears the Session down: detaches from its media client, clears all
// context lists, and marks the Session Closed. It is idempotent.
func (sess *Session) Close() {
	sess.mu.Lock()
	mc := sess.mediaClient
	sess.mediaClient = nil
	sess.clientContexts = nil
	sess.sourceContexts = nil
	sess.rtpWriters = nil
	sess.rtcpWriters = nil
	sess.source = nil
	sess.state = SessionStateClosed
	sess.mu.Unlock()

	if mc != nil {
		mc.Disconnect()
	}
}
