package rtspgateway

import (
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistryFindByTokenAfterLateMint(t *testing.T) {
	r := NewSessionRegistry()
	sess := NewSession(fakeResponder{}, &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1}, 60)
	r.Add(sess)

	tok := sess.MintTokenIfNeeded()

	// the registry's token index is not refreshed automatically; FindByToken
	// must still locate the session via its fallback scan.
	found, ok := r.FindByToken(tok)
	require.True(t, ok)
	require.Equal(t, sess, found)

	r.IndexToken(sess)
	found, ok = r.FindByToken(tok)
	require.True(t, ok)
	require.Equal(t, sess, found)
}

func TestSessionRegistryRemove(t *testing.T) {
	r := NewSessionRegistry()
	sess := NewSession(fakeResponder{}, &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1}, 60)
	r.Add(sess)
	tok := sess.MintTokenIfNeeded()
	r.IndexToken(sess)

	r.Remove(sess)

	_, ok := r.FindByID(sess.ID)
	require.False(t, ok)
	_, ok = r.FindByToken(tok)
	require.False(t, ok)
}

func TestSessionRegistryFindByIDUnknown(t *testing.T) {
	r := NewSessionRegistry()
	_, ok := r.FindByID(uuid.New())
	require.False(t, ok)
}
