package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rtspgateway/rtspgateway/pkg/base"
)

func mustParseURL(s string) *base.URL {
	u, err := base.ParseURL(s)
	if err != nil {
		panic(err)
	}
	return u
}

var casesVerify = []struct {
	name          string
	authorization base.HeaderValue
}{
	{
		"basic",
		base.HeaderValue{
			"Basic bXl1c2VyOm15cGFzcw==",
		},
	},
	{
		"digest md5 implicit",
		base.HeaderValue{
			"Digest username=\"myuser\", realm=\"myrealm\", nonce=\"f49ac6dd0ba708d4becddc9692d1f2ce\", " +
				"uri=\"rtsp://myhost/mypath?key=val/trackID=3\", response=\"0cb7b31ba0a6b72f5f9e2e66ce7820e5\"",
		},
	},
	{
		"digest md5 explicit",
		base.HeaderValue{
			"Digest username=\"myuser\", realm=\"myrealm\", nonce=\"f49ac6dd0ba708d4becddc9692d1f2ce\", " +
				"uri=\"rtsp://myhost/mypath?key=val/trackID=3\", response=\"0cb7b31ba0a6b72f5f9e2e66ce7820e5\", " +
				"algorithm=\"MD5\"",
		},
	},
	{
		"digest sha256",
		base.HeaderValue{
			"Digest username=\"myuser\", realm=\"myrealm\", nonce=\"f49ac6dd0ba708d4becddc9692d1f2ce\", " +
				"uri=\"rtsp://myhost/mypath?key=val/trackID=3\", " +
				"response=\"430b3ca11b6a7eadf5762b8a2755cc9a6552c25515a2b5d49d3d7ef723d89208\", " +
				"algorithm=\"SHA-256\"",
		},
	},
	{
		"digest vlc",
		base.HeaderValue{
			"Digest username=\"myuser\", realm=\"myrealm\", nonce=\"f49ac6dd0ba708d4becddc9692d1f2ce\", " +
				"uri=\"rtsp://myhost/mypath?key=val/\", response=\"55832d914234c325f35495a55f9ebbd8\"",
		},
	},
	{
		"digest md5 with qop auth",
		base.HeaderValue{
			"Digest username=\"myuser\", realm=\"myrealm\", nonce=\"f49ac6dd0ba708d4becddc9692d1f2ce\", " +
				"uri=\"rtsp://myhost/mypath?key=val/trackID=3\", response=\"5a219084ebaf9c60cf8d12700a8de831\", " +
				"qop=auth, nc=00000001, cnonce=\"0a4f113b\"",
		},
	},
}

func TestVerify(t *testing.T) {
	for _, ca := range casesVerify {
		t.Run(ca.name, func(t *testing.T) {
			req := &base.Request{
				Method: base.Setup,
				URL:    mustParseURL("rtsp://myhost/mypath?key=val/trackID=3"),
				Header: base.Header{
					"Authorization": ca.authorization,
				},
			}

			err := Verify(
				req,
				"myuser",
				"mypass",
				[]VerifyMethod{VerifyMethodBasic, VerifyMethodDigestMD5, VerifyMethodDigestSHA256},
				"myrealm",
				"f49ac6dd0ba708d4becddc9692d1f2ce")
			require.NoError(t, err)
		})
	}
}

func TestVerifyFailures(t *testing.T) {
	req := &base.Request{
		Method: base.Setup,
		URL:    mustParseURL("rtsp://myhost/mypath?key=val/trackID=3"),
		Header: base.Header{
			"Authorization": base.HeaderValue{
				"Digest username=\"myuser\", realm=\"myrealm\", nonce=\"wrong\", " +
					"uri=\"rtsp://myhost/mypath?key=val/trackID=3\", response=\"ba6e9cccbfeb38db775378a0a9067ba5\"",
			},
		},
	}

	err := Verify(
		req,
		"myuser",
		"mypass",
		nil,
		"myrealm",
		"f49ac6dd0ba708d4becddc9692d1f2ce")
	require.Error(t, err)
}

func TestChallenge(t *testing.T) {
	entries := Challenge([]VerifyMethod{VerifyMethodBasic, VerifyMethodDigestMD5}, "myrealm", "abc123")
	require.Len(t, entries, 2)
	require.Equal(t, "myrealm", *entries[0].Realm)
}

func FuzzVerify(f *testing.F) {
	for _, ca := range casesVerify {
		f.Add(ca.authorization[0])
	}

	f.Fuzz(func(_ *testing.T, a string) {
		Verify( //nolint:errcheck
			&base.Request{
				Method: base.Describe,
				URL:    nil,
				Header: base.Header{
					"Authorization": base.HeaderValue{a},
				},
			},
			"myuser",
			"mypass",
			nil,
			"IPCAM",
			"f49ac6dd0ba708d4becddc9692d1f2ce",
		)
	})
}
