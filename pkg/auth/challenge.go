package auth

import "github.com/rtspgateway/rtspgateway/pkg/headers"

// Challenge builds the WWW-Authenticate header values offered to an
// unauthenticated client. One Authenticate header is emitted per method,
// in the order given, so a client can pick whichever it supports.
func Challenge(methods []VerifyMethod, realm string, nonce string) []headers.Authenticate {
	if methods == nil {
		methods = []VerifyMethod{VerifyMethodBasic, VerifyMethodDigestMD5}
	}

	r := realm
	n := nonce

	var ret []headers.Authenticate

	for _, m := range methods {
		switch m {
		case VerifyMethodBasic:
			ret = append(ret, headers.Authenticate{
				Method: headers.AuthBasic,
				Realm:  &r,
			})

		case VerifyMethodDigestMD5:
			alg := algorithmMD5
			ret = append(ret, headers.Authenticate{
				Method:    headers.AuthDigest,
				Realm:     &r,
				Nonce:     &n,
				Algorithm: &alg,
			})

		case VerifyMethodDigestSHA256:
			alg := algorithmSHA256
			ret = append(ret, headers.Authenticate{
				Method:    headers.AuthDigest,
				Realm:     &r,
				Nonce:     &n,
				Algorithm: &alg,
			})
		}
	}

	return ret
}
