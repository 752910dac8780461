package rtspgateway

import (
	"github.com/rtspgateway/rtspgateway/pkg/auth"
	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/liberrors"
)

// authRealm is the realm advertised in WWW-Authenticate challenges.
const authRealm = "rtspgateway"

// verifyMethods converts a Source's configured AuthScheme into the set of
// auth.VerifyMethod accepted for it. AuthSchemeNone never reaches Verify.
func verifyMethods(scheme AuthScheme) []auth.VerifyMethod {
	switch scheme {
	case AuthSchemeBasic:
		return []auth.VerifyMethod{auth.VerifyMethodBasic}
	case AuthSchemeDigest:
		return []auth.VerifyMethod{auth.VerifyMethodDigestMD5}
	default:
		return []auth.VerifyMethod{auth.VerifyMethodBasic, auth.VerifyMethodDigestMD5}
	}
}

// authenticate enforces a Source's credential, if any, against an incoming
// request. It returns nil when the source is unprotected or the request
// carries valid credentials, liberrors.ErrUnauthorized when no Authorization
// header is present (the caller should answer with a fresh challenge), and
// liberrors.ErrForbidden when the header is present but wrong.
func authenticate(src *Source, req *base.Request) error {
	if src.AuthScheme == AuthSchemeNone || src.Credential == nil {
		return nil
	}

	if len(req.Header["Authorization"]) == 0 {
		return liberrors.ErrUnauthorized{}
	}

	methods := verifyMethods(src.AuthScheme)
	err := auth.Verify(req, src.Credential.User, src.Credential.Pass, methods, authRealm, src.currentNonce())
	if err != nil {
		return liberrors.ErrForbidden{Err: err}
	}

	return nil
}

// challengeHeader builds the WWW-Authenticate header values for a 401
// response targeting src.
func challengeHeader(src *Source) base.HeaderValue {
	list := auth.Challenge(verifyMethods(src.AuthScheme), authRealm, src.currentNonce())
	out := make(base.HeaderValue, len(list))
	for i, a := range list {
		out[i] = a.Write()[0]
	}
	return out
}
