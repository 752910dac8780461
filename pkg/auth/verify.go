// Package auth implements Basic and Digest authentication for the control plane.
package auth

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/headers"
)

var reControlAttribute = regexp.MustCompile("^(.+/)trackID=[0-9]+$")

const (
	algorithmMD5    = "MD5"
	algorithmSHA256 = "SHA-256"
)

func md5Hex(in string) string {
	h := md5.New()
	h.Write([]byte(in))
	return hex.EncodeToString(h.Sum(nil))
}

func sha256Hex(in string) string {
	h := sha256.New()
	h.Write([]byte(in))
	return hex.EncodeToString(h.Sum(nil))
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func contains(list []VerifyMethod, item VerifyMethod) bool {
	for _, i := range list {
		if i == item {
			return true
		}
	}
	return false
}

func urlMatches(expected string, received string, isSetup bool) bool {
	if received == expected {
		return true
	}

	// in SETUP requests, VLC uses the base URL of the stream
	// instead of the URL of the track.
	// Strip the control attribute to obtain the URL of the stream.
	if isSetup {
		if m := reControlAttribute.FindStringSubmatch(expected); m != nil && received == m[1] {
			return true
		}
	}

	return false
}

// VerifyMethod is a validation method.
type VerifyMethod int

// validation methods.
const (
	VerifyMethodBasic VerifyMethod = iota
	VerifyMethodDigestMD5
	VerifyMethodDigestSHA256
)

// Verify verifies a request sent by a client against a set of credentials.
// It implements RFC 2617 Digest (MD5 and SHA-256) and Basic authentication.
func Verify(
	req *base.Request,
	user string,
	pass string,
	methods []VerifyMethod,
	realm string,
	nonce string,
) error {
	if methods == nil {
		// disable VerifyMethodDigestSHA256 unless explicitly set
		// since it prevents some clients from authenticating
		methods = []VerifyMethod{VerifyMethodBasic, VerifyMethodDigestMD5}
	}

	var auth headers.Authorization
	err := auth.Read(req.Header["Authorization"])
	if err != nil {
		return err
	}

	switch auth.Method {
	case headers.AuthDigest:
		dv := auth.DigestValues

		algorithm := algorithmMD5
		if dv.Algorithm != nil {
			algorithm = *dv.Algorithm
		}

		switch {
		case algorithm == algorithmMD5 && contains(methods, VerifyMethodDigestMD5):
		case algorithm == algorithmSHA256 && contains(methods, VerifyMethodDigestSHA256):
		default:
			return fmt.Errorf("unsupported digest algorithm (%s)", algorithm)
		}

		if dv.Username == nil || dv.Realm == nil || dv.Nonce == nil ||
			dv.URI == nil || dv.Response == nil {
			return fmt.Errorf("digest header is missing required fields")
		}

		if !secureEqual(*dv.Nonce, nonce) {
			return fmt.Errorf("wrong nonce")
		}

		if !secureEqual(*dv.Realm, realm) {
			return fmt.Errorf("wrong realm")
		}

		if !secureEqual(*dv.Username, user) {
			return fmt.Errorf("authentication failed")
		}

		if !urlMatches(req.URL.String(), *dv.URI, req.Method == base.Setup) {
			return fmt.Errorf("wrong URL")
		}

		nc := ""
		if dv.NC != nil {
			nc = *dv.NC
		}

		cnonce := ""
		if dv.CNonce != nil {
			cnonce = *dv.CNonce
		}

		qop := ""
		if dv.QOP != nil {
			qop = *dv.QOP
		}

		var response string
		if algorithm == algorithmSHA256 {
			ha1 := sha256Hex(user + ":" + realm + ":" + pass)
			ha2 := sha256Hex(string(req.Method) + ":" + *dv.URI)
			response = sha256Hex(ha1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2)
		} else {
			ha1 := md5Hex(user + ":" + realm + ":" + pass)
			ha2 := md5Hex(string(req.Method) + ":" + *dv.URI)
			response = md5Hex(ha1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2)
		}

		if !secureEqual(*dv.Response, response) {
			return fmt.Errorf("authentication failed")
		}

	case headers.AuthBasic:
		if !contains(methods, VerifyMethodBasic) {
			return fmt.Errorf("basic authentication is not allowed")
		}

		if !secureEqual(auth.BasicUser, user) {
			return fmt.Errorf("authentication failed")
		}

		if !secureEqual(auth.BasicPass, pass) {
			return fmt.Errorf("authentication failed")
		}

	default:
		return fmt.Errorf("no supported authentication methods found")
	}

	return nil
}
