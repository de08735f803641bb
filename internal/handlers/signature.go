package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"net/http"
)

// SignatureScheme describes one signature header a provider may send
type SignatureScheme struct {
	Header string
	Prefix string // e.g., "sha256=" for GitHub
	Hash   func() hash.Hash
}

var (
	githubSHA256 = SignatureScheme{Header: "X-Hub-Signature-256", Prefix: "sha256=", Hash: sha256.New}
	githubSHA1   = SignatureScheme{Header: "X-Hub-Signature", Prefix: "sha1=", Hash: sha1.New}
	giteaSHA256  = SignatureScheme{Header: "X-Gitea-Signature", Prefix: "", Hash: sha256.New}
)

// Sign returns the header value a sender would compute for body
func (s SignatureScheme) Sign(body []byte, secret string) string {
	mac := hmac.New(s.Hash, []byte(secret))
	mac.Write(body)
	return s.Prefix + hex.EncodeToString(mac.Sum(nil))
}

// verifySignature checks the first signature header present, in scheme order.
// The whole header value, prefix included, must match exactly.
func verifySignature(header http.Header, body []byte, secret string, schemes []SignatureScheme) (string, bool) {
	if secret == "" {
		return "", false
	}

	for _, s := range schemes {
		provided := header.Get(s.Header)
		if provided == "" {
			continue
		}
		// Compare signatures using constant time comparison to prevent timing attacks
		return s.Header, hmac.Equal([]byte(provided), []byte(s.Sign(body, secret)))
	}

	return "", false
}
