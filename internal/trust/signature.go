package trust

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"

	dErrors "order-gateway/pkg/domain-errors"
)

// signatureParam is excluded from the canonical message.
const signatureParam = "signature"

// SignatureStrategy trusts requests relayed by a front-door proxy that signs
// the query string with a shared secret.
type SignatureStrategy struct {
	secret string
	shop   string
}

// NewSignatureStrategy builds the strategy. shop, when non-empty, is the only
// tenant the gateway will serve.
func NewSignatureStrategy(secret, shop string) *SignatureStrategy {
	return &SignatureStrategy{secret: secret, shop: shop}
}

// Verify recomputes the canonical HMAC over all query parameters except the
// signature itself and compares in constant time. Everything ambiguous fails
// closed.
func (s *SignatureStrategy) Verify(_ http.ResponseWriter, r *http.Request) (Identity, error) {
	if s.secret == "" {
		return Identity{}, dErrors.New(dErrors.CodeInternal, "signing secret not configured")
	}

	params := r.URL.Query()
	provided := params.Get(signatureParam)
	if provided == "" {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "missing signature")
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(CanonicalMessage(params)))
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal is length-checked and constant time; never compare digests
	// with ==.
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "invalid signature")
	}

	shop := params.Get("shop")
	if s.shop != "" && shop != s.shop {
		return Identity{}, dErrors.New(dErrors.CodeForbidden, "unknown shop")
	}

	return Identity{Tenant: shop}, nil
}

// CanonicalMessage builds the deterministic string a signature is computed
// over: values grouped by key and joined with "," in original order, keys
// sorted byte-wise ascending, each key=value pair concatenated with no
// separator and no trailing delimiter.
func CanonicalMessage(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == signatureParam {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[k], ","))
	}
	return b.String()
}
