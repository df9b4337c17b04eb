package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OAuth1 signs requests with HMAC-SHA1 per RFC 5849.
type OAuth1 struct {
	creds Credentials
	clock func() time.Time
	nonce func() string
}

// OAuth1Option customizes an OAuth1 signer. Used by tests to pin the
// timestamp and nonce.
type OAuth1Option func(*OAuth1)

// WithClock replaces the timestamp source.
func WithClock(clock func() time.Time) OAuth1Option {
	return func(o *OAuth1) { o.clock = clock }
}

// WithNonce replaces the nonce source.
func WithNonce(nonce func() string) OAuth1Option {
	return func(o *OAuth1) { o.nonce = nonce }
}

// NewOAuth1 creates an OAuth1 signer for the given credentials.
func NewOAuth1(creds Credentials, opts ...OAuth1Option) *OAuth1 {
	o := &OAuth1{
		creds: creds,
		clock: time.Now,
		nonce: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sign produces the OAuth1 Authorization header for one attempt.
func (o *OAuth1) Sign(method, rawurl string, params map[string]string) (map[string]string, error) {
	oauthParams := map[string]string{
		"oauth_consumer_key":     o.creds.ConsumerKey,
		"oauth_nonce":            o.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(o.clock().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if o.creds.AccessToken != "" {
		oauthParams["oauth_token"] = o.creds.AccessToken
	}

	base := signatureBase(strings.ToUpper(method), rawurl, params, oauthParams)
	key := percentEncode(o.creds.ConsumerSecret) + "&" + percentEncode(o.creds.AccessTokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	oauthParams["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{"Authorization": authorizationHeader(oauthParams)}, nil
}

// signatureBase builds the RFC 5849 signature base string.
func signatureBase(method, rawurl string, params, oauthParams map[string]string) string {
	pairs := make([]string, 0, len(params)+len(oauthParams))
	for k, v := range params {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	for k, v := range oauthParams {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	sort.Strings(pairs)

	return method + "&" + percentEncode(rawurl) + "&" + percentEncode(strings.Join(pairs, "&"))
}

// authorizationHeader assembles the "OAuth k=\"v\", ..." header value.
func authorizationHeader(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("OAuth ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(percentEncode(k))
		b.WriteString(`="`)
		b.WriteString(percentEncode(oauthParams[k]))
		b.WriteString(`"`)
	}
	return b.String()
}

// percentEncode implements RFC 3986 encoding: unreserved characters
// pass through, everything else becomes uppercase %XX.
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range []byte(s) {
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
		}
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	return 'A' <= c && c <= 'Z' ||
		'a' <= c && c <= 'z' ||
		'0' <= c && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
