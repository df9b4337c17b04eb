package oauth

import (
	"strings"
	"testing"
	"time"
)

func fixedSigner(creds Credentials) *OAuth1 {
	return NewOAuth1(creds,
		WithClock(func() time.Time { return time.Unix(1318622958, 0) }),
		WithNonce(func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" }),
	)
}

func TestOAuth1_Deterministic(t *testing.T) {
	creds := Credentials{
		ConsumerKey:       "xvz1evFS4wEEPTGEFPHBog",
		ConsumerSecret:    "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		AccessToken:       "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		AccessTokenSecret: "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	}

	params := map[string]string{
		"status":           "Hello Ladies + Gentlemen, a signed OAuth request!",
		"include_entities": "true",
	}

	h1, err := fixedSigner(creds).Sign("post", "https://api.twitter.com/1.1/statuses/update.json", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := fixedSigner(creds).Sign("post", "https://api.twitter.com/1.1/statuses/update.json", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h1["Authorization"] != h2["Authorization"] {
		t.Error("signature not deterministic with pinned nonce and clock")
	}

	auth := h1["Authorization"]
	if !strings.HasPrefix(auth, "OAuth ") {
		t.Fatalf("header should start with OAuth: %q", auth)
	}
	for _, want := range []string{
		`oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog"`,
		`oauth_signature_method="HMAC-SHA1"`,
		`oauth_timestamp="1318622958"`,
		`oauth_token="370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb"`,
		`oauth_version="1.0"`,
		`oauth_signature="`,
	} {
		if !strings.Contains(auth, want) {
			t.Errorf("header missing %s\nheader: %s", want, auth)
		}
	}
	// the request params themselves are signed, never echoed in the header
	if strings.Contains(auth, "status=") || strings.Contains(auth, "include_entities") {
		t.Errorf("request params leaked into Authorization header: %s", auth)
	}
}

func TestOAuth1_SignatureDependsOnParams(t *testing.T) {
	creds := Credentials{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessTokenSecret: "as"}

	a, err := fixedSigner(creds).Sign("GET", "https://api.twitter.com/1.1/search/tweets.json",
		map[string]string{"q": "golang"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := fixedSigner(creds).Sign("GET", "https://api.twitter.com/1.1/search/tweets.json",
		map[string]string{"q": "gopher"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a["Authorization"] == b["Authorization"] {
		t.Error("different params must produce different signatures")
	}
}

func TestPercentEncode(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"An encoded string!", "An%20encoded%20string%21"},
		{"Dogs, Cats & Mice", "Dogs%2C%20Cats%20%26%20Mice"},
		{"☃", "%E2%98%83"},
		{"abcXYZ019-._~", "abcXYZ019-._~"},
	}
	for _, tc := range cases {
		if got := percentEncode(tc.in); got != tc.want {
			t.Errorf("percentEncode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBearer(t *testing.T) {
	h, err := NewBearer("AAAA-token").Sign("GET", "https://api.twitter.com/1.1/users/show.json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h["Authorization"] != "Bearer AAAA-token" {
		t.Errorf("Authorization = %q", h["Authorization"])
	}
}

func TestCredentials_Signer(t *testing.T) {
	if _, err := (Credentials{}).Signer(); err != ErrNoCredentials {
		t.Errorf("empty credentials: err = %v, want ErrNoCredentials", err)
	}

	s, err := (Credentials{BearerToken: "tok"}).Signer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*Bearer); !ok {
		t.Errorf("expected *Bearer, got %T", s)
	}

	s, err = (Credentials{ConsumerKey: "ck", ConsumerSecret: "cs"}).Signer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*OAuth1); !ok {
		t.Errorf("expected *OAuth1, got %T", s)
	}
}
