package client

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/tweetkit/oauth"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(Config{Signer: oauth.NewBearer("test-token")}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestBuildRequest_Deterministic(t *testing.T) {
	c := newTestClient(t)
	ep := c.API().Child("statuses").Child("update")
	params := Params{"status": "hello", "trim_user": true}

	first, err := c.buildRequest("POST", ep, params, nil)
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}
	second, err := c.buildRequest("POST", ep, params, nil)
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("building the same call twice differs:\n%+v\n%+v", first, second)
	}
}

func TestBuildRequest_ParamTypes(t *testing.T) {
	c := newTestClient(t)
	ep := c.API().Child("statuses").Child("user_timeline")

	req, err := c.buildRequest("GET", ep, Params{
		"screen_name":     "twitter",
		"count":           200,
		"max_id":          int64(9223372036854775807),
		"trim_user":       true,
		"include_rts":     false,
		"exclude":         []string{"replies", "retweets"},
		"contributor_ids": nil,
	}, nil)
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	want := map[string]string{
		"screen_name": "twitter",
		"count":       "200",
		"max_id":      "9223372036854775807",
		"trim_user":   "true",
		"include_rts": "false",
		"exclude":     "replies,retweets",
	}
	if !reflect.DeepEqual(req.Params, want) {
		t.Errorf("Params = %v, want %v", req.Params, want)
	}
	if _, ok := req.Params["contributor_ids"]; ok {
		t.Error("nil param should be omitted")
	}
}

func TestBuildRequest_UnsupportedMethod(t *testing.T) {
	c := newTestClient(t)

	_, err := c.buildRequest("TRACE", c.API().Child("statuses"), nil, nil)
	if err == nil {
		t.Fatal("expected error for unsupported method")
	}
	var e *Error
	if !errors.As(err, &e) || e.Code != ErrCodeUnsupportedMethod {
		t.Errorf("error = %v, want unsupported method", err)
	}
}

func TestBuildRequest_UnsupportedParamType(t *testing.T) {
	c := newTestClient(t)

	_, err := c.buildRequest("GET", c.API().Child("search"), Params{
		"q": struct{ X int }{1},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported parameter type") {
		t.Errorf("error = %v, want unsupported parameter type", err)
	}
}

func TestBuildRequest_MethodCase(t *testing.T) {
	c := newTestClient(t)

	req, err := c.buildRequest("get", c.API().Child("statuses"), nil, nil)
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}
	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
}

func TestBuildRequest_MediaFileBecomesMultipart(t *testing.T) {
	c := newTestClient(t)
	ep := c.Endpoint("upload").Child("media").Child("upload")

	req, err := c.buildRequest("POST", ep, Params{
		"media":          MediaFile{Name: "pic.png", Data: []byte{1, 2, 3}},
		"media_category": "tweet_image",
	}, nil)
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	if req.Multipart == nil {
		t.Fatal("expected a multipart body")
	}
	if req.Params != nil {
		t.Error("wire params should be nil for multipart requests")
	}
	if got := req.Multipart.Fields["media_category"]; got != "tweet_image" {
		t.Errorf("field media_category = %q", got)
	}
	if len(req.Multipart.Files) != 1 || req.Multipart.Files[0].FieldName != "media" {
		t.Errorf("Files = %+v, want one media file", req.Multipart.Files)
	}
}

func TestBuildRequest_SuffixOverride(t *testing.T) {
	c := newTestClient(t)
	ep := c.Endpoint("stream").Child("statuses").Child("filter")

	req, err := c.buildRequest("POST", ep, nil, []CallOption{WithSuffix("")})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}
	if strings.HasSuffix(req.URL, ".json") {
		t.Errorf("URL = %q, suffix override not applied", req.URL)
	}
}
