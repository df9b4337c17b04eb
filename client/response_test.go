package client

import (
	"testing"

	"github.com/kbukum/tweetkit/jsondata"
)

func decodeBody(t *testing.T, body string) *Response {
	t.Helper()
	data, err := jsondata.Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return &Response{StatusCode: 200, Data: data}
}

func TestResponse_ExtendedTextPromotion(t *testing.T) {
	resp := decodeBody(t, `{
		"id": 1,
		"text": "truncated...",
		"extended_tweet": {"full_text": "the whole story, no longer truncated"}
	}`)

	if got := resp.String("text"); got != "the whole story, no longer truncated" {
		t.Errorf("text = %q, want the extended full_text", got)
	}
}

func TestResponse_FullTextPromotion(t *testing.T) {
	resp := decodeBody(t, `{"full_text": "extended mode body", "id": 2}`)

	if got := resp.String("text"); got != "extended mode body" {
		t.Errorf("text = %q, want full_text", got)
	}
	if !resp.Has("text") {
		t.Error("Has(text) = false with full_text present")
	}
}

func TestResponse_Items(t *testing.T) {
	resp := decodeBody(t, `[{"id": 1}, {"id": 2}]`)
	if got := len(resp.Items("")); got != 2 {
		t.Errorf("len(Items) = %d, want 2", got)
	}

	resp = decodeBody(t, `{"statuses": [{"id": 1}], "search_metadata": {}}`)
	if got := len(resp.Items("statuses")); got != 1 {
		t.Errorf("len(Items(statuses)) = %d, want 1", got)
	}

	// non-array bodies yield nothing
	resp = decodeBody(t, `{"id": 1}`)
	if resp.Items("") != nil {
		t.Error("Items() on object body should be nil")
	}
}

func TestResponse_NonObjectBody(t *testing.T) {
	resp := decodeBody(t, `[1, 2, 3]`)
	if resp.Has("text") {
		t.Error("Has() on array body = true")
	}
	if resp.Get("text") != nil {
		t.Error("Get() on array body != nil")
	}
	if resp.Object() != nil {
		t.Error("Object() on array body != nil")
	}
}
