package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSlackSenderSend(t *testing.T) {
	var gotBody slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("unmarshal request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewSlackSender(5)
	if err := sender.Send(srv.URL, "#releases", "Search rollout moved from planning to in_development"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotBody.Text != "Search rollout moved from planning to in_development" {
		t.Errorf("text = %q", gotBody.Text)
	}
	if gotBody.Channel != "#releases" {
		t.Errorf("channel = %q, want #releases", gotBody.Channel)
	}
}

func TestSlackSenderNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	sender := NewSlackSender(5)
	if err := sender.Send(srv.URL, "", "hello"); err == nil {
		t.Fatal("expected error on 403 response")
	}
}
