package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func captureServer(t *testing.T, status int) (*httptest.Server, *PushRequest) {
	t.Helper()
	captured := &PushRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %q, want /loki/api/v1/push", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, captured); err != nil {
			t.Errorf("unmarshal push body: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestPushEvent(t *testing.T) {
	srv, captured := captureServer(t, http.StatusNoContent)
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := PushEvent(context.Background(), srv.URL, ts, `{"action":"otp_login"}`, map[string]string{"action": "otp_login"})
	if err != nil {
		t.Fatalf("PushEvent: %v", err)
	}
	if len(captured.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(captured.Streams))
	}
	stream := captured.Streams[0]
	if stream.Stream["job"] != "dastyar" {
		t.Errorf("job label = %q, want dastyar", stream.Stream["job"])
	}
	if stream.Stream["action"] != "otp_login" {
		t.Errorf("action label = %q", stream.Stream["action"])
	}
	if len(stream.Values) != 1 || len(stream.Values[0]) != 2 {
		t.Fatalf("values = %v", stream.Values)
	}
	ns, err := strconv.ParseInt(stream.Values[0][0], 10, 64)
	if err != nil {
		t.Fatalf("timestamp not numeric: %v", err)
	}
	if ns != ts.UnixNano() {
		t.Errorf("timestamp = %d, want %d", ns, ts.UnixNano())
	}
}

func TestPushEvent_SanitizesLabels(t *testing.T) {
	srv, captured := captureServer(t, http.StatusNoContent)
	err := PushEvent(context.Background(), srv.URL, time.Now(), "line", map[string]string{"resource": "UserAuth/LoginByOtp"})
	if err != nil {
		t.Fatalf("PushEvent: %v", err)
	}
	if got := captured.Streams[0].Stream["resource"]; got != "UserAuth_LoginByOtp" {
		t.Errorf("resource label = %q, want UserAuth_LoginByOtp", got)
	}
}

func TestPushEvent_EmptyBaseURL(t *testing.T) {
	if err := PushEvent(context.Background(), "", time.Now(), "line", nil); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestPushEvent_Non2xx(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError)
	if err := PushEvent(context.Background(), srv.URL, time.Now(), "line", nil); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestPushEventJSON_ExtractsLabelsAndTimestamp(t *testing.T) {
	srv, captured := captureServer(t, http.StatusNoContent)
	raw := []byte(`{"id":"e1","action":"otp_sent","resource":"UserAuth/SendOtpCode","phone":"09123456789","createdAt":"2025-03-01T12:00:00Z"}`)
	if err := PushEventJSON(context.Background(), srv.URL, raw); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	stream := captured.Streams[0]
	if stream.Stream["action"] != "otp_sent" {
		t.Errorf("action label = %q", stream.Stream["action"])
	}
	if stream.Stream["resource"] != "UserAuth_SendOtpCode" {
		t.Errorf("resource label = %q", stream.Stream["resource"])
	}
	want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano()
	ns, _ := strconv.ParseInt(stream.Values[0][0], 10, 64)
	if ns != want {
		t.Errorf("timestamp = %d, want %d", ns, want)
	}
	if stream.Values[0][1] != string(raw) {
		t.Errorf("line = %q, want raw JSON", stream.Values[0][1])
	}
}

func TestPushEventJSON_MalformedFallsBackToRawLine(t *testing.T) {
	srv, captured := captureServer(t, http.StatusNoContent)
	if err := PushEventJSON(context.Background(), srv.URL, []byte("not json")); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	stream := captured.Streams[0]
	if _, ok := stream.Stream["action"]; ok {
		t.Error("malformed payload should not produce an action label")
	}
	if stream.Values[0][1] != "not json" {
		t.Errorf("line = %q, want raw input", stream.Values[0][1])
	}
}
