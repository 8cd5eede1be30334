package testutil

import (
	"context"
	"io"
	"net/http"
	"testing"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	AssertNil(t, err)
	resp, err := http.DefaultClient.Do(req) //nolint:gosec // URL is from httptest.Server (localhost)
	AssertNil(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	AssertNil(t, err)
	return resp.StatusCode, string(body)
}

func TestMockServer_RecordsRequests(t *testing.T) {
	ms := NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	})
	defer ms.Close()

	AssertTrue(t, ms.LastRequest() == nil)

	for _, path := range []string{"/departures/PAD/10", "/departures/RDG/10", "/departures/PAD/to/RDG/10"} {
		status, body := get(t, ms.URL+path)
		AssertEqual(t, status, http.StatusOK)
		AssertEqual(t, body, path)
	}

	AssertEqual(t, ms.RequestCount(), 3)
	AssertEqual(t, ms.LastRequest().URL.Path, "/departures/PAD/to/RDG/10")

	reqs := ms.Requests()
	AssertLen(t, reqs, 3)
	AssertEqual(t, reqs[0].Method, http.MethodGet)

	// the returned slice is a copy
	reqs[0] = nil
	AssertTrue(t, ms.Requests()[0] != nil)

	ms.Reset()
	AssertEqual(t, ms.RequestCount(), 0)
	AssertTrue(t, ms.LastRequest() == nil)
}

func TestNewFeedServer(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"board", http.StatusOK, SampleBoardResponse, "London Paddington"},
		{"platforms", http.StatusOK, SamplePlatformBoardResponse, "Clapham Junction"},
		{"unavailable", http.StatusServiceUnavailable, `{"message":"down"}`, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := NewFeedServer(tt.status, tt.body)
			defer ms.Close()

			status, body := get(t, ms.URL+"/departures/PAD/10")
			AssertEqual(t, status, tt.status)
			AssertContains(t, body, tt.want)
			AssertEqual(t, ms.LastRequest().URL.Path, "/departures/PAD/10")
		})
	}
}
