package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/nobel/internal/ui"
)

func TestReadSSE(t *testing.T) {
	stream := strings.Join([]string{
		":keepalive",
		"",
		"id:1",
		"event:prizes.prize.created",
		`data:{"prize":{"year":"2025","category":"peace"},"actor":"user"}`,
		"",
		"id:2",
		"event:prizes.prize.deleted",
		`data:{"year":"2025","category":"peace","removed":1,"actor":"admin"}`,
		"",
	}, "\n")

	var got []string
	if err := readSSE(strings.NewReader(stream), func(event, data string) {
		got = append(got, event)
	}); err != nil {
		t.Fatalf("readSSE: %v", err)
	}
	want := []string{"prizes.prize.created", "prizes.prize.deleted"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestFormatEvent(t *testing.T) {
	ui.ForceNoColor()
	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		topic string
		data  string
		want  string
	}{
		{
			name:  "created",
			topic: "prizes.prize.created",
			data:  `{"prize":{"year":"2025","category":"peace","laureates":[{"firstname":"Ada"}]},"actor":"user"}`,
			want:  "10:30:00 created 2025 peace (1 laureates) by user",
		},
		{
			name:  "unknown topic falls back to raw data",
			topic: "prizes.export.written",
			data:  `{}`,
			want:  "10:30:00 prizes.export.written {}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatEvent(tt.topic, []byte(tt.data), now); got != tt.want {
				t.Fatalf("formatEvent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWatchSSE(t *testing.T) {
	ui.ForceNoColor()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/stream" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("topics")
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("id:1\nevent:prizes.prize.deleted\ndata:{\"year\":\"1903\",\"category\":\"peace\",\"removed\":1,\"actor\":\"admin\"}\n\n"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := watchSSE(context.Background(), srv.URL+"/", "prizes.prize.deleted", &out); err != nil {
		t.Fatalf("watchSSE: %v", err)
	}
	if gotQuery != "prizes.prize.deleted" {
		t.Fatalf("topics query = %q", gotQuery)
	}
	if !strings.Contains(out.String(), "deleted 1903 peace by admin") {
		t.Fatalf("output = %q", out.String())
	}
}
