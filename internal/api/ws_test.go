package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/logger"
)

func TestRunFeedBroadcast(t *testing.T) {
	feed := NewRunFeed(logger.NewNop())
	defer feed.Close()

	srv := httptest.NewServer(http.HandlerFunc(feed.Serve))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Registration happens on the server goroutine right after the
	// upgrade; give it a beat before broadcasting.
	time.Sleep(50 * time.Millisecond)

	sent := &contracts.PipelineRun{
		ID:      "run-1",
		Trigger: "manual",
		Status:  contracts.RunSuccess,
		Scored:  7,
	}
	feed.NotifyRun(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got contracts.PipelineRun
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}

	if got.ID != sent.ID || got.Status != sent.Status || got.Scored != sent.Scored {
		t.Errorf("received %+v, want %+v", got, sent)
	}
}

func TestRunFeedNoSubscribers(t *testing.T) {
	feed := NewRunFeed(logger.NewNop())
	defer feed.Close()

	// Must not block or panic with nobody listening.
	feed.NotifyRun(&contracts.PipelineRun{ID: "run-2"})
}
