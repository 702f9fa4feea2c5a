package httpx

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) requestLogs() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for scanner.Scan() {
		var entry map[string]any
		if json.Unmarshal(scanner.Bytes(), &entry) == nil && entry["msg"] == "http_request" {
			out = append(out, entry)
		}
	}
	return out
}

func TestActivityWebsocketIsAuditedAsSwitchingProtocols(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.admin(t)
	logs := &syncBuffer{}
	api.router.logger = slog.New(slog.NewJSONHandler(logs, nil))

	srv := httptest.NewServer(api.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/activity?access_token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101 handshake, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, entry := range logs.requestLogs() {
			if entry["path"] != "/ws/activity" {
				continue
			}
			if status, _ := entry["status"].(float64); int(status) != http.StatusSwitchingProtocols {
				t.Fatalf("upgrade logged with status %v", entry["status"])
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("upgrade request was never logged")
}
