package bridge

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Config describes how the agent reaches the public relay and the local API.
type Config struct {
	PublicWS   string // ws://host:port/agent
	LocalURL   string // http://127.0.0.1:8080
	AgentID    string
	RetryDelay time.Duration
}

type requestMsg struct {
	Type   string      `json:"type"`
	ReqID  string      `json:"reqId"`
	Method string      `json:"method"`
	Path   string      `json:"path"`
	Body   interface{} `json:"body"`
}

type responseMsg struct {
	Type   string      `json:"type"`
	ReqID  string      `json:"reqId"`
	Status int         `json:"status"`
	Body   interface{} `json:"body"`
}

// Start connects to the relay and replays forwarded requests against the
// local API, reconnecting forever. Intended to run in its own goroutine.
func Start(cfg Config) {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	for {
		run(cfg)
		log.Println("BRIDGE: Disconnected from relay, reconnecting...")
		time.Sleep(cfg.RetryDelay)
	}
}

func run(cfg Config) {
	ws, _, err := websocket.DefaultDialer.Dial(cfg.PublicWS, nil)
	if err != nil {
		log.Printf("BRIDGE: WebSocket error: %v", err)
		return
	}
	defer ws.Close()

	ws.WriteJSON(map[string]interface{}{
		"type": "register",
		"id":   cfg.AgentID,
	})
	log.Printf("BRIDGE: Registered as agent %s", cfg.AgentID)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var req requestMsg
		if err := json.Unmarshal(msg, &req); err != nil || req.Type != "request" {
			continue
		}

		respBody, status := doLocalRequest(cfg.LocalURL, req)

		ws.WriteJSON(responseMsg{
			Type:   "response",
			ReqID:  req.ReqID,
			Status: status,
			Body:   respBody,
		})
	}
}

func doLocalRequest(base string, req requestMsg) (interface{}, int) {
	bodyBytes, _ := json.Marshal(req.Body)

	httpReq, err := http.NewRequest(req.Method, base+req.Path, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return "invalid forwarded request", http.StatusBadRequest
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "local request failed", http.StatusInternalServerError
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed interface{}
	json.Unmarshal(raw, &parsed)
	return parsed, resp.StatusCode
}
