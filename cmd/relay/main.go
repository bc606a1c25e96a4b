// Public relay that forwards HTTP traffic to office agents connected over
// WebSocket. Deployed on a box with a public address; the backend itself
// stays on the office network.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type agent struct {
	ID string
	WS *websocket.Conn
	mu sync.Mutex
}

var (
	agents   = map[string]*agent{}
	agentsMu sync.Mutex
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type requestMsg struct {
	Type    string            `json:"type"`
	ReqID   string            `json:"reqId"`
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
	Body    interface{}       `json:"body"`
}

type responseMsg struct {
	Type   string      `json:"type"`
	ReqID  string      `json:"reqId"`
	Status int         `json:"status"`
	Body   interface{} `json:"body"`
}

// pendingRequests tracks in-flight forwarded requests by id. Channels are
// 1-buffered and removed on delivery or abandonment, so a late agent
// response can never block the read loop on a request nobody waits for.
type pendingRequests struct {
	mu sync.Mutex
	m  map[string]chan responseMsg
}

func newPendingRequests() *pendingRequests {
	return &pendingRequests{m: map[string]chan responseMsg{}}
}

// register must be called before the request is written to the agent, or a
// fast response could arrive with nowhere to go.
func (p *pendingRequests) register(reqID string) chan responseMsg {
	ch := make(chan responseMsg, 1)
	p.mu.Lock()
	p.m[reqID] = ch
	p.mu.Unlock()
	return ch
}

// resolve hands a response to the waiting client, if any. The send happens
// outside the lock and never blocks; a response for an abandoned request is
// dropped.
func (p *pendingRequests) resolve(reqID string, resp responseMsg) bool {
	p.mu.Lock()
	ch, ok := p.m[reqID]
	if ok {
		delete(p.m, reqID)
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- resp:
		return true
	default:
		return false
	}
}

// abandon drops a request that timed out client-side.
func (p *pendingRequests) abandon(reqID string) {
	p.mu.Lock()
	delete(p.m, reqID)
	p.mu.Unlock()
}

var pending = newPendingRequests()

func main() {
	r := gin.Default()

	r.GET("/agent", handleAgentWS)
	r.NoRoute(handleClientRequest)

	log.Println("RELAY: Public relay running on :5069")
	r.Run(":5069")
}

func handleAgentWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	var agentID string

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if agentID != "" {
				agentsMu.Lock()
				delete(agents, agentID)
				agentsMu.Unlock()
				log.Printf("RELAY: Agent %s disconnected", agentID)
			}
			return
		}

		var data map[string]interface{}
		if err := json.Unmarshal(msg, &data); err != nil {
			continue
		}

		switch data["type"] {
		case "register":
			agentID, _ = data["id"].(string)
			log.Printf("RELAY: Agent registered: %s", agentID)

			agentsMu.Lock()
			agents[agentID] = &agent{ID: agentID, WS: ws}
			agentsMu.Unlock()

		case "response":
			reqID, _ := data["reqId"].(string)
			status, _ := data["status"].(float64)
			delivered := pending.resolve(reqID, responseMsg{
				Type:   "response",
				ReqID:  reqID,
				Status: int(status),
				Body:   data["body"],
			})
			if !delivered {
				log.Printf("RELAY: Dropping response for abandoned request %s", reqID)
			}
		}
	}
}

func handleClientRequest(c *gin.Context) {
	agentID := c.GetHeader("X-Agent-ID")
	if agentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Agent-ID"})
		return
	}

	agentsMu.Lock()
	target, ok := agents[agentID]
	agentsMu.Unlock()

	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Agent offline"})
		return
	}

	var body interface{}
	c.ShouldBindJSON(&body) // a missing body is fine

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	reqID := fmt.Sprintf("%d", time.Now().UnixNano())

	msg := requestMsg{
		Type:    "request",
		ReqID:   reqID,
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Headers: headers,
		Body:    body,
	}

	data, _ := json.Marshal(msg)

	respChan := pending.register(reqID)

	target.mu.Lock()
	target.WS.WriteMessage(websocket.TextMessage, data)
	target.mu.Unlock()

	select {
	case resp := <-respChan:
		c.JSON(resp.Status, resp.Body)

	case <-time.After(10 * time.Second):
		pending.abandon(reqID)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Timeout"})
	}
}
