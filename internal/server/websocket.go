package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kode4food/caravan/topic"
	"github.com/tidwall/gjson"

	"github.com/Heropr/ask-me-anything/pkg/api"
	"github.com/Heropr/ask-me-anything/pkg/log"
	"github.com/Heropr/ask-me-anything/pkg/util"
)

type (
	// Client represents a WebSocket client connection. It streams engine
	// events once subscribed and applies the commands it receives
	Client struct {
		server     *Server
		conn       *websocket.Conn
		consumer   topic.Consumer[api.Event]
		types      util.Set[api.EventType]
		subscribed bool
		closeOnce  sync.Once
	}

	command func(c *Client, data gjson.Result) error
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 4096
	wsBufferSize       = 1024
	incomingBufferSize = 16

	msgSubscribe  = "subscribe"
	msgSubscribed = "subscribed"
	msgError      = "error"
)

var (
	ErrInvalidCommand = errors.New("invalid command")
	ErrUnknownCommand = errors.New("unknown command")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var commands = map[string]command{
	"startFlow": startFlowCommand,
	"choice":    choiceCommand,
	"form":      formCommand,
	"entity":    entityCommand,
	"action":    actionCommand,
	"ask":       askCommand,
	"truncate":  truncateCommand,
	"back":      simpleCommand((*Server).goBack),
	"cancel":    simpleCommand((*Server).cancel),
	"complete":  simpleCommand((*Server).complete),
	"clear":     simpleCommand((*Server).clear),
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return
	}

	client := &Client{
		server:   s,
		conn:     conn,
		consumer: s.stream.NewConsumer(),
		types:    util.Set[api.EventType]{},
	}
	s.registerWebSocket(client)
	go client.run()
}

// Close disconnects the client
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}

func (c *Client) run() {
	defer func() {
		c.server.unregisterWebSocket(c)
		c.consumer.Close()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	for {
		select {
		case message, ok := <-incoming:
			if !ok {
				return
			}
			c.handleMessage(message)

		case event, ok := <-c.consumer.Receive():
			if !ok {
				return
			}
			if !c.sendEventIfMatched(event) {
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

func (c *Client) readMessages(incoming chan []byte) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			close(incoming)
			return
		}
		incoming <- message
	}
}

func (c *Client) handleMessage(message []byte) {
	if !gjson.ValidBytes(message) {
		slog.Error("Failed to parse WebSocket message",
			log.ErrorString("invalid JSON"))
		c.sendError("", ErrInvalidCommand)
		return
	}

	msg := gjson.ParseBytes(message)
	typ := msg.Get("type").String()
	if typ == msgSubscribe {
		c.handleSubscribe(msg.Get("data"))
		return
	}

	cmd, ok := commands[typ]
	if !ok {
		c.sendError(typ, fmt.Errorf("%w: %q", ErrUnknownCommand, typ))
		return
	}
	if err := cmd(c, msg.Get("data")); err != nil {
		slog.Warn("WebSocket command failed",
			slog.String("command", typ),
			log.Error(err))
		c.sendError(typ, err)
	}
}

func (c *Client) handleSubscribe(data gjson.Result) {
	types := util.Set[api.EventType]{}
	for _, t := range data.Get("event_types").Array() {
		types.Add(api.EventType(t.String()))
	}
	c.types = types
	c.subscribed = true

	session, err := json.Marshal(c.server.engine.Session())
	if err != nil {
		slog.Error("Failed to marshal session",
			log.Error(err))
		return
	}
	c.write(api.SubscribedResult{
		Type: msgSubscribed,
		Data: session,
	})
}

func (c *Client) sendEventIfMatched(ev api.Event) bool {
	if !c.subscribed {
		return true
	}
	if !c.types.IsEmpty() && !c.types.Contains(ev.Type) {
		return true
	}

	data, err := json.Marshal(ev.Data)
	if err != nil {
		slog.Error("Failed to marshal event",
			log.EventType(ev.Type),
			log.Error(err))
		return true
	}
	return c.write(&api.WebSocketEvent{
		Type:      ev.Type,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		Sequence:  ev.Sequence,
	})
}

func (c *Client) sendError(cmd string, err error) {
	c.write(api.CommandError{
		Type:    msgError,
		Command: cmd,
		Error:   err.Error(),
	})
}

func (c *Client) write(msg any) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Error("WebSocket write failed",
			log.Error(err))
		return false
	}
	return true
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}

func startFlowCommand(c *Client, data gjson.Result) error {
	id := data.Get("flow_id").String()
	if id == "" {
		return ErrMissingFlowID
	}
	return c.server.engine.TryStartFlow(api.FlowID(id))
}

func choiceCommand(c *Client, data gjson.Result) error {
	ch := data.Get("choice")
	if !ch.Get("id").Exists() {
		return fmt.Errorf("%w: choice.id is required", ErrInvalidCommand)
	}
	c.server.engine.HandleChoice(api.Choice{
		ID:    ch.Get("id").String(),
		Label: ch.Get("label").String(),
		Icon:  ch.Get("icon").String(),
	})
	return nil
}

func formCommand(c *Client, data gjson.Result) error {
	form, ok := data.Get("data").Value().(map[string]any)
	if !ok {
		return fmt.Errorf("%w: data must be an object", ErrInvalidCommand)
	}
	c.server.engine.HandleFormSubmit(form)
	return nil
}

func entityCommand(c *Client, data gjson.Result) error {
	entity, ok := data.Get("entity").Value().(map[string]any)
	if !ok {
		return fmt.Errorf("%w: entity must be an object", ErrInvalidCommand)
	}
	c.server.engine.HandleEntitySelect(api.Entity(entity))
	return nil
}

func actionCommand(c *Client, data gjson.Result) error {
	action := data.Get("action")
	if !action.Get("id").Exists() {
		return fmt.Errorf("%w: action.id is required", ErrInvalidCommand)
	}
	c.server.engine.HandleAction(api.CardAction{
		ID:    action.Get("id").String(),
		Label: action.Get("label").String(),
	})
	return nil
}

func askCommand(c *Client, data gjson.Result) error {
	question := data.Get("question").String()
	if question == "" {
		return ErrMissingQuestion
	}
	answer, _, task := c.server.answer(question, data.Get("task").Bool())
	c.server.engine.AddQAEntry(question, answer, task)
	return nil
}

func truncateCommand(c *Client, data gjson.Result) error {
	index := data.Get("index")
	if index.Type != gjson.Number {
		return fmt.Errorf("%w: index must be a number", ErrInvalidCommand)
	}
	c.server.engine.TruncateConversation(int(index.Int()))
	return nil
}

func simpleCommand(fn func(*Server)) command {
	return func(c *Client, _ gjson.Result) error {
		fn(c.server)
		return nil
	}
}

func (s *Server) goBack() {
	s.engine.GoBack()
}

func (s *Server) cancel() {
	s.engine.CancelFlow()
}

func (s *Server) complete() {
	s.engine.CompleteFlow()
}

func (s *Server) clear() {
	s.engine.ClearConversation()
}
