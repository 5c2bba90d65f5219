package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokey/internal/game"
	"github.com/lox/pokey/internal/registry"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Outgoing messages buffered per client before it is dropped
	sendBufferSize = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection represents a WebSocket connection to a client
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	registry  *registry.Registry
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(id string, conn *websocket.Conn, reg *registry.Registry, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:       id,
		conn:     conn,
		send:     make(chan *Message, sendBufferSize),
		registry: reg,
		logger:   logger.WithPrefix("conn").With("client", id),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the client id assigned to this connection
func (c *Connection) ID() string {
	return c.id
}

// Start begins handling the connection. onClose runs once the read loop
// ends, after the connection is closed.
func (c *Connection) Start(onClose func(*Connection)) {
	go c.writePump()
	go func() {
		c.readPump()
		onClose(c)
	}()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client without blocking. A client
// that falls a full buffer behind is disconnected.
func (c *Connection) SendMessage(msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// send channel closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "type", msg.Type)
			err = ErrConnectionClosed
		}
	}()

	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if isDecodeError(err) {
				c.sendError(CodeInvalidMessage, "Invalid JSON")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeCreateTable:
		var data CreateTableData
		if err := msg.decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse create table data")
			return
		}
		c.handleCreateTable(data)

	case MessageTypeListTables:
		c.handleListTables()

	case MessageTypeJoinTable:
		var data JoinTableData
		if err := msg.decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse join table data")
			return
		}
		if data.TableID == "" {
			c.sendError(CodeInvalidMessage, "tableId required")
			return
		}
		c.handleJoinTable(data)

	case MessageTypeLeaveTable:
		c.handleLeaveTable()

	case MessageTypeSit:
		var data SitData
		if err := msg.decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse sit data")
			return
		}
		if data.Seat == nil {
			c.sendError(CodeInvalidMessage, "seat required")
			return
		}
		c.handleSit(*data.Seat)

	case MessageTypeStartHand:
		c.reply(c.registry.StartHand(c.id))

	case MessageTypeAction:
		var data ActionData
		if err := msg.decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse action data")
			return
		}
		action, err := game.ParseAction(data.Action)
		if err != nil {
			c.sendError(CodeInvalidAction, "Invalid action")
			return
		}
		if data.RaiseAmount < 0 {
			c.sendError(CodeInvalidMessage, "raiseAmount must not be negative")
			return
		}
		c.logger.Debug("Player action", "action", action, "amount", data.RaiseAmount)
		c.reply(c.registry.Act(c.id, action, data.RaiseAmount))

	default:
		c.sendError(CodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// reply reports a failed command to the client. Successful commands are
// answered by the events they publish.
func (c *Connection) reply(err error) {
	if err == nil {
		return
	}
	code := errorCode(err)
	if code == CodeInternal {
		c.logger.Error("Command failed", "error", err)
	} else {
		c.logger.Debug("Command rejected", "code", code, "error", err)
	}
	c.sendError(code, err.Error())
}

func (c *Connection) sendData(t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) handleCreateTable(data CreateTableData) {
	summary, err := c.registry.CreateTableWithConfig(game.Config{
		Name:          data.Name,
		MaxSeats:      data.MaxSeats,
		SmallBlind:    data.SmallBlind,
		BigBlind:      data.BigBlind,
		StartingStack: data.StartingStack,
	})
	if err != nil {
		c.sendError(CodeInvalidMessage, err.Error())
		return
	}
	c.sendData(MessageTypeTableCreated, TableCreatedData{TableID: summary.TableID, Name: summary.Name})
}

func (c *Connection) handleListTables() {
	c.sendData(MessageTypeTableList, TableListData{Tables: c.registry.ListTables()})
}

func (c *Connection) handleJoinTable(data JoinTableData) {
	c.logger.Info("Join table request", "table", data.TableID, "player", data.PlayerName)
	_, err := c.registry.Join(c.id, data.TableID, data.PlayerName, data.Seat)
	c.reply(err)
}

func (c *Connection) handleLeaveTable() {
	if _, ok := c.registry.TableOf(c.id); !ok {
		c.sendData(MessageTypeTableLeft, TableLeftData{})
		return
	}
	c.reply(c.registry.Leave(c.id))
}

func (c *Connection) handleSit(seat int) {
	_, err := c.registry.Sit(c.id, seat)
	c.reply(err)
}
