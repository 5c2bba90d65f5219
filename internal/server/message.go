package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/pokey/internal/game"
	"github.com/lox/pokey/internal/registry"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// decode unmarshals the message data into v. Missing data decodes as an
// empty object.
func (m *Message) decode(v any) error {
	data := bytes.TrimSpace(m.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Client → Server Messages

type CreateTableData struct {
	Name          string `json:"name,omitempty"`
	MaxSeats      int    `json:"maxSeats,omitempty"`
	SmallBlind    int    `json:"smallBlind,omitempty"`
	BigBlind      int    `json:"bigBlind,omitempty"`
	StartingStack int    `json:"startingStack,omitempty"`
}

type JoinTableData struct {
	TableID    string `json:"tableId"`
	PlayerName string `json:"playerName,omitempty"`
	Seat       *int   `json:"seat,omitempty"`
}

type SitData struct {
	Seat *int `json:"seat"`
}

type ActionData struct {
	Action      string `json:"action"`
	RaiseAmount int    `json:"raiseAmount,omitempty"`
}

// Server → Client Messages

type WelcomeData struct {
	ClientID string `json:"clientId"`
}

type TableCreatedData struct {
	TableID string `json:"tableId"`
	Name    string `json:"name"`
}

type TableListData struct {
	Tables []game.Summary `json:"tables"`
}

type ShowdownData struct {
	TableID string `json:"tableId"`
	*game.Showdown
}

type PlayerTimeoutData struct {
	TableID string `json:"tableId"`
	Seat    int    `json:"seat"`
	Name    string `json:"name"`
}

type TableLeftData struct {
	TableID string `json:"tableId,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// eventMessage converts a registry event into its wire message
func eventMessage(ev registry.Event) (*Message, error) {
	switch ev := ev.(type) {
	case registry.StateEvent:
		return NewMessage(MessageType(ev.Type), ev.Snapshot)
	case registry.ShowdownEvent:
		return NewMessage(MessageTypeShowdown, ShowdownData{TableID: ev.TableID, Showdown: ev.Showdown})
	case registry.TimeoutEvent:
		return NewMessage(MessageTypePlayerTimeout, PlayerTimeoutData{TableID: ev.TableID, Seat: ev.Seat, Name: ev.Name})
	case registry.LeftEvent:
		return NewMessage(MessageTypeTableLeft, TableLeftData{TableID: ev.TableID})
	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}
}
