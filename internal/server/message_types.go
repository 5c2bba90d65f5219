package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeCreateTable MessageType = "create_table"
	MessageTypeListTables  MessageType = "list_tables"
	MessageTypeJoinTable   MessageType = "join_table"
	MessageTypeLeaveTable  MessageType = "leave_table"
	MessageTypeSit         MessageType = "sit"
	MessageTypeStartHand   MessageType = "start_hand"
	MessageTypeAction      MessageType = "action"

	// Server to client messages
	MessageTypeWelcome       MessageType = "welcome"
	MessageTypeTableCreated  MessageType = "table_created"
	MessageTypeTableList     MessageType = "table_list"
	MessageTypeTableState    MessageType = "table_state"
	MessageTypeHandStarted   MessageType = "hand_started"
	MessageTypeStateUpdate   MessageType = "state_update"
	MessageTypeShowdown      MessageType = "showdown"
	MessageTypePlayerTimeout MessageType = "player_timeout"
	MessageTypeTableLeft     MessageType = "table_left"
	MessageTypeError         MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
