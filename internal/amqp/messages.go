package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeOp names the mutation that produced a change message.
type ChangeOp string

const (
	OpCreated ChangeOp = "created"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
)

// TransactionChangeMessage announces that a transaction was written.
// Consumers re-read the store; the message carries no payload beyond the id.
type TransactionChangeMessage struct {
	ID        string    `json:"id"`
	Op        ChangeOp  `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionChangeMessage(id string, op ChangeOp) *TransactionChangeMessage {
	return &TransactionChangeMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangeMessageFromJSON decodes a message and rejects unknown ops.
func TransactionChangeMessageFromJSON(data []byte) (*TransactionChangeMessage, error) {
	var msg TransactionChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return nil, fmt.Errorf("unknown change op %q", msg.Op)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("change message without id")
	}
	return &msg, nil
}
