package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage announces that a month's entry set or balance changed.
// It carries only the month key and the new ending balance; consumers fetch
// whatever detail they need from the store.
type LedgerChangedMessage struct {
	Month              int       `json:"month"`
	Year               int       `json:"year"`
	EndingBalanceCents int64     `json:"ending_balance_cents"`
	Timestamp          time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(month, year int, endingBalanceCents int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Month:              month,
		Year:               year,
		EndingBalanceCents: endingBalanceCents,
		Timestamp:          time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
