package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerChangedMessageJSON(t *testing.T) {
	msg := NewLedgerChangedMessage(3, 2024, -4500)

	data, err := msg.ToJSON()
	require.NoError(t, err)

	decoded, err := LedgerChangedMessageFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Month)
	assert.Equal(t, 2024, decoded.Year)
	assert.Equal(t, int64(-4500), decoded.EndingBalanceCents)
	assert.True(t, msg.Timestamp.Equal(decoded.Timestamp))
}

func TestLedgerChangedMessageFromJSONRejectsGarbage(t *testing.T) {
	_, err := LedgerChangedMessageFromJSON([]byte("{not json"))
	assert.Error(t, err)
}
