package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramIDAcceptsNumberAndString(t *testing.T) {
	var body struct {
		A TelegramID `json:"a"`
		B TelegramID `json:"b"`
		C TelegramID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":123456789,"b":"123456789","c":" 00123456789 "}`), &body))

	assert.Equal(t, TelegramID("123456789"), body.A)
	assert.Equal(t, body.A, body.B)
	assert.Equal(t, body.A, body.C)
	assert.Equal(t, "123_123456789", RegistryKey("123", body.A))
}

func TestTelegramIDRejectsGarbage(t *testing.T) {
	var body struct {
		ID TelegramID `json:"id"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"id":"abc"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1.5}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"id":0}`), &body))
}

func TestTelegramIDEmptyIsZero(t *testing.T) {
	var body struct {
		ID TelegramID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":""}`), &body))
	assert.True(t, body.ID.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &body))
	assert.True(t, body.ID.IsZero())
}

func TestTotalQuantitySumsUnits(t *testing.T) {
	gifts := []GiftRecord{{Quantity: 1}, {Quantity: 3}}
	assert.Equal(t, 4, TotalQuantity(gifts))
}
