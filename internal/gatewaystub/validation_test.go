package gatewaystub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidCardNumber(t *testing.T) {
	assert.True(t, validCardNumber("4111111111111111"))
	assert.True(t, validCardNumber("5555-5555-5555-4444"))
	assert.True(t, validCardNumber("3782 822463 10005"))
	assert.False(t, validCardNumber("4111111111111112"))
	assert.False(t, validCardNumber("411111"))
	assert.False(t, validCardNumber("4111abcd11111111"))
}

func TestValidVPA(t *testing.T) {
	assert.True(t, validVPA("user.name-1@okbank"))
	assert.False(t, validVPA("user@ok.bank"))
	assert.False(t, validVPA("@bank"))
	assert.False(t, validVPA("user"))
}

func TestCardNetwork(t *testing.T) {
	assert.Equal(t, "visa", cardNetwork("4111111111111111"))
	assert.Equal(t, "mastercard", cardNetwork("5555555555554444"))
	assert.Equal(t, "amex", cardNetwork("378282246310005"))
	assert.Equal(t, "rupay", cardNetwork("6070000000000000"))
	assert.Equal(t, "unknown", cardNetwork("9999999999999999"))
}

func TestCardNotExpired(t *testing.T) {
	now := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)

	assert.True(t, cardNotExpired("10/26", now))
	assert.True(t, cardNotExpired("01/27", now))
	assert.True(t, cardNotExpired("12/2030", now))
	assert.False(t, cardNotExpired("09/26", now))
	assert.False(t, cardNotExpired("12/25", now))
	assert.False(t, cardNotExpired("13/30", now))
	assert.False(t, cardNotExpired("1230", now))
}
