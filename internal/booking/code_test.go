package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationCode(t *testing.T) {
	tests := []struct {
		name    string
		eventID string
		want    string
	}{
		{"google style id", "abc123def456@google.com", "ABC123"},
		{"no namespace", "abc123def456", "ABC123"},
		{"short local part", "ab12@google.com", "AB12"},
		{"exactly six", "abcdef", "ABCDEF"},
		{"already upper", "XYZ789qq@cal", "XYZ789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReservationCode(tt.eventID))
		})
	}
}

func TestMatchesCode(t *testing.T) {
	assert.True(t, matchesCode("abc123def456@google.com", "ABC123"))
	assert.True(t, matchesCode("abc123def456@google.com", "abc123"))
	assert.False(t, matchesCode("abc123def456@google.com", "ABC124"))
	assert.False(t, matchesCode("xyz@google.com", "ABC123"))
}
