package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJalaliDateKey(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)

	tests := []struct {
		gregorian time.Time
		want      string
	}{
		{time.Date(2025, 11, 17, 0, 0, 0, 0, loc), "1404-08-26"},
		{time.Date(2025, 3, 21, 0, 0, 0, 0, loc), "1404-01-01"},
		{time.Date(2026, 3, 20, 0, 0, 0, 0, loc), "1404-12-29"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, jalaliDateKey(tt.gregorian))
	}
}

func TestReadableStartUsesPersianDigits(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)

	label := readableStart(time.Date(2025, 11, 17, 10, 30, 0, 0, loc))

	assert.NotEmpty(t, label)
	assert.NotContains(t, label, "10:30", "digits must be converted to Persian")
	assert.Contains(t, label, "۱۰:۳۰")
}
