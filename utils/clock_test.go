package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClockRejectsUnknownTimezone(t *testing.T) {
	_, err := NewClock("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestClockTodayIsMidnightInBusinessZone(t *testing.T) {
	clock, err := NewClock("America/Sao_Paulo")
	require.NoError(t, err)

	today := clock.Today()
	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 0, today.Minute())
	assert.Equal(t, "America/Sao_Paulo", today.Location().String())
}

func TestStartOfTodayUTCMatchesLocalMidnight(t *testing.T) {
	clock, err := NewClock("America/Sao_Paulo")
	require.NoError(t, err)

	assert.True(t, clock.StartOfTodayUTC().Equal(clock.Today()))
	assert.Equal(t, time.UTC, clock.StartOfTodayUTC().Location())
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input   string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"9:00", 540, false}, // time.Parse tolerates the missing leading zero
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"nine", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClockTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, got)
		})
	}
}

func TestMinutesOfDay(t *testing.T) {
	at := time.Date(2025, time.March, 10, 14, 30, 59, 0, time.UTC)
	assert.Equal(t, 14*60+30, MinutesOfDay(at))
}
