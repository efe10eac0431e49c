package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGainConversionRoundTrip(t *testing.T) {
	for raw := GainRawMin; raw <= GainRawMax; raw++ {
		db := GainToDB(raw)
		assert.Equal(t, raw, db+GainOffset)
		assert.Equal(t, raw, GainToRaw(db))
	}
	assert.Equal(t, -18, GainToDB(0))
	assert.Equal(t, 42, GainToDB(60))
}

func TestLevelAndRSSIConversion(t *testing.T) {
	for raw := MeterRawMin; raw <= MeterRawMax; raw++ {
		assert.Equal(t, raw-120, LevelToDBFS(raw))
		assert.Equal(t, raw-120, RSSIToDBm(raw))
	}
	assert.Equal(t, -120, RSSIToDBm(0))
	assert.Equal(t, 0, LevelToDBFS(120))
}

func TestBatteryMinutes(t *testing.T) {
	tt := []struct {
		raw      int
		expected int
		ok       bool
	}{
		{0, 0, true},
		{480, 480, true},
		{65532, 65532, true},
		{BattMinsWarning, 0, false},
		{BattMinsCalculating, 0, false},
		{BattMinsUnknown, 0, false},
	}
	for _, tc := range tt {
		minutes, ok := BatteryMinutes(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw %d", tc.raw)
		assert.Equal(t, tc.expected, minutes, "raw %d", tc.raw)
	}
}

func TestBatteryBars(t *testing.T) {
	for raw := 0; raw <= BattBarsMax; raw++ {
		bars, ok := BatteryBars(raw)
		assert.True(t, ok)
		assert.Equal(t, raw, bars)

		percent, ok := BatteryPercent(raw)
		assert.True(t, ok)
		assert.Equal(t, raw*20, percent)
	}

	_, ok := BatteryBars(BattBarsUnknown)
	assert.False(t, ok)
	_, ok = BatteryPercent(BattBarsUnknown)
	assert.False(t, ok)
}
