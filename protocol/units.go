package protocol

// GainToDB converts a raw audio gain value (0..60) to dB (-18..+42).
func GainToDB(raw int) int {
	return raw - GainOffset
}

// GainToRaw converts an audio gain in dB (-18..+42) to its raw wire value.
func GainToRaw(db int) int {
	return db + GainOffset
}

// LevelToDBFS converts a raw audio level value (0..120) to dBFS (-120..0).
func LevelToDBFS(raw int) int {
	return raw - LevelOffset
}

// RSSIToDBm converts a raw RSSI value (0..120) to dBm (-120..0).
func RSSIToDBm(raw int) int {
	return raw - RSSIOffset
}

// BatteryMinutes converts the raw battery runtime reading to minutes. The
// receiver reports three sentinel values at and above BattMinsWarning
// (warning, calculating, unknown); all of them yield ok == false.
func BatteryMinutes(raw int) (minutes int, ok bool) {
	if raw >= BattMinsWarning {
		return 0, false
	}
	return raw, true
}

// BatteryBars converts the raw battery bar reading (0..5) to bars.
// BattBarsUnknown yields ok == false.
func BatteryBars(raw int) (bars int, ok bool) {
	if raw == BattBarsUnknown {
		return 0, false
	}
	return raw, true
}

// BatteryPercent converts the raw battery bar reading to a percentage,
// 20% per bar. BattBarsUnknown yields ok == false.
func BatteryPercent(raw int) (percent int, ok bool) {
	bars, ok := BatteryBars(raw)
	if !ok {
		return 0, false
	}
	return bars * 20, true
}
