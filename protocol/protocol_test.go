package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tt := []struct {
		desc     string
		kind     Kind
		property string
		channel  int
		value    string
		expected string
		invalid  bool
	}{
		{desc: "get device property", kind: Get, property: PropModel, channel: NoChannel, expected: "< GET MODEL >"},
		{desc: "get channel property", kind: Get, property: PropAudioGain, channel: 1, expected: "< GET 1 AUDIO_GAIN >"},
		{desc: "get rssi with antenna", kind: Get, property: PropRSSI, channel: 2, value: "1", expected: "< GET 2 RSSI 1 >"},
		{desc: "set gain", kind: Set, property: PropAudioGain, channel: 1, value: "040", expected: "< SET 1 AUDIO_GAIN 040 >"},
		{desc: "set flash", kind: Set, property: PropFlash, channel: NoChannel, value: "ON", expected: "< SET FLASH ON >"},
		{desc: "lowercase property", kind: Get, property: "model", channel: NoChannel, invalid: true},
		{desc: "property with space", kind: Get, property: "AUDIO GAIN", channel: NoChannel, invalid: true},
		{desc: "empty property", kind: Get, property: "", channel: NoChannel, invalid: true},
		{desc: "value with bracket", kind: Set, property: PropChannelName, channel: 1, value: "a<b", invalid: true},
		{desc: "value with CR", kind: Set, property: PropChannelName, channel: 1, value: "a\rb", invalid: true},
		{desc: "value with LF", kind: Set, property: PropChannelName, channel: 1, value: "a\nb", invalid: true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := Build(tc.kind, tc.property, tc.channel, tc.value)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrInvalidCommand)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, actual)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tt := []struct {
		desc     string
		line     string
		expected Response
		invalid  bool
	}{
		{desc: "empty line", line: "", invalid: true},
		{desc: "not wrapped", line: "REP MODEL SLXD4D", invalid: true},
		{desc: "missing close", line: "< REP MODEL", invalid: true},
		{desc: "empty body", line: "< >", invalid: true},
		{desc: "unknown kind", line: "< NACK MODEL >", invalid: true},
		{desc: "kind only", line: "< REP >", invalid: true},
		{
			desc:     "device property numeric",
			line:     "< REP 1 AUDIO_GAIN 040 >",
			expected: Response{Kind: Rep, Property: "AUDIO_GAIN", Channel: 1, Value: "040", Raw: 40, Numeric: true},
		},
		{
			desc:     "device property string",
			line:     "< REP LOCK_STATUS OFF >",
			expected: Response{Kind: Rep, Property: "LOCK_STATUS", Value: "OFF"},
		},
		{
			desc:     "braced string strips padding",
			line:     "< REP MODEL {SLXD4D                         } >",
			expected: Response{Kind: Rep, Property: "MODEL", Value: "SLXD4D"},
		},
		{
			desc:     "braced string with channel",
			line:     "< REP 2 CHAN_NAME {VOCALS                         } >",
			expected: Response{Kind: Rep, Property: "CHAN_NAME", Channel: 2, Value: "VOCALS"},
		},
		{
			desc:     "rssi with antenna",
			line:     "< REP 1 RSSI 2 085 >",
			expected: Response{Kind: Rep, Property: "RSSI", Channel: 1, Raw: 85, Numeric: true, Antenna: 2},
		},
		{
			desc:     "sample line",
			line:     "< SAMPLE 1 ALL 090 060 085 075 1 >",
			expected: Response{Kind: Sample, Property: "ALL", Channel: 1, Values: []int{90, 60, 85, 75, 1}},
		},
		{desc: "sample with junk value", line: "< SAMPLE 1 ALL 090 xx 085 075 1 >", invalid: true},
		{desc: "sample without channel", line: "< SAMPLE ALL >", invalid: true},
		{
			desc:     "set line parses as well",
			line:     "< SET 1 AUDIO_GAIN 040 >",
			expected: Response{Kind: Set, Property: "AUDIO_GAIN", Channel: 1, Value: "040", Raw: 40, Numeric: true},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := Parse(tc.line)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, actual)
			}
		})
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	tt := []struct {
		kind     Kind
		property string
		channel  int
		value    string
	}{
		{Get, PropModel, NoChannel, ""},
		{Get, PropAudioGain, 1, ""},
		{Set, PropAudioGain, 4, "060"},
		{Set, PropLockStatus, NoChannel, "MENU"},
	}
	for _, tc := range tt {
		line, err := Build(tc.kind, tc.property, tc.channel, tc.value)
		require.NoError(t, err)
		parsed, err := Parse(line)
		require.NoError(t, err)
		assert.Equal(t, tc.kind, parsed.Kind)
		assert.Equal(t, tc.property, parsed.Property)
		if tc.channel != NoChannel {
			assert.Equal(t, tc.channel, parsed.Channel)
		}
	}
}

func TestChannelCountForModel(t *testing.T) {
	tt := []struct {
		model    string
		expected int
	}{
		{"SLXD4", 1},
		{"SLXD4D", 2},
		{"SLXD4Q", 4},
		{"SLXD4Q+", 4},
		// fallback for model names absent from the table
		{"SLXD9Q", 4},
		{"SLXD9D", 2},
		{"SLXD9", 1},
		{"", 1},
	}
	for _, tc := range tt {
		t.Run(tc.model, func(t *testing.T) {
			assert.Equal(t, tc.expected, ChannelCountForModel(tc.model))
		})
	}
}
