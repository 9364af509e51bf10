package timestamp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust_WhenSyncConfigured_ShouldApplyOffset(t *testing.T) {
	cfg := SyncConfig{TranscriptStartTime: "00:05:00", VideoStartTime: "00:01:00"}
	got := Adjust("00:10:00", cfg)
	assert.Equal(t, Parse("00:10:00")-Parse("00:05:00")+Parse("00:01:00"), got)
	assert.Equal(t, 360.0, got)
}

func TestAdjust_WhenStartTimesEqual_ShouldBeIdentity(t *testing.T) {
	cfg := SyncConfig{TranscriptStartTime: "00:02:00", VideoStartTime: "00:02:00"}
	assert.Equal(t, Parse("00:42:17"), Adjust("00:42:17", cfg))
}

func TestAdjust_WhenEitherFieldMissing_ShouldBeIdentity(t *testing.T) {
	assert.Equal(t, 600.0, Adjust("00:10:00", SyncConfig{TranscriptStartTime: "00:05:00"}))
	assert.Equal(t, 600.0, Adjust("00:10:00", SyncConfig{VideoStartTime: "00:05:00"}))
	assert.Equal(t, 600.0, Adjust("00:10:00", SyncConfig{}))
}

func TestAdjust_WhenVideoStartsLater_ShouldShiftForward(t *testing.T) {
	cfg := SyncConfig{TranscriptStartTime: "00:00:10", VideoStartTime: "00:01:10"}
	assert.Equal(t, 120.0, cfg.Adjust("00:01:00"))
}

func TestToTranscript_ShouldInvertAdjust(t *testing.T) {
	cfg := SyncConfig{TranscriptStartTime: "00:05:00", VideoStartTime: "00:01:00"}
	assert.Equal(t, Parse("00:10:00"), cfg.ToTranscript(cfg.Adjust("00:10:00")))
}

func TestSyncConfig_WhenDecodedFromJSONWithNulls_ShouldBeDisabled(t *testing.T) {
	var cfg SyncConfig
	require.NoError(t, json.Unmarshal([]byte(`{"transcriptStartTime":null,"videoStartTime":"00:00:10"}`), &cfg))
	assert.False(t, cfg.Enabled())
	assert.Equal(t, 0.0, cfg.Offset())
}

// --- DeepLink ---

func TestDeepLink_ShouldTruncateSeconds(t *testing.T) {
	assert.Equal(t, "#t=123", DeepLink(123.9))
	assert.Equal(t, "#t=0", DeepLink(-4))
}

func TestParseDeepLink_WhenGivenSupportedForms_ShouldParse(t *testing.T) {
	cases := map[string]float64{
		"#t=123":      123,
		"t=45":        45,
		"#t=00:02:03": 123,
	}
	for in, want := range cases {
		got, ok := ParseDeepLink(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDeepLink_WhenGivenUnsupportedForms_ShouldFail(t *testing.T) {
	for _, in := range []string{"", "#x=1", "#t=", "#t=abc", "#t=-5", "#t=02:03"} {
		_, ok := ParseDeepLink(in)
		assert.False(t, ok, in)
	}
}
