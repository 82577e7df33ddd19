package artifact

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverters_ZeroIsNever(t *testing.T) {
	for _, f := range []BrowserFamily{Chromium, Gecko, WebKit, Unknown} {
		ts := Converter(f)(0)
		assert.True(t, ts.IsNever(), "family %s", f)
		assert.Equal(t, "Never", ts.String(), "family %s", f)
	}
}

func TestFromChromium(t *testing.T) {
	assert.Equal(t, "2022-08-03 00:26:40 UTC", FromChromium(13303960000000000).String())

	// Epoch + 1s.
	assert.Equal(t, "1601-01-01 00:00:01 UTC", FromChromium(1_000_000).String())

	// Sub-second precision is dropped.
	assert.Equal(t, "2022-08-03 00:26:40 UTC", FromChromium(13303960000999999).String())
}

func TestFromWebKit(t *testing.T) {
	assert.Equal(t, "2021-01-01 00:00:00 UTC", FromWebKit(631152000).String())
	assert.Equal(t, "2000-12-31 23:59:59 UTC", FromWebKit(-1).String())
}

func TestFromGecko(t *testing.T) {
	assert.Equal(t, "1970-01-01 00:00:01 UTC", FromGecko(1000000).String())
	assert.Equal(t, "2020-09-13 12:26:40 UTC", FromGecko(1600000000000000).String())
}

func TestConverters_OutOfRangeIsNever(t *testing.T) {
	tests := []struct {
		name string
		conv func(int64) Timestamp
		raw  int64
	}{
		{"chromium max", FromChromium, math.MaxInt64},
		{"chromium min", FromChromium, math.MinInt64},
		{"webkit max", FromWebKit, math.MaxInt64},
		{"webkit min", FromWebKit, math.MinInt64},
		{"webkit past year 9999", FromWebKit, 253402300800},
		{"gecko max", FromGecko, math.MaxInt64},
		{"gecko min", FromGecko, math.MinInt64},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := tc.conv(tc.raw)
			assert.True(t, ts.IsNever())
			assert.Equal(t, "Never", ts.String())
		})
	}
}

func TestTimestamp_Time(t *testing.T) {
	got, ok := FromGecko(1000000).Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 1, 0, time.UTC), got)

	_, ok = Never().Time()
	assert.False(t, ok)
}

func TestTimestamp_JSON(t *testing.T) {
	rec := HistoryRecord{LastVisitTime: FromWebKit(631152000), URL: "https://a"}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_visit_time":"2021-01-01 00:00:00 UTC"`)
	assert.Contains(t, string(data), `"is_hidden":false`)

	data, err = json.Marshal(HistoryRecord{})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_visit_time":"Never"`)
	assert.Contains(t, string(data), `"title":""`)

	var back HistoryRecord
	require.NoError(t, json.Unmarshal([]byte(`{"last_visit_time":"2021-01-01 00:00:00 UTC"}`), &back))
	assert.Equal(t, FromWebKit(631152000), back.LastVisitTime)

	require.NoError(t, json.Unmarshal([]byte(`{"last_visit_time":"Never"}`), &back))
	assert.True(t, back.LastVisitTime.IsNever())
}
