package artifact

import (
	"encoding/json"
	"math"
	"time"
)

// NeverLabel is rendered for a timestamp with no recorded event.
const NeverLabel = "Never"

// TimeLayout is the rendering of a valid timestamp.
const TimeLayout = "2006-01-02 15:04:05 UTC"

const (
	// chromiumEpochOffsetMicros is 1601-01-01 to 1970-01-01 in microseconds.
	chromiumEpochOffsetMicros int64 = 11644473600 * 1_000_000
	// webkitEpochOffsetSeconds is 1970-01-01 to 2001-01-01 in seconds.
	webkitEpochOffsetSeconds int64 = 978307200

	// Unix seconds of 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z.
	minUnixSeconds int64 = -62135596800
	maxUnixSeconds int64 = 253402300799
)

// Timestamp is a decoded browser timestamp: either a UTC instant or Never.
// The zero value is Never.
type Timestamp struct {
	t     time.Time
	valid bool
}

// Never returns the no-event sentinel.
func Never() Timestamp { return Timestamp{} }

// At wraps t as a valid timestamp, truncated to whole seconds.
func At(t time.Time) Timestamp {
	if !inRange(t) {
		return Never()
	}
	return Timestamp{t: t.UTC().Truncate(time.Second), valid: true}
}

// IsNever reports whether the timestamp is the sentinel.
func (ts Timestamp) IsNever() bool { return !ts.valid }

// Time returns the instant and whether it is valid.
func (ts Timestamp) Time() (time.Time, bool) { return ts.t, ts.valid }

func (ts Timestamp) String() string {
	if !ts.valid {
		return NeverLabel
	}
	return ts.t.Format(TimeLayout)
}

// MarshalJSON renders the timestamp as its display string.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON accepts the output of MarshalJSON.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == NeverLabel || s == "" {
		*ts = Never()
		return nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return err
	}
	*ts = At(t)
	return nil
}

// FromChromium decodes microseconds since 1601-01-01 UTC.
func FromChromium(raw int64) Timestamp {
	if raw == 0 {
		return Never()
	}
	if raw < math.MinInt64+chromiumEpochOffsetMicros {
		return Never()
	}
	return At(time.UnixMicro(raw - chromiumEpochOffsetMicros))
}

// FromWebKit decodes seconds since 2001-01-01 UTC.
func FromWebKit(raw int64) Timestamp {
	if raw == 0 {
		return Never()
	}
	if raw < minUnixSeconds-webkitEpochOffsetSeconds || raw > maxUnixSeconds-webkitEpochOffsetSeconds {
		return Never()
	}
	return At(time.Unix(raw+webkitEpochOffsetSeconds, 0))
}

// FromGecko decodes microseconds since the Unix epoch.
func FromGecko(raw int64) Timestamp {
	if raw == 0 {
		return Never()
	}
	return At(time.UnixMicro(raw))
}

// Converter returns the timestamp decoder for a family. Unknown families
// decode everything as Never.
func Converter(f BrowserFamily) func(int64) Timestamp {
	switch f {
	case Chromium:
		return FromChromium
	case Gecko:
		return FromGecko
	case WebKit:
		return FromWebKit
	default:
		return func(int64) Timestamp { return Never() }
	}
}

// inRange bounds instants to four-digit years.
func inRange(t time.Time) bool {
	y := t.UTC().Year()
	return y >= 1 && y <= 9999
}
