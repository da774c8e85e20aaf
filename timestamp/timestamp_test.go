package timestamp

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wippyai/yogi-go/duration"
	yerrors "github.com/wippyai/yogi-go/errors"
	"github.com/wippyai/yogi-go/result"
)

func mustParse(t *testing.T, s string) Timestamp {
	t.Helper()
	ts, err := Parse(s, "")
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return ts
}

func TestFromDurationSinceEpoch(t *testing.T) {
	tests := []struct {
		name    string
		d       duration.Duration
		wantErr bool
	}{
		{"zero", duration.Zero, false},
		{"positive", duration.FromNanoseconds(1234), false},
		{"max", duration.FromNanoseconds(math.MaxInt64), false},
		{"negative", duration.FromNanoseconds(-1), true},
		{"inf", duration.Inf, true},
		{"neg inf", duration.NegInf, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := FromDurationSinceEpoch(tt.d)
			if tt.wantErr {
				if !errors.Is(err, yerrors.ErrArithmetic) {
					t.Fatalf("err = %v, want arithmetic", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ts.DurationSinceEpoch().Equal(tt.d) {
				t.Errorf("got %v, want %v", ts.DurationSinceEpoch(), tt.d)
			}
		})
	}
}

func TestNow(t *testing.T) {
	before := time.Now()
	ts := Now()
	if ts.Time().Before(before.Truncate(time.Microsecond)) || ts.Time().After(time.Now()) {
		t.Errorf("Now() = %v, outside [%v, now]", ts, before)
	}
	if ts.Time().Location() != time.UTC {
		t.Errorf("location = %v", ts.Time().Location())
	}
}

func TestFractions(t *testing.T) {
	ts, err := FromUnixNano(1_500_123_456_789)
	if err != nil {
		t.Fatal(err)
	}
	if ts.Milliseconds() != 123 || ts.Microseconds() != 456 || ts.Nanoseconds() != 789 {
		t.Errorf("fractions = %d %d %d", ts.Milliseconds(), ts.Microseconds(), ts.Nanoseconds())
	}
}

func TestFormat(t *testing.T) {
	ts, err := FromTime(time.Date(2024, 3, 7, 9, 5, 2, 123456789, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		format string
		want   string
	}{
		{"", "2024-03-07T09:05:02.123Z"},
		{"%F %T.%3", "2024-03-07 09:05:02.123"},
		{"%Y%m%d", "20240307"},
		{"%H-%M-%S", "09-05-02"},
		{"%3%6%9", "123456789"},
		{"100%", "100%"},
		{"%q", "%q"},
	}

	for _, tt := range tests {
		if got := ts.Format(tt.format); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
	if got := Epoch.String(); got != "1970-01-01T00:00:00.000Z" {
		t.Errorf("Epoch = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		format  string
		want    int64
		wantErr error
	}{
		{"default", "2009-02-11T12:53:09.123Z", "", 1234356789123000000, nil},
		{"epoch", "1970-01-01T00:00:00.000Z", "", 0, nil},
		{"full precision", "2009-02-11 12:53:09.123456789", "%F %T.%3%6%9", 1234356789123456789, nil},
		{"date only", "20090211", "%Y%m%d", 1234310400000000000, nil},
		{"time only", "00:01:02", "%T", 62_000_000_000, nil},
		{"trailing input", "2009-02-11T12:53:09.123Zx", "", 0, result.ErrParsingTimeFailed},
		{"short input", "2009-02-11T12:53", "", 0, result.ErrParsingTimeFailed},
		{"literal mismatch", "2009/02/11T12:53:09.123Z", "", 0, result.ErrParsingTimeFailed},
		{"sign in field", "2009-+2-11T12:53:09.123Z", "", 0, result.ErrParsingTimeFailed},
		{"bad month", "2009-13-11T12:53:09.123Z", "", 0, result.ErrParsingTimeFailed},
		{"bad day", "2009-02-30T12:53:09.123Z", "", 0, result.ErrParsingTimeFailed},
		{"bad hour", "2009-02-11T24:53:09.123Z", "", 0, result.ErrParsingTimeFailed},
		{"before epoch", "1969-12-31T23:59:59.999Z", "", 0, result.ErrParsingTimeFailed},
		{"after int64", "2263-01-01T00:00:00.000Z", "", 0, result.ErrParsingTimeFailed},
		{"bad format", "x", "%Q", 0, result.ErrInvalidTimeFormat},
		{"dangling percent", "x", "x%", 0, result.ErrInvalidTimeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := Parse(tt.s, tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ts.UnixNano() != tt.want {
				t.Errorf("got %d, want %d", ts.UnixNano(), tt.want)
			}
		})
	}

	if _, err := Parse("2009-13-11T12:53:09.123Z", ""); !errors.Is(err, yerrors.ErrInvalidData) {
		t.Errorf("parse failure kind: %v", err)
	}
	if _, err := Parse("x", "%Q"); !errors.Is(err, yerrors.ErrInvalidInput) {
		t.Errorf("bad format kind: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	const full = "%F %T.%3%6%9"
	for _, ns := range []int64{0, 1, 999_999_999, 1234356789123456789, math.MaxInt64} {
		ts, err := FromUnixNano(ns)
		if err != nil {
			t.Fatal(err)
		}
		back, err := Parse(ts.Format(full), full)
		if err != nil {
			t.Fatalf("Parse(%q): %v", ts.Format(full), err)
		}
		if !back.Equal(ts) {
			t.Errorf("round trip %d -> %q -> %d", ns, ts.Format(full), back.UnixNano())
		}
	}

	// The default format truncates to milliseconds.
	ts, _ := FromUnixNano(1234356789123456789)
	if got := mustParse(t, ts.String()); got.UnixNano() != 1234356789123000000 {
		t.Errorf("default round trip = %d", got.UnixNano())
	}
}

func TestArithmetic(t *testing.T) {
	base := mustParse(t, "2020-01-01T00:00:00.000Z")
	sec := duration.Must(duration.FromSeconds(1))

	later, err := base.Add(sec)
	if err != nil || later.Format("") != "2020-01-01T00:00:01.000Z" {
		t.Errorf("base + 1s = %v, %v", later, err)
	}
	earlier, err := base.Sub(sec)
	if err != nil || earlier.Format("") != "2019-12-31T23:59:59.000Z" {
		t.Errorf("base - 1s = %v, %v", earlier, err)
	}
	if d := later.Since(earlier); !d.Equal(duration.Must(duration.FromSeconds(2))) {
		t.Errorf("later - earlier = %v", d)
	}
	if d := earlier.Since(later); d.Sign() >= 0 {
		t.Errorf("earlier - later = %v, want negative", d)
	}
	if !earlier.Before(base) || !later.After(base) || base.Compare(base) != 0 {
		t.Error("ordering broken")
	}

	tests := []struct {
		name    string
		fn      func() (Timestamp, error)
		wantErr error
	}{
		{"plus inf", func() (Timestamp, error) { return base.Add(duration.Inf) }, yerrors.ErrArithmetic},
		{"minus inf", func() (Timestamp, error) { return base.Sub(duration.Inf) }, yerrors.ErrArithmetic},
		{"plus neg inf", func() (Timestamp, error) { return base.Add(duration.NegInf) }, yerrors.ErrArithmetic},
		{"before epoch", func() (Timestamp, error) { return Epoch.Sub(duration.FromNanoseconds(1)) }, yerrors.ErrArithmetic},
		{"overflow", func() (Timestamp, error) { return base.Add(duration.FromNanoseconds(math.MaxInt64)) }, yerrors.ErrOverflow},
		{"negate min", func() (Timestamp, error) { return base.Sub(duration.FromNanoseconds(math.MinInt64)) }, yerrors.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	var doc struct {
		Start Timestamp `json:"start_time"`
	}
	if err := json.Unmarshal([]byte(`{"start_time": "2018-04-23T18:25:43.511Z"}`), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Start.Format("%T.%3") != "18:25:43.511" {
		t.Errorf("start = %v", doc.Start)
	}
	out, err := json.Marshal(doc)
	if err != nil || string(out) != `{"start_time":"2018-04-23T18:25:43.511Z"}` {
		t.Errorf("marshal = %s, %v", out, err)
	}
	if err := json.Unmarshal([]byte(`{"start_time": "yesterday"}`), &doc); !errors.Is(err, result.ErrParsingTimeFailed) {
		t.Errorf("bad start_time: %v", err)
	}
}

func TestValidFormat(t *testing.T) {
	for f, want := range map[string]bool{
		"":          true,
		"%F %T.%3":  true,
		"plain":     true,
		"%Y%m%d%6":  true,
		"%x":        false,
		"trailing%": false,
	} {
		if got := ValidFormat(f); got != want {
			t.Errorf("ValidFormat(%q) = %v, want %v", f, got, want)
		}
	}
}
