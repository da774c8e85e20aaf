package timestamp

import (
	"math"
	"strings"
	"time"

	"github.com/wippyai/yogi-go/errors"
	"github.com/wippyai/yogi-go/result"
)

// DefaultFormat renders ISO-8601 with millisecond resolution, for example
// "2018-04-23T18:25:43.511Z".
const DefaultFormat = "%Y-%m-%dT%H:%M:%S.%3Z"

// Placeholders understood by Format and Parse:
//
//	%Y  four digit year
//	%m  month (01-12)
//	%d  day of the month (01-31)
//	%F  shorthand for %Y-%m-%d
//	%H  hour (00-23)
//	%M  minute (00-59)
//	%S  second (00-59)
//	%T  shorthand for %H:%M:%S
//	%3  milliseconds (000-999)
//	%6  microseconds (000-999)
//	%9  nanoseconds (000-999)
const placeholders = "YmdFHMST369"

// latest is the last instant an int64 nanosecond count can hold.
var latest = time.Unix(0, math.MaxInt64).UTC()

var shorthands = strings.NewReplacer("%F", "%Y-%m-%d", "%T", "%H:%M:%S")

// ValidFormat reports whether every % in f starts a known placeholder.
func ValidFormat(f string) bool {
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			continue
		}
		i++
		if i == len(f) || strings.IndexByte(placeholders, f[i]) < 0 {
			return false
		}
	}
	return true
}

// Format renders t. An empty f selects DefaultFormat.
func (t Timestamp) Format(f string) string {
	if f == "" {
		f = DefaultFormat
	}
	return FormatTime(t.Time(), f)
}

// FormatTime expands the placeholders in f against tm in UTC. Unknown
// placeholders are copied through.
func FormatTime(tm time.Time, f string) string {
	tm = tm.UTC()
	f = shorthands.Replace(f)

	var b strings.Builder
	b.Grow(len(f) + 16)
	for i := 0; i < len(f); i++ {
		if f[i] != '%' || i+1 == len(f) {
			b.WriteByte(f[i])
			continue
		}
		i++
		switch f[i] {
		case 'Y':
			pad(&b, tm.Year(), 4)
		case 'm':
			pad(&b, int(tm.Month()), 2)
		case 'd':
			pad(&b, tm.Day(), 2)
		case 'H':
			pad(&b, tm.Hour(), 2)
		case 'M':
			pad(&b, tm.Minute(), 2)
		case 'S':
			pad(&b, tm.Second(), 2)
		case '3':
			pad(&b, tm.Nanosecond()/1e6, 3)
		case '6':
			pad(&b, tm.Nanosecond()/1e3%1000, 3)
		case '9':
			pad(&b, tm.Nanosecond()%1000, 3)
		default:
			b.WriteByte('%')
			b.WriteByte(f[i])
		}
	}
	return b.String()
}

func pad(b *strings.Builder, v, width int) {
	var buf [8]byte
	n := len(buf)
	for ; v > 0 || n == len(buf); v /= 10 {
		n--
		buf[n] = byte('0' + v%10)
	}
	for w := len(buf) - n; w < width; w++ {
		b.WriteByte('0')
	}
	b.Write(buf[n:])
}

// Parse reads s according to f. An empty f selects DefaultFormat. Fields
// missing from f default to the epoch.
func Parse(s, f string) (Timestamp, error) {
	if f == "" {
		f = DefaultFormat
	}
	if !ValidFormat(f) {
		return Timestamp{}, errors.New(errors.PhaseTimestamp, errors.KindInvalidInput).
			Op("parse").
			Value(f).
			Cause(result.ErrInvalidTimeFormat).
			Detail("invalid time format %q", f).
			Build()
	}
	f = shorthands.Replace(f)

	year, month, day := 1970, 1, 1
	var hour, minute, sec, ms, us, ns int

	i := 0
	for j := 0; j < len(f); j++ {
		if f[j] != '%' {
			if i >= len(s) || s[i] != f[j] {
				return Timestamp{}, parseFailed(s, f)
			}
			i++
			continue
		}
		j++
		var dst *int
		width := 2
		switch f[j] {
		case 'H':
			dst = &hour
		case 'Y':
			dst, width = &year, 4
		case 'm':
			dst = &month
		case 'd':
			dst = &day
		case 'M':
			dst = &minute
		case 'S':
			dst = &sec
		case '3':
			dst, width = &ms, 3
		case '6':
			dst, width = &us, 3
		case '9':
			dst, width = &ns, 3
		}
		v, ok := digits(s, i, width)
		if !ok {
			return Timestamp{}, parseFailed(s, f)
		}
		*dst = v
		i += width
	}
	if i != len(s) || month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || sec > 59 {
		return Timestamp{}, parseFailed(s, f)
	}

	tm := time.Date(year, time.Month(month), day, hour, minute, sec, ms*1e6+us*1e3+ns, time.UTC)
	if tm.Day() != day || tm.After(latest) {
		return Timestamp{}, parseFailed(s, f)
	}
	ts, err := FromTime(tm)
	if err != nil {
		return Timestamp{}, parseFailed(s, f)
	}
	return ts, nil
}

func digits(s string, at, width int) (int, bool) {
	if at+width > len(s) {
		return 0, false
	}
	v := 0
	for _, c := range []byte(s[at : at+width]) {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	return v, true
}

func parseFailed(s, f string) error {
	return errors.New(errors.PhaseTimestamp, errors.KindInvalidData).
		Op("parse").
		Value(s).
		Cause(result.ErrParsingTimeFailed).
		Detail("%q does not match %q", s, f).
		Build()
}
