package duration

import (
	"strconv"
	"strings"
)

const (
	DefaultFormat    = "%-%dd %T.%3%6%9"
	DefaultInfFormat = "%-inf"
)

// Format renders d using durFmt for finite values and infFmt for the
// infinities. Empty strings select the defaults.
//
// Placeholders:
//
//	%+  sign, "+" or "-"
//	%-  "-" for negative values, nothing otherwise
//	%d  days
//	%D  days, or nothing if zero
//	%T  shorthand for %H:%M:%S
//	%H  hours (00-23)
//	%M  minutes (00-59)
//	%S  seconds (00-59)
//	%3  milliseconds (000-999)
//	%6  microseconds (000-999)
//	%9  nanoseconds (000-999)
//
// Only the sign placeholders apply to infFmt.
func (d Duration) Format(durFmt, infFmt string) string {
	p := d.Split()
	if d.inf != 0 {
		if infFmt == "" {
			infFmt = DefaultInfFormat
		}
		return expand(infFmt, p, true)
	}
	if durFmt == "" {
		durFmt = DefaultFormat
	}
	return expand(durFmt, p, false)
}

// String formats d with the default formats.
func (d Duration) String() string {
	return d.Format("", "")
}

func expand(f string, p Parts, signOnly bool) string {
	var b strings.Builder
	b.Grow(len(f) + 16)

	for i := 0; i < len(f); i++ {
		c := f[i]
		if c != '%' || i+1 >= len(f) {
			b.WriteByte(c)
			continue
		}
		i++
		switch f[i] {
		case '-':
			if p.Negative {
				b.WriteByte('-')
			}
		case '+':
			if p.Negative {
				b.WriteByte('-')
			} else {
				b.WriteByte('+')
			}
		default:
			if signOnly || !writeField(&b, f[i], p) {
				b.WriteByte('%')
				b.WriteByte(f[i])
			}
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, verb byte, p Parts) bool {
	switch verb {
	case 'd':
		b.WriteString(strconv.FormatInt(p.Days, 10))
	case 'D':
		if p.Days > 0 {
			b.WriteString(strconv.FormatInt(p.Days, 10))
		}
	case 'T':
		pad(b, p.Hours, 2)
		b.WriteByte(':')
		pad(b, p.Minutes, 2)
		b.WriteByte(':')
		pad(b, p.Seconds, 2)
	case 'H':
		pad(b, p.Hours, 2)
	case 'M':
		pad(b, p.Minutes, 2)
	case 'S':
		pad(b, p.Seconds, 2)
	case '3':
		pad(b, p.Milliseconds, 3)
	case '6':
		pad(b, p.Microseconds, 3)
	case '9':
		pad(b, p.Nanoseconds, 3)
	default:
		return false
	}
	return true
}

func pad(b *strings.Builder, v, width int) {
	s := strconv.Itoa(v)
	for n := len(s); n < width; n++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}
