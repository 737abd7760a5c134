package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// dateLayoutDefault is the form tags are written back in.
	dateLayoutDefault = "2006-01-02 15:04:05"
	// dateLayoutFilename is the second-precision destination filename form.
	dateLayoutFilename = "2006-01-02_15'04'05"
	// dateLayoutM4 is the magic-memories XML creation attribute form.
	dateLayoutM4 = "2006/01/02 15:04:05,000"
)

// dateLayouts are the known timestamp forms metadata values show up in,
// tried in order. First parse wins.
var dateLayouts = []string{
	dateLayoutDefault,
	"2006:01:02 15:04:05", // EXIF
	dateLayoutM4,
	dateLayoutFilename,
	"2006-01-02T15:04:05Z",      // Matroska
	"2006-01-02 15:04:05-0700",  // recorded, with zone offset
	"2006-01-02 15:04:05 MST",   // encoded, with zone name
	"2006:01:02 15:04:05-07:00", // EXIF with offset suffix
}

// parseMediaDate tries every known layout against a metadata value.
func parseMediaDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Offset is a capture-date correction parsed from the compact
// <integer><unit> flag form, e.g. "1Y6M" or "2h30m".
type Offset struct {
	Years, Months, Days     int
	Hours, Minutes, Seconds int
}

var offsetTokenRe = regexp.MustCompile(`\d{1,3}[YMDhms]`)

func ParseOffset(spec string) (Offset, error) {
	var o Offset
	if spec == "" {
		return o, nil
	}
	tokens := offsetTokenRe.FindAllString(spec, -1)
	if len(tokens) == 0 {
		return o, fmt.Errorf("invalid offset spec: %q", spec)
	}
	for _, tok := range tokens {
		n, err := strconv.Atoi(tok[:len(tok)-1])
		if err != nil {
			return o, fmt.Errorf("invalid offset token %q: %w", tok, err)
		}
		switch tok[len(tok)-1] {
		case 'Y':
			o.Years = n
		case 'M':
			o.Months = n
		case 'D':
			o.Days = n
		case 'h':
			o.Hours = n
		case 'm':
			o.Minutes = n
		case 's':
			o.Seconds = n
		}
	}
	return o, nil
}

func (o Offset) IsZero() bool {
	return o == Offset{}
}

// Apply shifts t by the offset, subtracting when minus is set.
func (o Offset) Apply(t time.Time, minus bool) time.Time {
	sign := 1
	if minus {
		sign = -1
	}
	t = t.AddDate(sign*o.Years, sign*o.Months, sign*o.Days)
	d := time.Duration(o.Hours)*time.Hour +
		time.Duration(o.Minutes)*time.Minute +
		time.Duration(o.Seconds)*time.Second
	return t.Add(time.Duration(sign) * d)
}
