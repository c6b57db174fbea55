package caption

import (
	"math"
	"path"
	"strconv"
	"strings"
	"time"
)

// Field names understood by caption templates.
const (
	FileName          = "FileName"
	Copyright         = "Copyright"
	CameraMake        = "CameraMake"
	CameraModel       = "CameraModel"
	ISOSpeedRatings   = "ISOSpeedRatings"
	FocalLength       = "FocalLength"
	ShutterSpeedValue = "ShutterSpeedValue"
	FNumber           = "FNumber"
	DateTimeOriginal  = "DateTimeOriginal"
)

// Fields lists every placeholder name in the order the editor documents them.
var Fields = []string{
	FileName, Copyright, CameraMake, CameraModel, ISOSpeedRatings,
	FocalLength, ShutterSpeedValue, FNumber, DateTimeOriginal,
}

var exifDate = "2006:01:02 15:04:05"

// Record is the raw metadata of one image. Any value may be empty.
// Rational values are stored as "N/D".
type Record struct {
	Copyright   string
	CameraMake  string
	CameraModel string
	ISO         string
	FocalLength string
	// ExposureTime is the raw EXIF exposure time, e.g. "1/200" or "0.5".
	ExposureTime     string
	FNumber          string
	DateTimeOriginal string
	// Path is the stored file path; only its base name is displayed.
	Path string
}

// values computes the display value of every known field.
func (r Record) values() map[string]string {
	return map[string]string{
		FileName:          fileName(r.Path),
		Copyright:         strings.TrimSpace(r.Copyright),
		CameraMake:        strings.TrimSpace(r.CameraMake),
		CameraModel:       strings.TrimSpace(r.CameraModel),
		ISOSpeedRatings:   iso(r.ISO),
		FocalLength:       focalLength(r.FocalLength),
		ShutterSpeedValue: shutterSpeed(r.ExposureTime),
		FNumber:           fNumber(r.FNumber),
		DateTimeOriginal:  dateTime(r.DateTimeOriginal),
	}
}

func fileName(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	return path.Base(p)
}

func iso(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return "ISO-" + s
}

func focalLength(s string) string {
	s = strings.TrimSpace(s)
	if n, d, ok := rational(s); ok {
		if d == 0 {
			return ""
		}
		return formatNumber(math.Round(n/d)) + "mm"
	}

	v, ok := number(strings.TrimSuffix(s, "mm"))
	if !ok {
		return ""
	}
	return formatNumber(math.Round(v)) + "mm"
}

// shutterSpeed formats an exposure time. A rational "N/D" is read as D/N,
// the plain form as seconds.
func shutterSpeed(s string) string {
	s = strings.TrimSpace(s)
	if n, d, ok := rational(s); ok {
		if n == 0 {
			return ""
		}
		decimal := d / n
		if decimal <= 0 || math.IsInf(decimal, 0) || math.IsNaN(decimal) {
			return ""
		}
		if decimal >= 1 {
			return "1/" + formatNumber(math.Round(decimal)) + "s"
		}
		return formatNumber(roundTo(1/decimal, 1)) + "s"
	}

	v, ok := number(s)
	if !ok || v <= 0 {
		return ""
	}
	if v >= 1 {
		return formatNumber(roundTo(v, 1)) + "s"
	}
	return "1/" + formatNumber(math.Round(1/v)) + "s"
}

func fNumber(s string) string {
	s = strings.TrimSpace(s)
	if n, d, ok := rational(s); ok {
		if d == 0 {
			return ""
		}
		return "f/" + formatNumber(roundTo(n/d, 1))
	}

	if _, ok := number(s); !ok {
		return ""
	}
	return "f/" + s
}

func dateTime(s string) string {
	s = strings.TrimSpace(s)
	t, err := time.Parse(exifDate, s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02 15:04:05")
}

// rational parses "N/D". ok is false when s has no slash or either side is
// not a number.
func rational(s string) (n float64, d float64, ok bool) {
	ns, ds, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	if i := strings.Index(ds, "/"); i >= 0 {
		ds = ds[:i]
	}

	n, nok := number(ns)
	d, dok := number(ds)
	if !nok || !dok {
		return 0, 0, false
	}
	return n, d, true
}

func number(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func formatNumber(v float64) string {
	if v == 0 {
		// avoid "-0"
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
