package caption

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var nikon = Record{
	CameraMake:   "Nikon",
	CameraModel:  "Z6",
	FocalLength:  "35/1",
	ExposureTime: "1/250",
	FNumber:      "28/10",
	ISO:          "400",
}

const fullTemplate = "{CameraMake} {CameraModel} | {FocalLength} | {ShutterSpeedValue} | {FNumber} | {ISOSpeedRatings}"

func TestRender(t *testing.T) {
	withoutFocal := nikon
	withoutFocal.FocalLength = ""

	tests := []struct {
		name string
		tmpl string
		rec  Record
		want string
	}{
		{"empty template", "", nikon, ""},
		{"focal rational", "{FocalLength}", Record{FocalLength: "50/1"}, "50mm"},
		{"shutter rational", "{ShutterSpeedValue}", Record{ExposureTime: "1/200"}, "1/200s"},
		{"conditional empty", "{'© ', Copyright}", Record{}, ""},
		{"conditional set", "{'© ', Copyright}", Record{Copyright: "Jane"}, "© Jane"},
		{"conditional double quotes", `{"by ", CameraMake}`, Record{CameraMake: "Canon"}, "by Canon"},
		{"full", fullTemplate, nikon, "Nikon Z6 | 35mm | 1/250s | f/2.8 | ISO-400"},
		{"missing middle field", fullTemplate, withoutFocal, "Nikon Z6 | 1/250s | f/2.8 | ISO-400"},
		{"all fields missing", "{CameraMake} {CameraModel} | {FocalLength}", Record{}, ""},
		{"default used", "{Copyright,All rights reserved}", Record{}, "All rights reserved"},
		{"default trimmed", "{Copyright,  Me }", Record{}, "Me"},
		{"default ignored", "{Copyright,All rights reserved}", Record{Copyright: "Jane"}, "Jane"},
		{"default on derived field", "{FNumber,n/a}", Record{FNumber: "4"}, "f/4"},
		{"default on unknown field", "x {Lens,none}", Record{}, "x"},
		{"unknown fields", "{Foo} x {'a', Bar}", nikon, "x"},
		{"case sensitive", "{focallength}", nikon, ""},
		{"braces in value", "{Copyright}", Record{Copyright: "{evil}"}, ""},
		{"leading pipe", "| {FNumber}", Record{FNumber: "4"}, "f/4"},
		{"trailing conditional pipe", "{CameraModel}{' | ', FNumber}", Record{CameraModel: "X100V"}, "X100V"},
		{"conditional text with brace", "{'a}b ', CameraMake}", Record{CameraMake: "Leica"}, "a}b Leica"},
		{"unterminated token", "f {FNumber", Record{FNumber: "2"}, "f {FNumber"},
		{"file name", "{FileName}", Record{Path: "/photos/2024/IMG_1.jpg"}, "IMG_1.jpg"},
		{"date", "{DateTimeOriginal}", Record{DateTimeOriginal: "2024:05:01 10:11:12"}, "2024-05-01 10:11:12"},
		{"iso", "{ISOSpeedRatings}", Record{ISO: "100"}, "ISO-100"},
		{"shutter plain fraction", "{ShutterSpeedValue}", Record{ExposureTime: "0.5"}, "1/2s"},
		{"shutter plain seconds", "{ShutterSpeedValue}", Record{ExposureTime: "2"}, "2s"},
		{"shutter long rational", "{ShutterSpeedValue}", Record{ExposureTime: "10/1"}, "10s"},
		{"shutter zero numerator", "{ShutterSpeedValue}", Record{ExposureTime: "0/1"}, ""},
		{"shutter negative", "{ShutterSpeedValue}", Record{ExposureTime: "-1/200"}, ""},
		{"focal zero denominator", "{FocalLength}", Record{FocalLength: "50/0"}, ""},
		{"focal spaced unit", "{FocalLength}", Record{FocalLength: "50.0 mm"}, "50mm"},
		{"fnumber zero denominator", "{FNumber}", Record{FNumber: "28/0"}, ""},
		{"fnumber plain", "{FNumber}", Record{FNumber: "2.8"}, "f/2.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.tmpl, tt.rec)
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestRenderIsPure(t *testing.T) {
	first := Render(fullTemplate, nikon)
	for i := 0; i < 3; i++ {
		if got := Render(fullTemplate, nikon); got != first {
			t.Fatalf("Render call %d = %q, first call returned %q", i, got, first)
		}
	}
}

func TestRenderLeavesNoTokens(t *testing.T) {
	token := regexp.MustCompile(`\{[^}]*\}`)
	templates := []string{
		fullTemplate,
		"{{FNumber}}",
		"{a{b}c}",
		"{}{ }{,}",
		"{'x', }{Copyright,}",
		"{'unclosed, FNumber}",
		"{Copyright}{CameraMake}",
	}
	records := []Record{
		{},
		nikon,
		{Copyright: "{x}", CameraMake: "}{"},
	}

	for _, tmpl := range templates {
		for _, r := range records {
			if got := Render(tmpl, r); token.MatchString(got) {
				t.Errorf("Render(%q, %+v) = %q, still contains a token", tmpl, r, got)
			}
		}
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize(`a {B}{'x, y', C} {D,e}{"q", F}{G`)
	want := []segment{
		{kind: literal, text: "a "},
		{kind: placeholder, field: "B"},
		{kind: conditional, text: "x, y", field: "C"},
		{kind: literal, text: " "},
		{kind: withDefault, field: "D", text: "e"},
		{kind: conditional, text: "q", field: "F"},
		{kind: literal, text: "{G"},
	}

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(segment{})); diff != "" {
		t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestKnown(t *testing.T) {
	for _, f := range Fields {
		if !Known(f) {
			t.Errorf("Known(%q) = false", f)
		}
	}
	if Known("Lens") {
		t.Errorf("Known(%q) = true", "Lens")
	}
}

func TestUnknown(t *testing.T) {
	tests := []struct {
		tmpl string
		want []string
	}{
		{"{CameraMake}{' | ', FNumber}", nil},
		{"Shot on {Lens} | {Lens,none} {'by ', Author}", []string{"Lens", "Author"}},
		{"{not a token} {}", nil},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, Unknown(tc.tmpl)); diff != "" {
			t.Errorf("Unknown(%q) mismatch (-want +got):\n%s", tc.tmpl, diff)
		}
	}
}
