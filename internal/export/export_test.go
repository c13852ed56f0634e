package export

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jmylchreest/yourpalette/internal/colour"
)

func testRecords() []colour.ColorRecord {
	return colour.FormatRecords(colour.Palette{{R: 1}, {G: 1}})
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		records []colour.ColorRecord
		want    string
	}{
		{"css empty", FormatCSS, nil, ":root {\n}\n"},
		{"css", FormatCSS, testRecords(), ":root {\n  --color-1: #ff0000;\n  --color-2: #00ff00;\n}\n"},
		{"scss", FormatSCSS, testRecords(), "$color-1: #ff0000;\n$color-2: #00ff00;\n$palette: ($color-1, $color-2);\n"},
		{"scss empty", FormatSCSS, nil, "$palette: ();\n"},
		{"txt", FormatText, testRecords(), "#ff0000\n#00ff00\n"},
		{"txt empty", FormatText, nil, ""},
		{"json empty", FormatJSON, nil, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.format, tt.records)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderJSON(t *testing.T) {
	got, err := Render(FormatJSON, testRecords())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var records []colour.ColorRecord
	if err := json.Unmarshal([]byte(got), &records); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(records) != 2 || records[1].Hex != "#00ff00" || records[0].R != 255 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestRenderUnsupported(t *testing.T) {
	if _, err := Render("pdf", testRecords()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Render() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"css", FormatCSS, false},
		{"JSON", FormatJSON, false},
		{" scss ", FormatSCSS, false},
		{"txt", FormatText, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
