package pipeline

import (
	"testing"

	"github.com/jmylchreest/yourpalette/internal/colour"
)

func TestClampColorCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 2},
		{0, 2},
		{1, 2},
		{2, 2},
		{7, 7},
		{12, 12},
		{13, 12},
		{50, 12},
	}
	for _, tt := range tests {
		if got := ClampColorCount(tt.in); got != tt.want {
			t.Errorf("ClampColorCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParamsNormalize(t *testing.T) {
	got := Params{ColorCount: 99, Method: "dbscan", Space: "cmyk"}.Normalize()
	want := Params{ColorCount: 12, Method: colour.MethodKMeans, Space: colour.SpaceRGB}
	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}

	valid := Params{ColorCount: 5, Method: colour.MethodSpectral, Space: colour.SpaceLAB}
	if got := valid.Normalize(); got != valid {
		t.Errorf("Normalize() changed valid params: %+v", got)
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name                 string
		count, method, space string
		want                 Params
		wantWarn             bool
	}{
		{"defaults", "", "", "", DefaultParams(), false},
		{"all set", "6", "minibatch", "hsv", Params{6, colour.MethodMiniBatch, colour.SpaceHSV}, false},
		{"clamped low", "1", "kmeans", "rgb", Params{2, colour.MethodKMeans, colour.SpaceRGB}, false},
		{"clamped high", "50", "", "", Params{12, colour.MethodKMeans, colour.SpaceRGB}, false},
		{"alias", "4", "graph", "LAB", Params{4, colour.MethodSpectral, colour.SpaceLAB}, false},
		{"bad count", "many", "", "", DefaultParams(), true},
		{"bad method", "4", "dbscan", "", DefaultParams(), true},
		{"bad space", "4", "", "cmyk", DefaultParams(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.count, tt.method, tt.space, DefaultParams())
			if (err != nil) != tt.wantWarn {
				t.Errorf("ParseParams() warning = %v, wantWarn %v", err, tt.wantWarn)
			}
			if got != tt.want {
				t.Errorf("ParseParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
