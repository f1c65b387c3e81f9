package engine

import (
	"strings"
	"testing"
)

func TestKenBurnsDefaults(t *testing.T) {
	e := KenBurnsEffect{}.withDefaults()

	if e.StartZoom != 1.0 || e.EndZoom != 1.2 {
		t.Errorf("zoom defaults = %v..%v, want 1.0..1.2", e.StartZoom, e.EndZoom)
	}
	if e.Duration != 5 {
		t.Errorf("duration default = %v, want 5", e.Duration)
	}
	if e.Direction != "center-out" {
		t.Errorf("direction default = %q, want center-out", e.Direction)
	}
	if e.Easing != "linear" {
		t.Errorf("easing default = %q, want linear", e.Easing)
	}
}

func TestKenBurnsUnknownValuesFallBack(t *testing.T) {
	e := KenBurnsEffect{Direction: "sideways", Easing: "bouncy"}.withDefaults()
	if e.Direction != "center-out" {
		t.Errorf("unknown direction resolved to %q", e.Direction)
	}
	if e.Easing != "linear" {
		t.Errorf("unknown easing resolved to %q", e.Easing)
	}
}

func TestKenBurnsParams(t *testing.T) {
	e := KenBurnsEffect{Direction: "right", StartZoom: 1, EndZoom: 1.4, Duration: 4, Easing: "linear"}
	params := e.params(1920, 1080, 30)

	got := map[string]Param{}
	for _, p := range params {
		got[p.Key] = p
	}

	if got["d"].Value != "120" {
		t.Errorf("frame count = %q, want 120", got["d"].Value)
	}
	if got["s"].Value != "1920x1080" {
		t.Errorf("output size = %q, want 1920x1080", got["s"].Value)
	}
	if !got["z"].Raw || !strings.HasPrefix(got["z"].Value, "1.000+0.400*") {
		t.Errorf("zoom expression = %+v", got["z"])
	}
	if !strings.Contains(got["x"].Value, "(iw-iw/zoom)*") {
		t.Errorf("right pan x = %q", got["x"].Value)
	}
}

func TestKenBurnsEasingExpr(t *testing.T) {
	tests := []struct {
		easing string
		want   string
	}{
		{"linear", "p"},
		{"ease-in", "pow(p,2)"},
		{"ease-out", "(1-pow(1-p,2))"},
		{"sinusoidal", "(0.5-0.5*cos(PI*p))"},
	}

	for _, tt := range tests {
		if got := easingExpr(tt.easing, "p"); got != tt.want {
			t.Errorf("easingExpr(%q) = %q, want %q", tt.easing, got, tt.want)
		}
	}
}

func TestSuggestKenBurns(t *testing.T) {
	if e := SuggestKenBurns("portrait", "shorts"); e.Direction != "up" {
		t.Errorf("portrait/shorts direction = %q, want up", e.Direction)
	}

	// Unknown platform falls back to the content type's youtube entry.
	if e := SuggestKenBurns("landscape", "vimeo"); e.Direction != "right" {
		t.Errorf("landscape fallback direction = %q, want right", e.Direction)
	}

	// Unknown content type falls back to the default suggestion.
	if e := SuggestKenBurns("hologram", "myspace"); e != defaultSuggestion {
		t.Errorf("unknown pair = %+v, want default", e)
	}
}

func TestSuggestionsAreStable(t *testing.T) {
	first := SuggestKenBurns("product", "shorts")
	for i := 0; i < 5; i++ {
		if got := SuggestKenBurns("product", "shorts"); got != first {
			t.Fatal("suggestion lookup is not stable")
		}
	}
}
