package engine

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"video_compositor/compositor/models"
)

func testSettings() models.Settings {
	return models.Settings{Width: 1920, Height: 1080, FPS: 30, Duration: 10}
}

func findNodes(g *FilterGraph, name string) []FilterNode {
	var nodes []FilterNode
	for _, n := range g.Nodes {
		if n.Name == name {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func paramValue(n FilterNode, key string) (string, bool) {
	for _, p := range n.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func TestCompileEmptyTimeline(t *testing.T) {
	g, err := Compile(NewTimeline(testSettings()))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if len(g.Nodes) != 0 || len(g.Inputs) != 0 {
		t.Errorf("empty timeline produced %d nodes, %d inputs", len(g.Nodes), len(g.Inputs))
	}
	if g.VideoOut != "" || g.AudioOut != "" {
		t.Errorf("empty timeline produced outputs %q/%q", g.VideoOut, g.AudioOut)
	}
}

func TestCompileBasicComposition(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddVideo("intro.mp4", 0, 10).
		AddText("Hello", 2, 3, &Position{X: "50%", Y: "80%", Anchor: "center"}, nil)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if len(g.LayerLabels) != 2 {
		t.Fatalf("got %d layer labels, want 2", len(g.LayerLabels))
	}
	if g.LayerLabels[0] == g.LayerLabels[1] {
		t.Errorf("layer labels collide: %q", g.LayerLabels[0])
	}

	draws := findNodes(g, "drawtext")
	if len(draws) != 1 {
		t.Fatalf("got %d drawtext nodes, want 1", len(draws))
	}
	if enable, _ := paramValue(draws[0], "enable"); enable != "between(t,2,5)" {
		t.Errorf("drawtext enable = %q, want %q", enable, "between(t,2,5)")
	}
	if text, _ := paramValue(draws[0], "text"); text != "Hello" {
		t.Errorf("drawtext text = %q, want %q", text, "Hello")
	}

	if overlays := findNodes(g, "overlay"); len(overlays) != 1 {
		t.Errorf("got %d overlay nodes, want 1", len(overlays))
	}

	if len(g.Inputs) != 2 {
		t.Fatalf("got %d inputs, want canvas + source", len(g.Inputs))
	}
	if g.Inputs[1].Source != "intro.mp4" {
		t.Errorf("second input = %q, want intro.mp4", g.Inputs[1].Source)
	}
}

func TestCompileLabelUniqueness(t *testing.T) {
	tl := NewTimeline(testSettings())
	const n = 3000
	for i := 0; i < n; i++ {
		switch i % 3 {
		case 0:
			tl = tl.AddVideo(fmt.Sprintf("clip%d.mp4", i), float64(i), 1)
		case 1:
			tl = tl.AddText(fmt.Sprintf("caption %d", i), float64(i), 1, nil, nil)
		case 2:
			tl = tl.AddAudio(fmt.Sprintf("track%d.mp3", i), float64(i), 1)
		}
	}

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if len(g.LayerLabels) != n {
		t.Fatalf("got %d layer labels, want %d", len(g.LayerLabels), n)
	}

	seen := make(map[string]bool, n)
	for _, label := range g.LayerLabels {
		if seen[label] {
			t.Fatalf("duplicate layer label %q", label)
		}
		seen[label] = true
	}
}

func TestCompileStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		layer Layer
	}{
		{"unrecognized variant", Layer{Type: "hologram"}},
		{"video without payload", Layer{Type: LayerVideo}},
		{"filter without name", Layer{Type: LayerFilter, Filter: &FilterLayer{Params: []Param{{Key: "k", Value: "v"}}}}},
		{"filter without parameters", Layer{Type: LayerFilter, Filter: &FilterLayer{Name: "hue"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTimeline(testSettings()).AddVideo("a.mp4", 0, 5).Add(tt.layer)
			_, err := Compile(tl)
			if err == nil {
				t.Fatal("Compile() succeeded, want StructuralError")
			}
			serr, ok := err.(*StructuralError)
			if !ok {
				t.Fatalf("got %T, want *StructuralError", err)
			}
			if serr.LayerIndex != 1 {
				t.Errorf("LayerIndex = %d, want 1", serr.LayerIndex)
			}
		})
	}
}

func TestCompileChromaKeyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		color string
	}{
		{"omitted color", ""},
		{"unparseable color", "not-a-color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTimeline(testSettings()).AddVideoLayer(VideoLayer{
				Source:    "green.mp4",
				ChromaKey: &ChromaKeySettings{Color: tt.color},
			}, 0, 5)

			g, err := Compile(tl)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}

			keys := findNodes(g, "chromakey")
			if len(keys) != 1 {
				t.Fatalf("got %d chromakey nodes, want 1", len(keys))
			}
			color, ok := paramValue(keys[0], "color")
			if !ok {
				t.Fatal("chromakey node has no color parameter")
			}
			if color != DefaultKeyColor {
				t.Errorf("color = %q, want default %q", color, DefaultKeyColor)
			}
		})
	}
}

func TestCompileClampsEffectRanges(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddVideoLayer(VideoLayer{
			Source:    "green.mp4",
			ChromaKey: &ChromaKeySettings{Similarity: 1.5, Blend: -0.5},
		}, 0, 5).
		AddImageLayer(ImageLayer{
			Source:    "photo.jpg",
			Transform: &Transform{Opacity: 1.5},
		}, 0, 5)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	keys := findNodes(g, "chromakey")
	if len(keys) != 1 {
		t.Fatalf("got %d chromakey nodes, want 1", len(keys))
	}
	for _, key := range []string{"similarity", "blend"} {
		raw, ok := paramValue(keys[0], key)
		if !ok {
			t.Fatalf("chromakey node missing %s", key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			t.Errorf("%s = %q, want a value in [0,1]", key, raw)
		}
	}

	mixers := findNodes(g, "colorchannelmixer")
	if len(mixers) != 1 {
		t.Fatalf("got %d colorchannelmixer nodes, want 1", len(mixers))
	}
	raw, _ := paramValue(mixers[0], "aa")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		t.Errorf("opacity aa = %q, want a value in [0,1]", raw)
	}
}

func TestCompileAudioFold(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddAudio("music.mp3", 0, 10).
		AddAudioLayer(AudioLayer{Source: "voice.mp3", Volume: 0.8, FadeIn: 1}, 2, 8)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if g.VideoOut != "" {
		t.Errorf("audio-only timeline has video output %q", g.VideoOut)
	}
	if g.AudioOut == "" {
		t.Fatal("audio timeline has no audio output")
	}

	mixes := findNodes(g, "amix")
	if len(mixes) != 1 {
		t.Fatalf("got %d amix nodes, want 1", len(mixes))
	}
	if inputs, _ := paramValue(mixes[0], "inputs"); inputs != "2" {
		t.Errorf("amix inputs = %q, want 2", inputs)
	}

	delays := findNodes(g, "adelay")
	if len(delays) != 1 {
		t.Fatalf("got %d adelay nodes, want 1 for the offset track", len(delays))
	}
	if len(delays[0].Params) == 0 || delays[0].Params[0].Value != "2000" {
		t.Errorf("adelay = %v, want 2000ms", delays[0].Params)
	}
}

func TestCompileOmitsAudioWithoutAudioLayers(t *testing.T) {
	tl := NewTimeline(testSettings()).AddVideo("clip.mp4", 0, 5)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if g.AudioOut != "" {
		t.Errorf("video-only timeline has audio output %q", g.AudioOut)
	}
}

func TestCompileVideoAudioPolicy(t *testing.T) {
	tests := []struct {
		policy     string
		wantVolume string
		wantTrack  bool
	}{
		{AudioFull, "1.00", true},
		{AudioDuck, "0.30", true},
		{AudioMute, "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run("policy "+tt.policy, func(t *testing.T) {
			tl := NewTimeline(testSettings()).AddVideoLayer(VideoLayer{
				Source:      "pip.mp4",
				ChromaKey:   &ChromaKeySettings{},
				AudioPolicy: tt.policy,
			}, 0, 5)

			g, err := Compile(tl)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}

			volumes := findNodes(g, "volume")
			if !tt.wantTrack {
				if len(volumes) != 0 || g.AudioOut != "" {
					t.Errorf("policy %q leaked audio into the graph", tt.policy)
				}
				return
			}
			if len(volumes) != 1 {
				t.Fatalf("got %d volume nodes, want 1", len(volumes))
			}
			if got := volumes[0].Params[0].Value; got != tt.wantVolume {
				t.Errorf("volume = %q, want %q", got, tt.wantVolume)
			}
			if g.AudioOut == "" {
				t.Error("policy track did not reach the mix")
			}
		})
	}
}

func TestCompilePolicyAudioFollowsLayerWindow(t *testing.T) {
	tl := NewTimeline(testSettings()).AddVideoLayer(VideoLayer{
		Source:      "pip.mp4",
		ChromaKey:   &ChromaKeySettings{},
		AudioPolicy: AudioFull,
	}, 5, 5)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	// The visual side is gated to the window.
	overlays := findNodes(g, "overlay")
	if len(overlays) != 1 {
		t.Fatalf("got %d overlay nodes, want 1", len(overlays))
	}
	if enable, _ := paramValue(overlays[0], "enable"); enable != "between(t,5,10)" {
		t.Errorf("overlay enable = %q, want between(t,5,10)", enable)
	}

	// The policy track must be heard over the same window: delayed to the
	// start and trimmed to the layer's length.
	delays := findNodes(g, "adelay")
	if len(delays) != 1 {
		t.Fatalf("got %d adelay nodes, want 1 for the policy track", len(delays))
	}
	if delays[0].Params[0].Value != "5000" {
		t.Errorf("adelay = %v, want 5000ms", delays[0].Params)
	}

	trims := findNodes(g, "atrim")
	if len(trims) != 1 {
		t.Fatalf("got %d atrim nodes, want 1", len(trims))
	}
	if end, _ := paramValue(trims[0], "end"); end != "5" {
		t.Errorf("atrim end = %q, want 5", end)
	}
}

func TestCompileDeduplicatesInputs(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddVideo("same.mp4", 0, 3).
		AddVideo("same.mp4", 3, 3).
		AddVideo("other.mp4", 6, 3)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	// canvas + two distinct sources
	if len(g.Inputs) != 3 {
		t.Fatalf("got %d inputs, want 3", len(g.Inputs))
	}
	if g.Inputs[1].Source != "same.mp4" || g.Inputs[2].Source != "other.mp4" {
		t.Errorf("inputs out of first-use order: %q, %q", g.Inputs[1].Source, g.Inputs[2].Source)
	}
}

func TestCompileSeparatesInputsWithDifferentFlags(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddImage("slide.png", 0, 3).
		AddImage("slide.png", 3, 7)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	// canvas + one image input per hold length
	if len(g.Inputs) != 3 {
		t.Fatalf("got %d inputs, want 3", len(g.Inputs))
	}
	first := strings.Join(g.Inputs[1].Args, " ")
	second := strings.Join(g.Inputs[2].Args, " ")
	if !strings.Contains(first, "-t 3") {
		t.Errorf("first hold flags = %q, want -t 3", first)
	}
	if !strings.Contains(second, "-t 7") {
		t.Errorf("second hold flags = %q, want -t 7", second)
	}
}

func TestCompileUnboundedLayerGatesToInf(t *testing.T) {
	tl := NewTimeline(testSettings()).AddVideo("bg.mp4", 3, 0)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	overlays := findNodes(g, "overlay")
	if len(overlays) != 1 {
		t.Fatalf("got %d overlay nodes, want 1", len(overlays))
	}
	enable, _ := paramValue(overlays[0], "enable")
	if enable != "between(t,3,inf)" {
		t.Errorf("enable = %q, want between(t,3,inf)", enable)
	}
}

func TestCompileKenBurnsImage(t *testing.T) {
	tl := NewTimeline(testSettings()).AddImageLayer(ImageLayer{
		Source:   "photo.jpg",
		KenBurns: &KenBurnsEffect{Direction: "right", StartZoom: 1, EndZoom: 1.3, Duration: 5},
	}, 0, 5)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	pans := findNodes(g, "zoompan")
	if len(pans) != 1 {
		t.Fatalf("got %d zoompan nodes, want 1", len(pans))
	}
	if z, ok := paramValue(pans[0], "z"); !ok || !strings.Contains(z, "0.3") {
		t.Errorf("zoompan z = %q, want zoom span 0.3", z)
	}
	if s, _ := paramValue(pans[0], "s"); s != "1920x1080" {
		t.Errorf("zoompan s = %q, want 1920x1080", s)
	}

	// Still image inputs loop for the layer's hold.
	if len(g.Inputs) < 2 || g.Inputs[1].Args[0] != "-loop" {
		t.Errorf("image input args = %v, want -loop 1", g.Inputs[1].Args)
	}
}

func TestCompileFilterLayerAppliesToComposite(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddVideo("clip.mp4", 0, 10).
		AddFilter("hue", []Param{{Key: "s", Value: "0"}}, 2, 4)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	hues := findNodes(g, "hue")
	if len(hues) != 1 {
		t.Fatalf("got %d hue nodes, want 1", len(hues))
	}
	if enable, _ := paramValue(hues[0], "enable"); enable != "between(t,2,6)" {
		t.Errorf("hue enable = %q, want between(t,2,6)", enable)
	}
	if g.VideoOut != hues[0].Output {
		t.Errorf("video output %q, want the filter output %q", g.VideoOut, hues[0].Output)
	}
}
