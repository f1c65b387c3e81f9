package captions

import (
	"strings"
	"testing"

	"video_compositor/compositor/engine"
	"video_compositor/compositor/models"
)

func testTimeline() engine.Timeline {
	return engine.NewTimeline(models.Settings{Width: 1920, Height: 1080, FPS: 30, Duration: 20})
}

func TestComposeTracksLayering(t *testing.T) {
	main := Track{Name: "main", Entries: []Entry{
		{Start: 0, End: 4, Text: "first"},
		{Start: 5, End: 9, Text: "second"},
	}}
	translation := Track{Name: "translation", Entries: []Entry{
		{Start: 0, End: 4, Text: "premier"},
	}, Position: &engine.Position{X: "50%", Y: "10%", Anchor: "top"}}

	tl := ComposeTracks(testTimeline(), []Track{main, translation})

	if len(tl.Layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(tl.Layers))
	}

	// Track order is z-order: main's cues precede the translation's.
	texts := []string{}
	for _, l := range tl.Layers {
		if l.Type != engine.LayerText {
			t.Fatalf("unexpected layer type %q", l.Type)
		}
		texts = append(texts, l.Text.Text)
	}
	want := []string{"first", "second", "premier"}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("layer %d text = %q, want %q", i, texts[i], want[i])
		}
	}

	// Cue windows carry through as layer windows.
	start, end, bounded := tl.Layers[1].Window()
	if !bounded || start != 5 || end != 9 {
		t.Errorf("second cue window = (%v, %v, %v)", start, end, bounded)
	}

	// Track default position applies to its cues.
	if tl.Layers[2].Text.Position.Y != "10%" {
		t.Errorf("translation position = %+v", tl.Layers[2].Text.Position)
	}
}

func TestComposeTracksCompiles(t *testing.T) {
	track := Track{Entries: []Entry{
		{Start: 1, End: 3, Text: "hello"},
		{Start: 4, End: 6, Text: "world"},
	}}

	tl := ComposeTracks(testTimeline().AddVideo("base.mp4", 0, 20), []Track{track})
	command, err := engine.BuildCommandLine(tl, "out.mp4")
	if err != nil {
		t.Fatalf("BuildCommandLine() error: %v", err)
	}
	if !strings.Contains(command, "hello") || !strings.Contains(command, "world") {
		t.Errorf("command missing cue text: %s", command)
	}
	if !strings.Contains(command, "between(t,1,3)") {
		t.Errorf("command missing cue gate: %s", command)
	}
}

func TestEntryPosition(t *testing.T) {
	tests := []struct {
		name       string
		entry      Entry
		wantX      string
		wantY      string
		wantAnchor string
	}{
		{"default bottom center", Entry{}, "50%", "90%", "bottom"},
		{"top left", Entry{Alignment: "left", Vertical: "top"}, "10%", "10%", "top-left"},
		{"middle right", Entry{Alignment: "right", Vertical: "middle"}, "90%", "50%", "right"},
		{"middle center", Entry{Alignment: "center", Vertical: "middle"}, "50%", "50%", "center"},
		{"bottom right", Entry{Alignment: "right"}, "90%", "90%", "bottom-right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := entryPosition(tt.entry, nil)
			if pos.X != tt.wantX || pos.Y != tt.wantY || pos.Anchor != tt.wantAnchor {
				t.Errorf("got %+v, want {%s %s %s}", pos, tt.wantX, tt.wantY, tt.wantAnchor)
			}
		})
	}
}

func TestEntryStyleMergesColor(t *testing.T) {
	trackStyle := &engine.Style{FontSize: 40, FontColor: "white"}
	e := Entry{Style: &TextStyle{Color: "#FF0000"}}

	st := entryStyle(e, trackStyle)
	if st.FontColor != "#FF0000" {
		t.Errorf("cue color did not override: %q", st.FontColor)
	}
	if st.FontSize != 40 {
		t.Errorf("track style lost: size %d", st.FontSize)
	}
	if trackStyle.FontColor != "white" {
		t.Error("track default mutated")
	}

	if got := entryStyle(Entry{}, trackStyle); got != trackStyle {
		t.Error("cue without style should return the track default")
	}
}
