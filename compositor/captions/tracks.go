package captions

import (
	"video_compositor/compositor/engine"
)

// Track is one independent caption sequence. Tracks render as their own
// text-draw chains and stack in insertion order; nothing couples the timing
// of one track to another.
type Track struct {
	Name    string  `json:"name,omitempty"`
	Entries []Entry `json:"entries"`

	// Track-wide defaults; individual entries may override placement via
	// their alignment/vertical hints.
	Style    *engine.Style    `json:"style,omitempty"`
	Position *engine.Position `json:"position,omitempty"`
}

// ComposeTracks appends every track's cues to the timeline as text layers,
// tracks in the given order, cues in start order within each track.
func ComposeTracks(t engine.Timeline, tracks []Track) engine.Timeline {
	for _, track := range tracks {
		sorted := make([]Entry, len(track.Entries))
		copy(sorted, track.Entries)
		sortByStart(sorted)

		for _, e := range sorted {
			t = t.Add(engine.Layer{
				Type:      engine.LayerText,
				StartTime: e.Start,
				EndTime:   e.End,
				Text: &engine.TextLayer{
					Text:     e.Text,
					Position: entryPosition(e, track.Position),
					Style:    entryStyle(e, track.Style),
				},
			})
		}
	}
	return t
}

// entryPosition resolves a cue's placement: explicit alignment/vertical hints
// win, then the track default, then bottom-center at 90% height.
func entryPosition(e Entry, trackDefault *engine.Position) *engine.Position {
	if e.Alignment == "" && e.Vertical == "" {
		if trackDefault != nil {
			return trackDefault
		}
		return &engine.Position{X: "50%", Y: "90%", Anchor: "bottom"}
	}

	x, ax := "50%", ""
	switch e.Alignment {
	case "left":
		x, ax = "10%", "left"
	case "right":
		x, ax = "90%", "right"
	}

	y, ay := "90%", "bottom"
	switch e.Vertical {
	case "top":
		y, ay = "10%", "top"
	case "middle":
		y, ay = "50%", ""
	}

	return &engine.Position{X: x, Y: y, Anchor: anchorName(ax, ay)}
}

// anchorName composes a 9-point grid name from the horizontal and vertical
// parts, where "" means centered on that axis.
func anchorName(horizontal, vertical string) string {
	switch {
	case horizontal == "" && vertical == "":
		return "center"
	case horizontal == "":
		return vertical
	case vertical == "":
		return horizontal
	}
	return vertical + "-" + horizontal
}

// entryStyle merges a cue's inline style into the track default. Only color
// carries through to drawing; weight and decoration would need per-variant
// font files.
func entryStyle(e Entry, trackDefault *engine.Style) *engine.Style {
	if e.Style == nil || e.Style.Color == "" {
		return trackDefault
	}

	var st engine.Style
	if trackDefault != nil {
		st = *trackDefault
	}
	st.FontColor = e.Style.Color
	return &st
}
