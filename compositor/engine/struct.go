package engine

import "fmt"

// LayerType tags the variant carried by a Layer.
type LayerType string

const (
	LayerVideo  LayerType = "video"
	LayerImage  LayerType = "image"
	LayerAudio  LayerType = "audio"
	LayerText   LayerType = "text"
	LayerFilter LayerType = "filter"
)

// Layer is one timed unit of content in a Timeline. Exactly one payload
// pointer matching Type is set; the others stay nil so the graph builder can
// switch exhaustively on Type. Z-order is the layer's position in the
// timeline, not a field.
type Layer struct {
	Type      LayerType `json:"type"`
	StartTime float64   `json:"start_time,omitempty"`
	Duration  float64   `json:"duration,omitempty"` // 0 = unbounded
	EndTime   float64   `json:"end_time,omitempty"` // takes precedence over Duration when set

	Video  *VideoLayer  `json:"video,omitempty"`
	Image  *ImageLayer  `json:"image,omitempty"`
	Audio  *AudioLayer  `json:"audio,omitempty"`
	Text   *TextLayer   `json:"text,omitempty"`
	Filter *FilterLayer `json:"filter,omitempty"`
}

// Window returns the layer's time window. bounded is false when the layer has
// no end, in which case end is meaningless.
func (l Layer) Window() (start, end float64, bounded bool) {
	start = l.StartTime
	if start < 0 {
		start = 0
	}
	switch {
	case l.EndTime > 0:
		return start, l.EndTime, true
	case l.Duration > 0:
		return start, start + l.Duration, true
	}
	return start, 0, false
}

// SourceRef returns the layer's source reference, or "" for layers that draw
// on the running composite (text, filter).
func (l Layer) SourceRef() string {
	switch l.Type {
	case LayerVideo:
		if l.Video != nil {
			return l.Video.Source
		}
	case LayerImage:
		if l.Image != nil {
			return l.Image.Source
		}
	case LayerAudio:
		if l.Audio != nil {
			return l.Audio.Source
		}
	}
	return ""
}

// VideoLayer is a video clip composited at its z-position. Chroma keying and
// picture-in-picture treatment are optional.
type VideoLayer struct {
	Source    string             `json:"source"`
	Position  *Position          `json:"position,omitempty"`
	Transform *Transform         `json:"transform,omitempty"`
	ChromaKey *ChromaKeySettings `json:"chroma_key,omitempty"`

	// Audio policy for the clip's own audio track: "mute" (default), "duck",
	// "full", or "custom" with AudioVolume in [0,1].
	AudioPolicy string  `json:"audio_policy,omitempty"`
	AudioVolume float64 `json:"audio_volume,omitempty"`
}

// ImageLayer is a still image, optionally animated with a Ken Burns pan/zoom.
type ImageLayer struct {
	Source    string          `json:"source"`
	Position  *Position       `json:"position,omitempty"`
	Transform *Transform      `json:"transform,omitempty"`
	KenBurns  *KenBurnsEffect `json:"ken_burns,omitempty"`
}

// AudioLayer is an audio track mixed into the output.
type AudioLayer struct {
	Source  string  `json:"source"`
	Volume  float64 `json:"volume,omitempty"` // 0 = unset, defaults to 1.0
	FadeIn  float64 `json:"fade_in,omitempty"`
	FadeOut float64 `json:"fade_out,omitempty"`
	Pitch   float64 `json:"pitch,omitempty"` // 1.0 = unchanged
}

// TextLayer draws styled text over the composite during its time window.
type TextLayer struct {
	Text     string    `json:"text"`
	Position *Position `json:"position,omitempty"`
	Style    *Style    `json:"style,omitempty"`
}

// FilterLayer applies a named filter with ordered parameters to the running
// composite. A filter layer with no name or no graph-legal parameters is a
// structural error.
type FilterLayer struct {
	Name   string  `json:"name"`
	Params []Param `json:"params,omitempty"`
}

// Position places an element on the output frame. X and Y accept absolute
// pixels ("120"), percentages ("50%"), or nothing. Anchor names which point
// of the element lands on the target coordinate, from the 9-point grid:
// top-left, top, top-right, left, center, right, bottom-left, bottom,
// bottom-right. Missing values fall back to x=50%, y=50%, anchor=top-left.
type Position struct {
	X      string `json:"x,omitempty"`
	Y      string `json:"y,omitempty"`
	Anchor string `json:"anchor,omitempty"`
}

// Transform holds geometry and color adjustments applied to a visual layer,
// in fixed chain order: scale/crop/pad first, color effects after.
type Transform struct {
	Width  int `json:"width,omitempty"`  // scale target, 0 = frame width
	Height int `json:"height,omitempty"` // scale target, 0 = frame height

	CropWidth  int `json:"crop_width,omitempty"`
	CropHeight int `json:"crop_height,omitempty"`
	CropX      int `json:"crop_x,omitempty"`
	CropY      int `json:"crop_y,omitempty"`

	Pad bool `json:"pad,omitempty"` // letterbox to frame size after scaling

	Brightness   float64 `json:"brightness,omitempty"` // -1..1, 0 = unchanged
	Contrast     float64 `json:"contrast,omitempty"`   // 0 = unchanged (1.0 identity)
	Blur         float64 `json:"blur,omitempty"`       // gaussian sigma
	Vignette     bool    `json:"vignette,omitempty"`
	Opacity      float64 `json:"opacity,omitempty"`       // 0 = unset, clamped to [0,1]
	CornerRadius int     `json:"corner_radius,omitempty"` // rounded-corner mask in px
	Shadow       bool    `json:"shadow,omitempty"`
}

// Style describes text appearance. Abstract fields map onto drawtext
// parameters: background -> box/boxcolor/boxborderw, stroke ->
// bordercolor/borderw. Invalid colors fall back to defaults instead of
// failing.
type Style struct {
	FontFile    string `json:"font_file,omitempty"`
	FontSize    int    `json:"font_size,omitempty"` // default 48
	FontColor   string `json:"font_color,omitempty"`
	StrokeColor string `json:"stroke_color,omitempty"`
	StrokeWidth int    `json:"stroke_width,omitempty"`

	BackgroundColor string `json:"background_color,omitempty"`
	Padding         int    `json:"padding,omitempty"`
	LineSpacing     int    `json:"line_spacing,omitempty"`
}

// Param is one ordered filter parameter. Raw parameters carry ffmpeg
// expressions and are emitted single-quoted verbatim; everything else has
// graph metacharacters escaped.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Raw   bool   `json:"raw,omitempty"`
}

// FilterNode is one operation in a compiled graph: ordered input labels,
// the operation name with ordered parameters, and a single output label.
type FilterNode struct {
	Name   string
	Params []Param
	Inputs []string
	Output string
}

// Input is one -i argument of the emitted command, with any per-input flags
// (e.g. -loop 1 for stills, -f lavfi for generated sources).
type Input struct {
	Source string
	Args   []string
}

// FilterGraph is the disposable result of one compile call.
type FilterGraph struct {
	Nodes  []FilterNode
	Inputs []Input // distinct sources in first-use order

	VideoOut string // final composite label, "" when no visual layers
	AudioOut string // final mix label, "" when no audio layers

	// LayerLabels holds each layer's own output label in z-order, before the
	// compositing fold. Labels are unique within the graph.
	LayerLabels []string
}

// StructuralError is the only fatal compile error: a layer whose type cannot
// be interpreted, or a filter layer with nothing legal to emit.
type StructuralError struct {
	LayerIndex int
	Reason     string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("layer %d: %s", e.LayerIndex, e.Reason)
}
