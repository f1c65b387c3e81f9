package engine

import (
	"fmt"
	"strconv"
)

// KenBurnsEffect is a slow pan/zoom applied to a still image. The fragment
// it produces is a pure function of its fields and the output geometry.
type KenBurnsEffect struct {
	// Direction of the pan: left, right, up, down, center-out, diagonal.
	Direction string `json:"direction,omitempty"`

	StartZoom float64 `json:"start_zoom,omitempty"` // default 1.0
	EndZoom   float64 `json:"end_zoom,omitempty"`   // default 1.2
	Duration  float64 `json:"duration,omitempty"`   // seconds, default 5

	// Easing of zoom(t): linear, ease-in, ease-out, ease-in-out, sinusoidal.
	Easing string `json:"easing,omitempty"`
}

// withDefaults fills unset fields; unknown direction/easing fall back rather
// than fail, matching the style-fallback policy.
func (e KenBurnsEffect) withDefaults() KenBurnsEffect {
	if e.StartZoom <= 0 {
		e.StartZoom = 1.0
	}
	if e.EndZoom <= 0 {
		e.EndZoom = 1.2
	}
	if e.Duration <= 0 {
		e.Duration = 5
	}
	if _, ok := panExprs[e.Direction]; !ok {
		e.Direction = "center-out"
	}
	switch e.Easing {
	case "linear", "ease-in", "ease-out", "ease-in-out", "sinusoidal":
	default:
		e.Easing = "linear"
	}
	return e
}

// easingExpr returns the eased progress expression in terms of the raw
// progress expression p (0 at the first frame, 1 at the last).
func easingExpr(easing, p string) string {
	switch easing {
	case "ease-in":
		return fmt.Sprintf("pow(%s,2)", p)
	case "ease-out":
		return fmt.Sprintf("(1-pow(1-%s,2))", p)
	case "ease-in-out":
		return fmt.Sprintf("if(lt(%s,0.5),2*pow(%s,2),1-2*pow(1-%s,2))", p, p, p)
	case "sinusoidal":
		return fmt.Sprintf("(0.5-0.5*cos(PI*%s))", p)
	default:
		return p
	}
}

// panExprs gives the zoompan x/y expressions per direction. %s is the eased
// progress. The focal trajectory keeps the visible window moving across the
// zoomed image; center-out stays locked on the image center.
var panExprs = map[string][2]string{
	"center-out": {"iw/2-(iw/zoom/2)", "ih/2-(ih/zoom/2)"},
	"left":       {"(iw-iw/zoom)*(1-%s)", "ih/2-(ih/zoom/2)"},
	"right":      {"(iw-iw/zoom)*%s", "ih/2-(ih/zoom/2)"},
	"up":         {"iw/2-(iw/zoom/2)", "(ih-ih/zoom)*(1-%s)"},
	"down":       {"iw/2-(iw/zoom/2)", "(ih-ih/zoom)*%s"},
	"diagonal":   {"(iw-iw/zoom)*%s", "(ih-ih/zoom)*%s"},
}

// params builds the ordered zoompan parameters for the output geometry.
func (e KenBurnsEffect) params(width, height, fps int) []Param {
	e = e.withDefaults()

	frames := int(e.Duration * float64(fps))
	if frames < 1 {
		frames = 1
	}

	// Progress runs over the frame counter; the final frame reaches 1.
	denom := frames - 1
	if denom < 1 {
		denom = 1
	}
	progress := fmt.Sprintf("(on/%d)", denom)
	eased := easingExpr(e.Easing, progress)

	zoom := fmt.Sprintf("%.3f+%.3f*%s", e.StartZoom, e.EndZoom-e.StartZoom, eased)

	pan := panExprs[e.Direction]
	x, y := pan[0], pan[1]
	if e.Direction == "diagonal" {
		x = fmt.Sprintf(x, eased)
		y = fmt.Sprintf(y, eased)
	} else {
		if containsVerb(x) {
			x = fmt.Sprintf(x, eased)
		}
		if containsVerb(y) {
			y = fmt.Sprintf(y, eased)
		}
	}

	return []Param{
		{Key: "z", Value: zoom, Raw: true},
		{Key: "x", Value: x, Raw: true},
		{Key: "y", Value: y, Raw: true},
		{Key: "d", Value: strconv.Itoa(frames)},
		{Key: "s", Value: fmt.Sprintf("%dx%d", width, height)},
		{Key: "fps", Value: strconv.Itoa(fps)},
	}
}

func containsVerb(expr string) bool {
	for i := 0; i+1 < len(expr); i++ {
		if expr[i] == '%' && expr[i+1] == 's' {
			return true
		}
	}
	return false
}

// kenBurnsSuggestions is the fixed lookup used by SuggestKenBurns, keyed by
// "contentType|platform". No learned model: a content/platform pair always
// maps to the same motion.
var kenBurnsSuggestions = map[string]KenBurnsEffect{
	"portrait|youtube":    {Direction: "center-out", StartZoom: 1.0, EndZoom: 1.15, Duration: 6, Easing: "ease-in-out"},
	"portrait|shorts":     {Direction: "up", StartZoom: 1.1, EndZoom: 1.3, Duration: 4, Easing: "ease-out"},
	"portrait|tiktok":     {Direction: "up", StartZoom: 1.1, EndZoom: 1.35, Duration: 3, Easing: "ease-out"},
	"portrait|instagram":  {Direction: "center-out", StartZoom: 1.0, EndZoom: 1.2, Duration: 5, Easing: "sinusoidal"},
	"landscape|youtube":   {Direction: "right", StartZoom: 1.05, EndZoom: 1.2, Duration: 8, Easing: "linear"},
	"landscape|shorts":    {Direction: "diagonal", StartZoom: 1.1, EndZoom: 1.3, Duration: 4, Easing: "ease-in-out"},
	"landscape|tiktok":    {Direction: "left", StartZoom: 1.1, EndZoom: 1.3, Duration: 3, Easing: "ease-in"},
	"landscape|instagram": {Direction: "right", StartZoom: 1.0, EndZoom: 1.15, Duration: 5, Easing: "linear"},
	"product|youtube":     {Direction: "center-out", StartZoom: 1.0, EndZoom: 1.3, Duration: 5, Easing: "ease-in"},
	"product|shorts":      {Direction: "center-out", StartZoom: 1.2, EndZoom: 1.4, Duration: 3, Easing: "ease-out"},
	"product|instagram":   {Direction: "center-out", StartZoom: 1.1, EndZoom: 1.35, Duration: 4, Easing: "sinusoidal"},
	"document|youtube":    {Direction: "down", StartZoom: 1.0, EndZoom: 1.1, Duration: 10, Easing: "linear"},
	"document|shorts":     {Direction: "down", StartZoom: 1.0, EndZoom: 1.15, Duration: 6, Easing: "linear"},
}

// defaultSuggestion is used when a content/platform pair has no table entry.
var defaultSuggestion = KenBurnsEffect{
	Direction: "center-out", StartZoom: 1.0, EndZoom: 1.2, Duration: 5, Easing: "ease-in-out",
}

// SuggestKenBurns picks a pan/zoom for a content type and platform from the
// fixed table, falling back per content type and then to the default.
func SuggestKenBurns(contentType, platform string) KenBurnsEffect {
	if e, ok := kenBurnsSuggestions[contentType+"|"+platform]; ok {
		return e
	}
	if e, ok := kenBurnsSuggestions[contentType+"|youtube"]; ok {
		return e
	}
	return defaultSuggestion
}
