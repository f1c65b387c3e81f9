package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Documented style fallbacks. A layer is never dropped for a styling error;
// invalid values resolve to these instead.
const (
	DefaultFontColor = "white"
	DefaultFontSize  = 48
	DefaultBoxColor  = "black@0.5"
	DefaultKeyColor  = "0x00FF00"
)

// namedColors maps common color names to ffmpeg hex form.
var namedColors = map[string]string{
	"white":   "0xFFFFFF",
	"black":   "0x000000",
	"red":     "0xFF0000",
	"green":   "0x00FF00",
	"blue":    "0x0000FF",
	"yellow":  "0xFFFF00",
	"cyan":    "0x00FFFF",
	"magenta": "0xFF00FF",
	"gray":    "0x808080",
	"orange":  "0xFFA500",
}

// NormalizeColor converts a color to a form the filter grammar accepts:
// named colors and #RRGGBB become 0xRRGGBB, 0xRRGGBB passes through, and a
// name@alpha suffix is preserved. Anything else resolves to fallback.
func NormalizeColor(color, fallback string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return fallback
	}

	base, alpha := color, ""
	if i := strings.IndexByte(color, '@'); i >= 0 {
		base, alpha = color[:i], color[i:]
		if _, err := strconv.ParseFloat(alpha[1:], 64); err != nil {
			return fallback
		}
	}

	if hex, ok := namedColors[strings.ToLower(base)]; ok {
		return hex + alpha
	}
	if strings.HasPrefix(base, "#") && isHex(base[1:]) && len(base) == 7 {
		return "0x" + strings.ToUpper(base[1:]) + alpha
	}
	if strings.HasPrefix(base, "0x") && isHex(base[2:]) && len(base) == 8 {
		return "0x" + strings.ToUpper(base[2:]) + alpha
	}
	return fallback
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// resolveTextStyle maps a Style onto ordered drawtext parameters. Missing or
// invalid fields take the documented defaults; the parameter order is fixed
// so emission stays deterministic.
func resolveTextStyle(st *Style) []Param {
	if st == nil {
		st = &Style{}
	}

	fontSize := st.FontSize
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}

	params := []Param{
		{Key: "fontsize", Value: strconv.Itoa(fontSize)},
		{Key: "fontcolor", Value: NormalizeColor(st.FontColor, DefaultFontColor)},
	}

	if st.FontFile != "" {
		params = append(params, Param{Key: "fontfile", Value: st.FontFile})
	}

	// Stroke maps onto the drawtext text border.
	if st.StrokeWidth > 0 {
		params = append(params,
			Param{Key: "bordercolor", Value: NormalizeColor(st.StrokeColor, "black")},
			Param{Key: "borderw", Value: strconv.Itoa(st.StrokeWidth)},
		)
	}

	// Background maps onto the drawtext box; padding becomes the box border
	// width around the text.
	if st.BackgroundColor != "" || st.Padding > 0 {
		params = append(params,
			Param{Key: "box", Value: "1"},
			Param{Key: "boxcolor", Value: NormalizeColor(st.BackgroundColor, DefaultBoxColor)},
		)
		if st.Padding > 0 {
			params = append(params, Param{Key: "boxborderw", Value: strconv.Itoa(st.Padding)})
		}
	}

	if st.LineSpacing > 0 {
		params = append(params, Param{Key: "line_spacing", Value: strconv.Itoa(st.LineSpacing)})
	}

	return params
}

// cornerMaskExpr generates the alpha expression for rounded corners: full
// alpha everywhere except the four corner squares, where pixels outside the
// quarter-circle of the given radius go transparent.
func cornerMaskExpr(radius int) string {
	r := strconv.Itoa(radius)
	return fmt.Sprintf(
		"if(gt(abs(W/2-X),W/2-%[1]s)*gt(abs(H/2-Y),H/2-%[1]s),if(lte(hypot(%[1]s-(W/2-abs(W/2-X)),%[1]s-(H/2-abs(H/2-Y))),%[1]s),255,0),255)",
		r)
}
