package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// anchorPoints maps the 9-point grid to the fraction of the element's size
// that sits left of / above the anchor point.
var anchorPoints = map[string][2]float64{
	"top-left":     {0, 0},
	"top":          {0.5, 0},
	"top-right":    {1, 0},
	"left":         {0, 0.5},
	"center":       {0.5, 0.5},
	"right":        {1, 0.5},
	"bottom-left":  {0, 1},
	"bottom":       {0.5, 1},
	"bottom-right": {1, 1},
}

// ResolveTarget converts a position's X/Y into absolute pixel coordinates on
// a frame of the given size. Percentages resolve to dimension*pct/100;
// invalid or missing values fall back to the 50% default rather than failing.
func ResolveTarget(pos *Position, width, height int) (float64, float64) {
	var xs, ys string
	if pos != nil {
		xs, ys = pos.X, pos.Y
	}
	x := resolveCoord(xs, width)
	y := resolveCoord(ys, height)
	return x, y
}

// resolveCoord parses an absolute pixel value or a percentage string against
// one frame dimension. Anything unparseable resolves to the 50% default.
func resolveCoord(value string, frameDim int) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return float64(frameDim) * 0.5
	}
	if strings.HasSuffix(value, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return float64(frameDim) * 0.5
		}
		return float64(frameDim) * pct / 100
	}
	px, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return float64(frameDim) * 0.5
	}
	return px
}

// ResolvePosition resolves a position into the coordinate expressions a
// filter consumes. elemW/elemH are the expressions for the element's own
// dimensions in the target filter's grammar ("w"/"h" for overlay,
// "text_w"/"text_h" for drawtext). The anchor offset is subtracted so the
// anchor point, not the top-left corner, lands on the target coordinate.
// Unknown anchors fall back to top-left (no offset).
func ResolvePosition(pos *Position, width, height int, elemW, elemH string) (string, string) {
	tx, ty := ResolveTarget(pos, width, height)

	anchor := ""
	if pos != nil {
		anchor = pos.Anchor
	}
	frac, ok := anchorPoints[anchor]
	if !ok {
		frac = [2]float64{0, 0}
	}

	return offsetExpr(tx, frac[0], elemW), offsetExpr(ty, frac[1], elemH)
}

// offsetExpr renders "target - fraction*elem" in ffmpeg expression syntax,
// simplifying the common whole and half fractions.
func offsetExpr(target, frac float64, elem string) string {
	t := formatNumber(target)
	switch frac {
	case 0:
		return t
	case 0.5:
		return fmt.Sprintf("%s-%s/2", t, elem)
	case 1:
		return fmt.Sprintf("%s-%s", t, elem)
	}
	return fmt.Sprintf("%s-%s*%s", t, elem, formatNumber(frac))
}

// formatNumber renders a float without a trailing fraction when it is whole,
// keeping emitted commands stable and readable.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
