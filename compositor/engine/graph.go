package engine

import (
	"fmt"
	"strconv"
	"strings"

	"video_compositor/compositor/models"
)

// Compile lowers one timeline snapshot into a filter graph. It is pure and
// synchronous: the same timeline always produces the same graph, and nothing
// persists across calls.
//
// Per visual layer the local chain is built in fixed order: geometry
// (scale/crop/pad), then color and style effects (eq/chromakey/blur/vignette/
// corner mask/opacity), then the time gate, which rides on the layer's fold
// step (overlay for video/image, drawtext for text, the filter itself for
// filter layers). Visual layers fold left-to-right in z-order onto a
// generated background canvas; audio layers fold independently into one mix.
//
// Source resolution is a collaborator concern: a layer with an unresolved
// source still gets a label and chain.
func Compile(t Timeline) (*FilterGraph, error) {
	settings := t.Settings.WithDefaults()

	c := &compiler{
		settings: settings,
		graph:    &FilterGraph{},
		inputIdx: make(map[string]int),
		counters: make(map[string]int),
	}

	for i, layer := range t.Layers {
		if err := checkLayer(i, layer); err != nil {
			return nil, err
		}
	}
	if len(t.Layers) == 0 {
		return c.graph, nil
	}

	canvasDur := c.canvasDuration(t.Layers)

	composite := ""
	if hasVisualLayer(t.Layers) {
		src := fmt.Sprintf("color=c=black:size=%dx%d:rate=%d:duration=%s",
			settings.Width, settings.Height, settings.FPS, formatNumber(canvasDur))
		idx := c.inputIndex(src, "-f", "lavfi")
		composite = fmt.Sprintf("%d:v", idx)
	}

	var audioChains []string

	for _, layer := range t.Layers {
		switch layer.Type {
		case LayerVideo:
			label := c.buildVideoChain(layer)
			c.graph.LayerLabels = append(c.graph.LayerLabels, label)
			composite = c.overlay(composite, label, layer)
			if chain, ok := c.buildPolicyAudioChain(layer); ok {
				audioChains = append(audioChains, chain)
			}

		case LayerImage:
			label := c.buildImageChain(layer, canvasDur)
			c.graph.LayerLabels = append(c.graph.LayerLabels, label)
			composite = c.overlay(composite, label, layer)

		case LayerText:
			composite = c.drawText(composite, layer)
			c.graph.LayerLabels = append(c.graph.LayerLabels, composite)

		case LayerFilter:
			composite = c.applyFilterLayer(composite, layer)
			c.graph.LayerLabels = append(c.graph.LayerLabels, composite)

		case LayerAudio:
			label := c.buildAudioChain(layer)
			c.graph.LayerLabels = append(c.graph.LayerLabels, label)
			audioChains = append(audioChains, label)
		}
	}

	c.graph.VideoOut = composite
	if len(audioChains) > 0 {
		c.graph.AudioOut = c.node("amix", []Param{
			{Key: "inputs", Value: strconv.Itoa(len(audioChains))},
			{Key: "duration", Value: "longest"},
		}, audioChains, "mix")
	}

	return c.graph, nil
}

// checkLayer rejects the only structurally invalid layers: an unrecognized
// or mismatched variant, and a filter layer with nothing legal to emit.
// Invalid values inside a well-typed layer never fail compilation.
func checkLayer(i int, l Layer) error {
	switch l.Type {
	case LayerVideo:
		if l.Video == nil {
			return &StructuralError{LayerIndex: i, Reason: "video layer without video payload"}
		}
	case LayerImage:
		if l.Image == nil {
			return &StructuralError{LayerIndex: i, Reason: "image layer without image payload"}
		}
	case LayerAudio:
		if l.Audio == nil {
			return &StructuralError{LayerIndex: i, Reason: "audio layer without audio payload"}
		}
	case LayerText:
		if l.Text == nil {
			return &StructuralError{LayerIndex: i, Reason: "text layer without text payload"}
		}
	case LayerFilter:
		if l.Filter == nil {
			return &StructuralError{LayerIndex: i, Reason: "filter layer without filter payload"}
		}
		if l.Filter.Name == "" {
			return &StructuralError{LayerIndex: i, Reason: "filter layer without an operation name"}
		}
		if len(legalParams(l.Filter.Params)) == 0 {
			return &StructuralError{LayerIndex: i, Reason: fmt.Sprintf("filter %q has no graph-legal parameters", l.Filter.Name)}
		}
	default:
		return &StructuralError{LayerIndex: i, Reason: fmt.Sprintf("unrecognized layer variant %q", l.Type)}
	}
	return nil
}

// legalParams drops parameters that would emit nothing.
func legalParams(params []Param) []Param {
	out := make([]Param, 0, len(params))
	for _, p := range params {
		if p.Key == "" && p.Value == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasVisualLayer(layers []Layer) bool {
	for _, l := range layers {
		if l.Type != LayerAudio {
			return true
		}
	}
	return false
}

type compiler struct {
	settings models.Settings
	graph    *FilterGraph
	inputIdx map[string]int
	counters map[string]int
}

// nextLabel returns a fresh label for the prefix. Counters are per prefix
// and monotonic, so labels stay unique however many layers a timeline has.
func (c *compiler) nextLabel(prefix string) string {
	n := c.counters[prefix]
	c.counters[prefix] = n + 1
	return fmt.Sprintf("%s%d", prefix, n)
}

// inputIndex registers a source as an input, deduplicating by source string
// and input flags. The same file opened with different flags, such as two
// image holds of different lengths, gets a separate input for each. Inputs
// keep first-use order.
func (c *compiler) inputIndex(source string, args ...string) int {
	key := source + "\x00" + strings.Join(args, "\x00")
	if idx, ok := c.inputIdx[key]; ok {
		return idx
	}
	idx := len(c.graph.Inputs)
	c.graph.Inputs = append(c.graph.Inputs, Input{Source: source, Args: args})
	c.inputIdx[key] = idx
	return idx
}

// node appends a filter node and returns its freshly assigned output label.
func (c *compiler) node(name string, params []Param, inputs []string, labelPrefix string) string {
	out := c.nextLabel(labelPrefix)
	c.graph.Nodes = append(c.graph.Nodes, FilterNode{
		Name:   name,
		Params: params,
		Inputs: inputs,
		Output: out,
	})
	return out
}

// canvasDuration decides how long the background canvas runs: the global
// duration when set, otherwise the latest bounded layer end, otherwise a
// 10-second floor so the canvas source is always well formed.
func (c *compiler) canvasDuration(layers []Layer) float64 {
	if c.settings.Duration > 0 {
		return c.settings.Duration
	}
	maxEnd := 0.0
	for _, l := range layers {
		if _, end, bounded := l.Window(); bounded && end > maxEnd {
			maxEnd = end
		}
	}
	if maxEnd <= 0 {
		return 10
	}
	return maxEnd
}

// enableParam builds the time gate for a layer's fold step. Unbounded layers
// gate on between(t,start,inf).
func enableParam(l Layer) Param {
	start, end, bounded := l.Window()
	if !bounded {
		return Param{Key: "enable", Value: fmt.Sprintf("between(t,%s,inf)", formatNumber(start)), Raw: true}
	}
	return Param{Key: "enable", Value: fmt.Sprintf("between(t,%s,%s)", formatNumber(start), formatNumber(end)), Raw: true}
}

// buildVideoChain builds the per-layer chain for a video layer and returns
// the layer's output label.
func (c *compiler) buildVideoChain(l Layer) string {
	idx := c.inputIndex(l.Video.Source)
	cur := fmt.Sprintf("%d:v", idx)

	cur = c.geometryNodes(cur, l.Video.Transform, l.Video.Position, "v")

	if l.Video.ChromaKey != nil {
		cur = c.node("chromakey", l.Video.ChromaKey.params(), []string{cur}, "v")
	}

	return c.effectNodes(cur, l.Video.Transform, "v")
}

// buildImageChain builds the per-layer chain for a still image. Image inputs
// loop for the layer's window (or the canvas duration when unbounded).
func (c *compiler) buildImageChain(l Layer, canvasDur float64) string {
	start, end, bounded := l.Window()
	hold := canvasDur - start
	if bounded {
		hold = end - start
	}
	if hold <= 0 {
		hold = canvasDur
	}

	idx := c.inputIndex(l.Image.Source, "-loop", "1", "-t", formatNumber(hold))
	cur := fmt.Sprintf("%d:v", idx)

	if l.Image.KenBurns != nil {
		// Upscale before zoompan so sub-pixel panning stays smooth.
		cur = c.node("scale", []Param{
			{Value: strconv.Itoa(c.settings.Width * 2)},
			{Value: "-2"},
		}, []string{cur}, "img")
		cur = c.node("zoompan", l.Image.KenBurns.params(c.settings.Width, c.settings.Height, c.settings.FPS), []string{cur}, "img")
	} else {
		cur = c.geometryNodes(cur, l.Image.Transform, l.Image.Position, "img")
	}

	return c.effectNodes(cur, l.Image.Transform, "img")
}

// geometryNodes emits the scale/crop/pad prefix of a visual chain. There is
// always at least a scale node, so every layer owns at least one label.
func (c *compiler) geometryNodes(cur string, tr *Transform, pos *Position, prefix string) string {
	w, h := c.settings.Width, c.settings.Height
	if tr != nil && tr.Width > 0 {
		w = tr.Width
	}
	if tr != nil && tr.Height > 0 {
		h = tr.Height
	}

	scaleParams := []Param{
		{Value: strconv.Itoa(w)},
		{Value: strconv.Itoa(h)},
	}
	if tr != nil && tr.Pad {
		scaleParams = append(scaleParams, Param{Key: "force_original_aspect_ratio", Value: "decrease"})
	}
	cur = c.node("scale", scaleParams, []string{cur}, prefix)

	if tr != nil && tr.CropWidth > 0 && tr.CropHeight > 0 {
		cur = c.node("crop", []Param{
			{Value: strconv.Itoa(tr.CropWidth)},
			{Value: strconv.Itoa(tr.CropHeight)},
			{Value: strconv.Itoa(tr.CropX)},
			{Value: strconv.Itoa(tr.CropY)},
		}, []string{cur}, prefix)
	}

	if tr != nil && tr.Pad {
		cur = c.node("pad", []Param{
			{Value: strconv.Itoa(w)},
			{Value: strconv.Itoa(h)},
			{Value: "(ow-iw)/2"},
			{Value: "(oh-ih)/2"},
		}, []string{cur}, prefix)
	}

	return cur
}

// effectNodes emits the color/style suffix of a visual chain: eq, blur,
// vignette, shadow backdrop, rounded-corner mask, opacity.
func (c *compiler) effectNodes(cur string, tr *Transform, prefix string) string {
	if tr == nil {
		return cur
	}

	if tr.Brightness != 0 || tr.Contrast != 0 {
		var params []Param
		if tr.Brightness != 0 {
			params = append(params, Param{Key: "brightness", Value: fmt.Sprintf("%.2f", tr.Brightness)})
		}
		if tr.Contrast != 0 {
			params = append(params, Param{Key: "contrast", Value: fmt.Sprintf("%.2f", tr.Contrast)})
		}
		cur = c.node("eq", params, []string{cur}, prefix)
	}

	if tr.Blur > 0 {
		cur = c.node("gblur", []Param{{Key: "sigma", Value: fmt.Sprintf("%.2f", tr.Blur)}}, []string{cur}, prefix)
	}

	if tr.Vignette {
		cur = c.node("vignette", []Param{{Key: "angle", Value: "PI/5", Raw: true}}, []string{cur}, prefix)
	}

	if tr.Shadow {
		// Simple backdrop shadow: a translucent black border behind the layer.
		cur = c.node("pad", []Param{
			{Value: "iw+12"},
			{Value: "ih+12"},
			{Value: "6"},
			{Value: "6"},
			{Value: "black@0.4"},
		}, []string{cur}, prefix)
	}

	needsAlpha := tr.CornerRadius > 0 || (tr.Opacity != 0 && tr.Opacity != 1)
	if needsAlpha {
		cur = c.node("format", []Param{{Value: "rgba"}}, []string{cur}, prefix)
	}

	if tr.CornerRadius > 0 {
		cur = c.node("geq", []Param{
			{Key: "r", Value: "r(X,Y)", Raw: true},
			{Key: "g", Value: "g(X,Y)", Raw: true},
			{Key: "b", Value: "b(X,Y)", Raw: true},
			{Key: "a", Value: cornerMaskExpr(tr.CornerRadius), Raw: true},
		}, []string{cur}, prefix)
	}

	if tr.Opacity != 0 && tr.Opacity != 1 {
		cur = c.node("colorchannelmixer", []Param{
			{Key: "aa", Value: fmt.Sprintf("%.2f", clamp01(tr.Opacity))},
		}, []string{cur}, prefix)
	}

	return cur
}

// overlay folds one visual layer onto the running composite. The layer's
// time gate rides on the overlay.
func (c *compiler) overlay(composite, layerLabel string, l Layer) string {
	var pos *Position
	switch l.Type {
	case LayerVideo:
		pos = l.Video.Position
	case LayerImage:
		pos = l.Image.Position
	}

	x, y := "0", "0"
	if pos != nil {
		x, y = ResolvePosition(pos, c.settings.Width, c.settings.Height, "w", "h")
	}

	params := []Param{
		{Key: "x", Value: x, Raw: true},
		{Key: "y", Value: y, Raw: true},
		enableParam(l),
	}
	return c.node("overlay", params, []string{composite, layerLabel}, "ovl")
}

// drawText folds a text layer onto the composite via drawtext, gated to the
// layer's window. Position resolves against the drawn text's own size.
func (c *compiler) drawText(composite string, l Layer) string {
	x, y := ResolvePosition(l.Text.Position, c.settings.Width, c.settings.Height, "text_w", "text_h")

	params := []Param{{Key: "text", Value: l.Text.Text}}
	params = append(params, resolveTextStyle(l.Text.Style)...)
	params = append(params,
		Param{Key: "x", Value: x, Raw: true},
		Param{Key: "y", Value: y, Raw: true},
		enableParam(l),
	)
	return c.node("drawtext", params, []string{composite}, "txt")
}

// applyFilterLayer folds a named filter over the composite, gated to the
// layer's window.
func (c *compiler) applyFilterLayer(composite string, l Layer) string {
	params := append(legalParams(l.Filter.Params), enableParam(l))
	return c.node(l.Filter.Name, params, []string{composite}, "fx")
}

// buildAudioChain builds the per-layer processing for an audio layer:
// volume, pitch, fades, then start-time delay.
func (c *compiler) buildAudioChain(l Layer) string {
	a := l.Audio
	idx := c.inputIndex(a.Source)
	cur := fmt.Sprintf("%d:a", idx)

	volume := a.Volume
	if volume == 0 {
		volume = 1.0
	}
	cur = c.node("volume", []Param{{Value: fmt.Sprintf("%.2f", volume)}}, []string{cur}, "a")

	if a.Pitch > 0 && a.Pitch != 1.0 {
		rate := c.settings.SampleRate
		cur = c.node("asetrate", []Param{{Value: strconv.Itoa(int(float64(rate) * a.Pitch))}}, []string{cur}, "a")
		cur = c.node("aresample", []Param{{Value: strconv.Itoa(rate)}}, []string{cur}, "a")
		tempo := 1.0 / a.Pitch
		if tempo < 0.5 {
			tempo = 0.5
		}
		if tempo > 2.0 {
			tempo = 2.0
		}
		cur = c.node("atempo", []Param{{Value: fmt.Sprintf("%.3f", tempo)}}, []string{cur}, "a")
	}

	start, end, bounded := l.Window()
	if a.FadeIn > 0 {
		cur = c.node("afade", []Param{
			{Key: "t", Value: "in"},
			{Key: "st", Value: "0"},
			{Key: "d", Value: formatNumber(a.FadeIn)},
		}, []string{cur}, "a")
	}
	if a.FadeOut > 0 && bounded {
		cur = c.node("afade", []Param{
			{Key: "t", Value: "out"},
			{Key: "st", Value: formatNumber(end - start - a.FadeOut)},
			{Key: "d", Value: formatNumber(a.FadeOut)},
		}, []string{cur}, "a")
	}

	return c.delayToStart(cur, start)
}

// delayToStart shifts an audio chain so it enters the mix at the layer's
// start time.
func (c *compiler) delayToStart(cur string, start float64) string {
	if start <= 0 {
		return cur
	}
	return c.node("adelay", []Param{
		{Value: strconv.Itoa(int(start * 1000))},
		{Key: "all", Value: "1"},
	}, []string{cur}, "a")
}

// buildPolicyAudioChain includes a keyed video layer's own audio according
// to its policy. Mute (the default) contributes nothing. The track follows
// the layer's window: trimmed to its length when bounded, then delayed to
// its start, so a clip shown at t=5 is also heard at t=5.
func (c *compiler) buildPolicyAudioChain(l Layer) (string, bool) {
	volume, ok := audioPolicyVolume(l.Video.AudioPolicy, l.Video.AudioVolume)
	if !ok {
		return "", false
	}
	idx := c.inputIndex(l.Video.Source)
	cur := fmt.Sprintf("%d:a", idx)
	cur = c.node("volume", []Param{{Value: fmt.Sprintf("%.2f", volume)}}, []string{cur}, "a")

	start, end, bounded := l.Window()
	if bounded {
		cur = c.node("atrim", []Param{
			{Key: "end", Value: formatNumber(end - start)},
		}, []string{cur}, "a")
	}
	return c.delayToStart(cur, start), true
}
