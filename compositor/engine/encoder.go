package engine

import (
	"fmt"
	"strconv"
	"strings"

	"video_compositor/compositor/models"
)

// filterEscaper handles the metacharacters of the filter grammar. Values pass
// through it unless the parameter is Raw.
var filterEscaper = strings.NewReplacer(
	`\`, `\\`,
	`:`, `\:`,
	`'`, `\'`,
	`,`, `\,`,
	`[`, `\[`,
	`]`, `\]`,
)

// EscapeFilterValue escapes a parameter value so it survives the filter
// grammar unchanged.
func EscapeFilterValue(value string) string {
	return filterEscaper.Replace(value)
}

// paramString renders one parameter. Raw values are ffmpeg expressions and go
// out single-quoted verbatim; everything else is escaped. Positional
// parameters have no key.
func paramString(p Param) string {
	value := p.Value
	if p.Raw {
		value = "'" + value + "'"
	} else {
		value = EscapeFilterValue(value)
	}
	if p.Key == "" {
		return value
	}
	return p.Key + "=" + value
}

// nodeString renders one node as [in...]name=k=v:k=v[out].
func nodeString(n FilterNode) string {
	var b strings.Builder
	for _, in := range n.Inputs {
		b.WriteString("[")
		b.WriteString(in)
		b.WriteString("]")
	}
	b.WriteString(n.Name)
	for i, p := range n.Params {
		if i == 0 {
			b.WriteString("=")
		} else {
			b.WriteString(":")
		}
		b.WriteString(paramString(p))
	}
	b.WriteString("[")
	b.WriteString(n.Output)
	b.WriteString("]")
	return b.String()
}

// GraphString renders the full -filter_complex value, nodes joined by ";" in
// creation order.
func GraphString(g *FilterGraph) string {
	parts := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		parts[i] = nodeString(n)
	}
	return strings.Join(parts, ";")
}

// EmitArgs flattens a compiled graph into the ffmpeg argument vector:
// inputs in first-use order, the filter graph, stream maps, then encode
// flags from the settings. Identical graph and settings give an identical
// vector.
func EmitArgs(g *FilterGraph, settings models.Settings, outputPath string) []string {
	settings = settings.WithDefaults()

	args := []string{"-y"}
	for _, in := range g.Inputs {
		args = append(args, in.Args...)
		args = append(args, "-i", in.Source)
	}

	if len(g.Nodes) > 0 {
		args = append(args, "-filter_complex", GraphString(g))
	}

	if g.VideoOut != "" {
		args = append(args, "-map", "["+g.VideoOut+"]")
	}
	if g.AudioOut != "" {
		args = append(args, "-map", "["+g.AudioOut+"]")
	}

	if g.VideoOut != "" {
		args = append(args,
			"-c:v", settings.VideoCodec,
			"-preset", settings.Preset,
			"-crf", strconv.Itoa(settings.CRF),
			"-pix_fmt", settings.PixelFormat,
			"-r", strconv.Itoa(settings.FPS),
		)
	}
	if g.AudioOut != "" {
		args = append(args,
			"-c:a", settings.AudioCodec,
			"-b:a", settings.AudioBitrate,
			"-ar", strconv.Itoa(settings.SampleRate),
		)
	}

	if settings.Duration > 0 {
		args = append(args, "-t", formatNumber(settings.Duration))
	}

	return append(args, outputPath)
}

// Emit renders the full command line as one string, quoting arguments the
// shell or the filter grammar would otherwise split. Byte-identical for
// identical input.
func Emit(g *FilterGraph, settings models.Settings, outputPath string) string {
	args := EmitArgs(g, settings, outputPath)
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, "ffmpeg")
	for _, a := range args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(a string) string {
	if a == "" || strings.ContainsAny(a, ` ;[]'(),*&"`) {
		return `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
	}
	return a
}

// BuildCommand compiles a timeline and emits its argument vector in one step.
func BuildCommand(t Timeline, outputPath string) ([]string, error) {
	g, err := Compile(t)
	if err != nil {
		return nil, err
	}
	return EmitArgs(g, t.Settings, outputPath), nil
}

// BuildCommandLine compiles a timeline and emits the printable command.
func BuildCommandLine(t Timeline, outputPath string) (string, error) {
	g, err := Compile(t)
	if err != nil {
		return "", err
	}
	return Emit(g, t.Settings, outputPath), nil
}

// Summary describes a compiled graph for logs.
func Summary(g *FilterGraph) string {
	return fmt.Sprintf("%d inputs, %d filter nodes, %d layers",
		len(g.Inputs), len(g.Nodes), len(g.LayerLabels))
}
