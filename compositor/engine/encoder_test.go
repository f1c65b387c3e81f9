package engine

import (
	"fmt"
	"strings"
	"testing"
)

func basicTimeline() Timeline {
	return NewTimeline(testSettings()).
		AddVideo("intro.mp4", 0, 10).
		AddText("Hello", 2, 3, &Position{X: "50%", Y: "80%", Anchor: "center"}, nil)
}

func TestEmitDeterminism(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddVideo("a.mp4", 0, 5).
		AddImageLayer(ImageLayer{Source: "b.jpg", KenBurns: &KenBurnsEffect{}}, 5, 5).
		AddText("title", 1, 3, nil, &Style{FontColor: "red", StrokeWidth: 2}).
		AddAudio("music.mp3", 0, 10)

	first, err := BuildCommandLine(tl, "out.mp4")
	if err != nil {
		t.Fatalf("BuildCommandLine() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := BuildCommandLine(tl, "out.mp4")
		if err != nil {
			t.Fatalf("BuildCommandLine() error on run %d: %v", i, err)
		}
		if again != first {
			t.Fatalf("command differs between runs:\n%s\n%s", first, again)
		}
	}
}

func TestEmitContainsSourceAndText(t *testing.T) {
	command, err := BuildCommandLine(basicTimeline(), "out.mp4")
	if err != nil {
		t.Fatalf("BuildCommandLine() error: %v", err)
	}

	if !strings.Contains(command, "intro.mp4") {
		t.Errorf("command missing source path: %s", command)
	}
	if !strings.Contains(command, "Hello") {
		t.Errorf("command missing layer text: %s", command)
	}
	if !strings.Contains(command, "-filter_complex") {
		t.Errorf("command missing filter graph: %s", command)
	}
	if !strings.HasSuffix(command, "out.mp4") {
		t.Errorf("command does not end with destination: %s", command)
	}
}

func TestEmitArgsMaps(t *testing.T) {
	g, err := Compile(basicTimeline())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	args := EmitArgs(g, testSettings(), "out.mp4")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-map ["+g.VideoOut+"]") {
		t.Errorf("args missing video map for %q: %s", g.VideoOut, joined)
	}
	if strings.Contains(joined, "-map [a") || strings.Contains(joined, "-c:a") {
		t.Errorf("audio flags present without audio layers: %s", joined)
	}
	if !strings.Contains(joined, "-t 10") {
		t.Errorf("args missing duration limit: %s", joined)
	}
}

func TestEmitArgsAudioOnly(t *testing.T) {
	tl := NewTimeline(testSettings()).AddAudio("music.mp3", 0, 10)
	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	args := EmitArgs(g, testSettings(), "out.m4a")
	joined := strings.Join(args, " ")

	if strings.Contains(joined, "-c:v") {
		t.Errorf("video encode flags present without video layers: %s", joined)
	}
	if !strings.Contains(joined, "-map ["+g.AudioOut+"]") {
		t.Errorf("args missing audio map: %s", joined)
	}
	if !strings.Contains(joined, "-c:a aac") {
		t.Errorf("args missing audio codec: %s", joined)
	}
}

func TestEscapeFilterValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a:b", `a\:b`},
		{"it's", `it\'s`},
		{"a,b", `a\,b`},
		{"[label]", `\[label\]`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := EscapeFilterValue(tt.in); got != tt.want {
			t.Errorf("EscapeFilterValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmitEscapesTextMetacharacters(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddVideo("clip.mp4", 0, 5).
		AddText("it's 5:00, [really]", 0, 5, nil, nil)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	graph := GraphString(g)
	if !strings.Contains(graph, `it\'s 5\:00\, \[really\]`) {
		t.Errorf("graph does not escape text metacharacters: %s", graph)
	}
}

func TestQuoteArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.mp4", "plain.mp4"},
		{"", `""`},
		{"two words", `"two words"`},
		{`say "hi"`, `"say \"hi\""`},
		{`"quoted"`, `"\"quoted\""`},
	}

	for _, tt := range tests {
		if got := quoteArg(tt.in); got != tt.want {
			t.Errorf("quoteArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmitQuotesEmbeddedQuotes(t *testing.T) {
	tl := NewTimeline(testSettings()).
		AddVideo("clip.mp4", 0, 5).
		AddText(`she said "go"`, 0, 5, nil, nil)

	g, err := Compile(tl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	command := Emit(g, testSettings(), "out.mp4")
	unescaped := 0
	for i := 0; i < len(command); i++ {
		if command[i] == '"' && (i == 0 || command[i-1] != '\\') {
			unescaped++
		}
	}
	if unescaped%2 != 0 {
		t.Errorf("command has unbalanced quotes: %s", command)
	}
}

func TestNodeString(t *testing.T) {
	tests := []struct {
		name string
		node FilterNode
		want string
	}{
		{
			"keyed and positional params",
			FilterNode{
				Name:   "scale",
				Params: []Param{{Value: "1920"}, {Value: "1080"}},
				Inputs: []string{"0:v"},
				Output: "v0",
			},
			"[0:v]scale=1920:1080[v0]",
		},
		{
			"raw expression stays quoted and unescaped",
			FilterNode{
				Name:   "overlay",
				Params: []Param{{Key: "enable", Value: "between(t,2,5)", Raw: true}},
				Inputs: []string{"0:v", "v0"},
				Output: "ovl0",
			},
			"[0:v][v0]overlay=enable='between(t,2,5)'[ovl0]",
		},
		{
			"no params",
			FilterNode{Name: "vignette", Inputs: []string{"v0"}, Output: "v1"},
			"[v0]vignette[v1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeString(tt.node); got != tt.want {
				t.Errorf("nodeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmitDeterminismLargeTimeline(t *testing.T) {
	tl := NewTimeline(testSettings())
	for i := 0; i < 500; i++ {
		tl = tl.AddText(fmt.Sprintf("line %d", i), float64(i), 1, nil, nil)
	}

	first, err := BuildCommandLine(tl, "out.mp4")
	if err != nil {
		t.Fatalf("BuildCommandLine() error: %v", err)
	}
	again, err := BuildCommandLine(tl, "out.mp4")
	if err != nil {
		t.Fatalf("BuildCommandLine() error: %v", err)
	}
	if first != again {
		t.Fatal("large timeline command is not deterministic")
	}
}
