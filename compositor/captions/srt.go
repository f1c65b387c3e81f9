// Package captions parses, generates, validates, and times subtitle tracks,
// and composes them onto a timeline as text layers.
package captions

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one subtitle cue. Index is 1-based and re-derived on generation,
// never authoritative. Times are seconds.
type Entry struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`

	// Style extracted from inline tags, nil when the cue carries none.
	Style *TextStyle `json:"style,omitempty"`

	// Placement hints: alignment in {left, center, right}, vertical in
	// {top, middle, bottom}. Empty means the track default.
	Alignment string `json:"alignment,omitempty"`
	Vertical  string `json:"vertical,omitempty"`
}

// ParseOptions controls parser tolerance.
type ParseOptions struct {
	// Strict makes the first malformed block an error instead of a skip.
	Strict bool
}

// GenerateOptions controls output formatting.
type GenerateOptions struct {
	MaxLineLength int    // wrap width in runes, 0 = no wrapping
	EOL           string // "\n" or "\r\n", default "\n"
	BOM           bool   // prepend a UTF-8 byte order mark
	OmitMillis    bool   // format timestamps as HH:MM:SS
}

const utf8BOM = "\ufeff"

// Parse reads SRT data: index line, "start --> end" timestamp line, one or
// more text lines, blank separator. CRLF and a leading byte order mark are
// tolerated. Malformed blocks are skipped unless opts.Strict is set. Inline
// style tags are extracted into Entry.Style and stripped from the text.
func Parse(data []byte, opts ParseOptions) ([]Entry, error) {
	content := strings.TrimPrefix(string(data), utf8BOM)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var entries []Entry
	for blockNum, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		entry, err := parseBlock(block)
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("block %d: %w", blockNum+1, err)
			}
			continue
		}
		entry.Index = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseBlock(block string) (Entry, error) {
	lines := strings.Split(block, "\n")

	// The index line is optional in the wild; locate the timestamp line.
	tsLine := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			tsLine = i
			break
		}
	}
	if tsLine < 0 || tsLine > 1 {
		return Entry{}, fmt.Errorf("no timestamp line")
	}

	parts := strings.SplitN(lines[tsLine], "-->", 2)
	start, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return Entry{}, fmt.Errorf("start time: %w", err)
	}
	end, err := parseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return Entry{}, fmt.Errorf("end time: %w", err)
	}

	if tsLine+1 >= len(lines) {
		return Entry{}, fmt.Errorf("no text lines")
	}
	raw := strings.Join(lines[tsLine+1:], "\n")

	text, style := ExtractTags(raw)
	return Entry{Start: start, End: end, Text: text, Style: style}, nil
}

// parseTimestamp reads HH:MM:SS,mmm. A '.' millisecond separator and missing
// milliseconds are tolerated.
func parseTimestamp(s string) (float64, error) {
	main := s
	millis := 0

	if i := strings.IndexAny(s, ",."); i >= 0 {
		main = s[:i]
		// The fraction is positional: ".5" means 500ms, not 5ms.
		frac := s[i+1:]
		if len(frac) > 3 {
			frac = frac[:3]
		}
		for len(frac) < 3 {
			frac += "0"
		}
		m, err := strconv.Atoi(frac)
		if err != nil || m < 0 {
			return 0, fmt.Errorf("bad milliseconds in %q", s)
		}
		millis = m
	}

	parts := strings.Split(main, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || m > 59 || sec > 59 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}

	return float64(h*3600+m*60+sec) + float64(millis)/1000, nil
}

// formatTimestamp renders seconds as HH:MM:SS,mmm (or HH:MM:SS).
func formatTimestamp(seconds float64, omitMillis bool) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	millis := int(seconds*1000+0.5) - total*1000
	if millis >= 1000 {
		total++
		millis -= 1000
	}

	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if omitMillis {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, millis)
}

// Generate renders entries as SRT. Entries are sorted by start time and
// renumbered from 1 regardless of their incoming indices; text wraps at the
// configured width without breaking words; inline style tags are re-applied
// from each entry's style.
func Generate(entries []Entry, opts GenerateOptions) []byte {
	eol := opts.EOL
	if eol == "" {
		eol = "\n"
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sortByStart(sorted)

	var b strings.Builder
	if opts.BOM {
		b.WriteString(utf8BOM)
	}

	for i, e := range sorted {
		text := e.Text
		if opts.MaxLineLength > 0 {
			text = wrapText(text, opts.MaxLineLength)
		}
		text = ApplyTags(text, e.Style)

		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(eol)
		b.WriteString(formatTimestamp(e.Start, opts.OmitMillis))
		b.WriteString(" --> ")
		b.WriteString(formatTimestamp(e.End, opts.OmitMillis))
		b.WriteString(eol)
		b.WriteString(strings.ReplaceAll(text, "\n", eol))
		b.WriteString(eol)
		b.WriteString(eol)
	}

	return []byte(b.String())
}

// sortByStart is a stable insertion sort; cue lists are short and mostly
// sorted already.
func sortByStart(entries []Entry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Start < entries[j-1].Start; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// wrapText wraps each line at maxLen runes without breaking words. Words
// longer than the width stay whole on their own line.
func wrapText(text string, maxLen int) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, line)
			continue
		}

		cur := words[0]
		for _, w := range words[1:] {
			if len([]rune(cur))+1+len([]rune(w)) > maxLen {
				out = append(out, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}
