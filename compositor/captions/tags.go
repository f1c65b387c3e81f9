package captions

import "strings"

// TextStyle is the side channel for inline subtitle markup. It is extracted
// from a cue's tags on parse and re-applied on generation.
type TextStyle struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Color     string `json:"color,omitempty"` // #RRGGBB from <font color>
}

func (s *TextStyle) empty() bool {
	return s == nil || (!s.Bold && !s.Italic && !s.Underline && s.Color == "")
}

// ExtractTags scans text for the fixed inline tag set (<b>, <i>, <u>,
// <font color="#RRGGBB">) in any nesting order, returning the text with the
// tags stripped and the collected style. Unrecognized angle-bracket runs stay
// in the text. Returns a nil style when no tags were found.
func ExtractTags(text string) (string, *TextStyle) {
	var style TextStyle
	var b strings.Builder
	found := false

	for i := 0; i < len(text); {
		if text[i] != '<' {
			b.WriteByte(text[i])
			i++
			continue
		}

		tag, rest, ok := scanTag(text[i:])
		if !ok {
			b.WriteByte(text[i])
			i++
			continue
		}

		switch name := strings.ToLower(tag); {
		case name == "b" || name == "/b":
			style.Bold = true
		case name == "i" || name == "/i":
			style.Italic = true
		case name == "u" || name == "/u":
			style.Underline = true
		case name == "/font":
		case strings.HasPrefix(name, "font"):
			if c := fontColor(tag); c != "" {
				style.Color = c
			}
		default:
			// Not one of ours; keep it literal.
			b.WriteString(rest)
			i += len(rest)
			continue
		}
		found = true
		i += len(rest)
	}

	clean := b.String()
	if !found {
		return clean, nil
	}
	return clean, &style
}

// scanTag reads one <...> run starting at s[0] == '<'. tag is the inner text
// with original casing, rest the full consumed run including brackets.
func scanTag(s string) (tag, rest string, ok bool) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[1:end]), s[:end+1], true
}

// fontColor pulls the color attribute out of a font tag body, tolerating
// single, double, or no quotes. Attribute values keep their casing.
func fontColor(tag string) string {
	i := strings.Index(strings.ToLower(tag), "color")
	if i < 0 {
		return ""
	}
	v := strings.TrimSpace(tag[i+len("color"):])
	v = strings.TrimPrefix(v, "=")
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	if j := strings.IndexAny(v, ` "'`); j >= 0 {
		v = v[:j]
	}
	return v
}

// ApplyTags re-wraps text with the inline tags a style implies, innermost
// bold, then italic, underline, and font color outermost. Order is fixed so
// generation stays deterministic.
func ApplyTags(text string, style *TextStyle) string {
	if style.empty() {
		return text
	}
	if style.Bold {
		text = "<b>" + text + "</b>"
	}
	if style.Italic {
		text = "<i>" + text + "</i>"
	}
	if style.Underline {
		text = "<u>" + text + "</u>"
	}
	if style.Color != "" {
		text = `<font color="` + style.Color + `">` + text + "</font>"
	}
	return text
}
