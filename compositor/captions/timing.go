package captions

import "strings"

// WordTiming is one word's window inside a cue, in absolute seconds.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TimeWords distributes a cue's words across its envelope
// [start, start+duration]. With wordsPerSecond > 0 each word gets
// 1/wordsPerSecond seconds; otherwise the envelope is partitioned evenly.
// Either way every window is clipped to the envelope, so the last words of a
// fast cue collapse onto its end rather than spilling past it.
func TimeWords(text string, start, duration, wordsPerSecond float64) []WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 || duration <= 0 {
		return nil
	}

	step := duration / float64(len(words))
	if wordsPerSecond > 0 {
		step = 1 / wordsPerSecond
	}

	end := start + duration
	timings := make([]WordTiming, len(words))
	for i, w := range words {
		ws := start + float64(i)*step
		we := ws + step
		timings[i] = WordTiming{Word: w, Start: clip(ws, start, end), End: clip(we, start, end)}
	}
	return timings
}

// ClipTimings clamps explicit per-word timings into a cue envelope.
func ClipTimings(timings []WordTiming, start, duration float64) []WordTiming {
	end := start + duration
	out := make([]WordTiming, len(timings))
	for i, t := range timings {
		out[i] = WordTiming{Word: t.Word, Start: clip(t.Start, start, end), End: clip(t.End, start, end)}
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Split cuts a track into chunks of at most maxSeconds of covered span.
// Entries accumulate greedily in start order; when the next entry's end would
// push the chunk past maxSeconds a new chunk begins. Each chunk's timestamps
// are re-based so its first entry starts at 0, and indices restart from 1.
func Split(entries []Entry, maxSeconds float64) [][]Entry {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sortByStart(sorted)

	var chunks [][]Entry
	var chunk []Entry
	base := sorted[0].Start

	for _, e := range sorted {
		if len(chunk) > 0 && maxSeconds > 0 && e.End-base > maxSeconds {
			chunks = append(chunks, chunk)
			chunk = nil
			base = e.Start
		}

		rebased := e
		rebased.Start -= base
		rebased.End -= base
		rebased.Index = len(chunk) + 1
		chunk = append(chunk, rebased)
	}
	return append(chunks, chunk)
}

// Merge concatenates tracks end to end. Each track after the first is shifted
// to start gapSeconds after the previous track's last cue ends; indices are
// renumbered across the whole result.
func Merge(tracks [][]Entry, gapSeconds float64) []Entry {
	var merged []Entry
	offset := 0.0

	for _, track := range tracks {
		if len(track) == 0 {
			continue
		}

		sorted := make([]Entry, len(track))
		copy(sorted, track)
		sortByStart(sorted)

		trackEnd := 0.0
		for _, e := range sorted {
			shifted := e
			shifted.Start += offset
			shifted.End += offset
			shifted.Index = len(merged) + 1
			merged = append(merged, shifted)
			if shifted.End > trackEnd {
				trackEnd = shifted.End
			}
		}
		offset = trackEnd + gapSeconds
	}
	return merged
}
