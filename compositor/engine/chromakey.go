package engine

import "fmt"

// ChromaKeySettings removes a background color from a video layer so it can
// composite over the layers below it.
type ChromaKeySettings struct {
	Color      string  `json:"color,omitempty"`      // default green (0x00FF00)
	Similarity float64 `json:"similarity,omitempty"` // clamped to [0,1], default 0.3
	Blend      float64 `json:"blend,omitempty"`      // clamped to [0,1], default 0.1
	YUV        bool    `json:"yuv,omitempty"`
}

// Audio policies for a keyed (picture-in-picture) layer's own track.
const (
	AudioMute   = "mute"
	AudioDuck   = "duck"
	AudioFull   = "full"
	AudioCustom = "custom"
)

// duckVolume is the fixed attenuation applied under the "duck" policy.
const duckVolume = 0.3

// clamp01 clamps v into [0,1]. Out-of-range effect parameters are clamped,
// never rejected.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// params builds the ordered chromakey filter parameters. A missing or
// unparseable color falls back to the default key color; similarity and
// blend are clamped into [0,1], with zero meaning unset.
func (c ChromaKeySettings) params() []Param {
	similarity := c.Similarity
	if similarity == 0 {
		similarity = 0.3
	}
	blend := c.Blend
	if blend == 0 {
		blend = 0.1
	}

	params := []Param{
		{Key: "color", Value: NormalizeColor(c.Color, DefaultKeyColor)},
		{Key: "similarity", Value: fmt.Sprintf("%.3f", clamp01(similarity))},
		{Key: "blend", Value: fmt.Sprintf("%.3f", clamp01(blend))},
	}
	if c.YUV {
		params = append(params, Param{Key: "yuv", Value: "1"})
	}
	return params
}

// audioPolicyVolume maps a keyed layer's audio policy to the mix volume for
// its track. The bool is false when the track is excluded entirely.
func audioPolicyVolume(policy string, custom float64) (float64, bool) {
	switch policy {
	case AudioFull:
		return 1.0, true
	case AudioDuck:
		return duckVolume, true
	case AudioCustom:
		return clamp01(custom), true
	case AudioMute, "":
		return 0, false
	}
	// Unknown policy mutes rather than fails.
	return 0, false
}
