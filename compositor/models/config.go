package models

import (
	"encoding/json"
	"os"
)

// Settings contains global output options for a composition: frame geometry,
// timing, and encode parameters shared by every compile of a timeline.
type Settings struct {
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	FPS         int     `json:"fps,omitempty"`
	AspectRatio string  `json:"aspect_ratio,omitempty"`
	Duration    float64 `json:"duration,omitempty"` // total output duration in seconds, 0 = derive from layers

	// Encode options
	VideoCodec   string `json:"video_codec,omitempty"`
	Preset       string `json:"preset,omitempty"`
	CRF          int    `json:"crf,omitempty"`
	PixelFormat  string `json:"pixel_format,omitempty"`
	AudioCodec   string `json:"audio_codec,omitempty"`
	AudioBitrate string `json:"audio_bitrate,omitempty"`
	SampleRate   int    `json:"sample_rate,omitempty"`
}

// WithDefaults returns a copy with every unset field replaced by its default.
// The zero value of Settings therefore always compiles to a usable command.
func (s Settings) WithDefaults() Settings {
	if s.Width <= 0 {
		s.Width = 1920
	}
	if s.Height <= 0 {
		s.Height = 1080
	}
	if s.FPS <= 0 {
		s.FPS = 30
	}
	if s.AspectRatio == "" {
		s.AspectRatio = "16:9"
	}
	if s.VideoCodec == "" {
		s.VideoCodec = "libx264"
	}
	if s.Preset == "" {
		s.Preset = "medium"
	}
	if s.CRF <= 0 {
		s.CRF = 23
	}
	if s.PixelFormat == "" {
		s.PixelFormat = "yuv420p"
	}
	if s.AudioCodec == "" {
		s.AudioCodec = "aac"
	}
	if s.AudioBitrate == "" {
		s.AudioBitrate = "128k"
	}
	if s.SampleRate <= 0 {
		s.SampleRate = 44100
	}
	return s
}

// LoadSettings loads settings from a JSON file and applies defaults.
func LoadSettings(configPath string) (Settings, error) {
	var s Settings

	file, err := os.Open(configPath)
	if err != nil {
		return s, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s); err != nil {
		return s, err
	}

	return s.WithDefaults(), nil
}
