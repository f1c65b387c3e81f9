package models

// PlatformPresets maps a target platform name to the settings its uploads
// expect. The map is read-only; callers receive value copies and never mutate
// the table.
var PlatformPresets = map[string]Settings{
	"youtube": {
		Width: 1920, Height: 1080, FPS: 30, AspectRatio: "16:9",
		VideoCodec: "libx264", Preset: "medium", CRF: 21,
	},
	"shorts": {
		Width: 1080, Height: 1920, FPS: 30, AspectRatio: "9:16",
		VideoCodec: "libx264", Preset: "fast", CRF: 23,
	},
	"tiktok": {
		Width: 1080, Height: 1920, FPS: 30, AspectRatio: "9:16",
		VideoCodec: "libx264", Preset: "fast", CRF: 23,
	},
	"instagram": {
		Width: 1080, Height: 1350, FPS: 30, AspectRatio: "4:5",
		VideoCodec: "libx264", Preset: "fast", CRF: 23,
	},
	"square": {
		Width: 1080, Height: 1080, FPS: 30, AspectRatio: "1:1",
		VideoCodec: "libx264", Preset: "fast", CRF: 23,
	},
}

// PresetFor returns the settings for a platform with defaults applied.
// The second return is false when the platform is unknown.
func PresetFor(platform string) (Settings, bool) {
	p, ok := PlatformPresets[platform]
	if !ok {
		return Settings{}, false
	}
	return p.WithDefaults(), true
}

// Platforms returns the known platform names in a fixed order.
func Platforms() []string {
	return []string{"youtube", "shorts", "tiktok", "instagram", "square"}
}
