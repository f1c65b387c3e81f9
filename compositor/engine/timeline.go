package engine

import (
	"encoding/json"
	"os"

	"video_compositor/compositor/models"
)

// Timeline is an immutable ordered sequence of layers plus global output
// settings. Every Add returns a new Timeline owning its own layer slice, so
// two timelines never share a mutable layer list.
type Timeline struct {
	Layers   []Layer         `json:"layers"`
	Settings models.Settings `json:"settings"`
}

// NewTimeline creates an empty timeline with defaults applied to settings.
func NewTimeline(settings models.Settings) Timeline {
	return Timeline{Settings: settings.WithDefaults()}
}

// Add returns a new Timeline with the layer appended. The receiver is not
// modified.
func (t Timeline) Add(layer Layer) Timeline {
	layers := make([]Layer, len(t.Layers), len(t.Layers)+1)
	copy(layers, t.Layers)
	layers = append(layers, layer)
	return Timeline{Layers: layers, Settings: t.Settings}
}

// AddVideo appends a video layer covering [start, start+duration).
// duration 0 leaves the layer unbounded.
func (t Timeline) AddVideo(source string, start, duration float64) Timeline {
	return t.Add(Layer{
		Type:      LayerVideo,
		StartTime: start,
		Duration:  duration,
		Video:     &VideoLayer{Source: source},
	})
}

// AddVideoLayer appends a video layer with full options.
func (t Timeline) AddVideoLayer(v VideoLayer, start, duration float64) Timeline {
	return t.Add(Layer{Type: LayerVideo, StartTime: start, Duration: duration, Video: &v})
}

// AddImage appends a still-image layer.
func (t Timeline) AddImage(source string, start, duration float64) Timeline {
	return t.Add(Layer{
		Type:      LayerImage,
		StartTime: start,
		Duration:  duration,
		Image:     &ImageLayer{Source: source},
	})
}

// AddImageLayer appends an image layer with full options.
func (t Timeline) AddImageLayer(img ImageLayer, start, duration float64) Timeline {
	return t.Add(Layer{Type: LayerImage, StartTime: start, Duration: duration, Image: &img})
}

// AddAudio appends an audio layer mixed over its time window.
func (t Timeline) AddAudio(source string, start, duration float64) Timeline {
	return t.Add(Layer{
		Type:      LayerAudio,
		StartTime: start,
		Duration:  duration,
		Audio:     &AudioLayer{Source: source},
	})
}

// AddAudioLayer appends an audio layer with full options.
func (t Timeline) AddAudioLayer(a AudioLayer, start, duration float64) Timeline {
	return t.Add(Layer{Type: LayerAudio, StartTime: start, Duration: duration, Audio: &a})
}

// AddText appends a text layer drawn during its time window.
func (t Timeline) AddText(text string, start, duration float64, pos *Position, style *Style) Timeline {
	return t.Add(Layer{
		Type:      LayerText,
		StartTime: start,
		Duration:  duration,
		Text:      &TextLayer{Text: text, Position: pos, Style: style},
	})
}

// AddFilter appends a named filter applied to the composite during its
// window.
func (t Timeline) AddFilter(name string, params []Param, start, duration float64) Timeline {
	return t.Add(Layer{
		Type:      LayerFilter,
		StartTime: start,
		Duration:  duration,
		Filter:    &FilterLayer{Name: name, Params: params},
	})
}

// Snapshot serializes the timeline to JSON. The snapshot is structural: a
// timeline reconstructed from it compiles to an identical graph. Used at
// collaborator boundaries (persistence, debugging), not on the compile path.
func (t Timeline) Snapshot() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// TimelineFromSnapshot reconstructs a timeline from Snapshot output.
func TimelineFromSnapshot(data []byte) (Timeline, error) {
	var t Timeline
	if err := json.Unmarshal(data, &t); err != nil {
		return Timeline{}, err
	}
	t.Settings = t.Settings.WithDefaults()
	return t, nil
}

// Project is the on-disk JSON form of a composition: settings, layers, and
// the destination path.
type Project struct {
	Settings models.Settings `json:"settings,omitempty"`
	Layers   []Layer         `json:"layers"`
	Output   string          `json:"output,omitempty"`
}

// LoadProject loads a project JSON file and applies settings defaults.
func LoadProject(projectPath string) (*Project, error) {
	file, err := os.Open(projectPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var p Project
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&p); err != nil {
		return nil, err
	}

	p.Settings = p.Settings.WithDefaults()
	if p.Output == "" {
		p.Output = "output/final_video.mp4"
	}
	return &p, nil
}

// Timeline builds the immutable timeline described by the project.
func (p *Project) Timeline() Timeline {
	t := NewTimeline(p.Settings)
	for _, layer := range p.Layers {
		t = t.Add(layer)
	}
	return t
}
