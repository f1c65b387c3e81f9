package engine

import (
	"fmt"
	"path/filepath"
	"sync"

	"video_compositor/compositor/models"
)

// BatchResult is one platform's outcome in a batch compile.
type BatchResult struct {
	Platform string   `json:"platform"`
	Output   string   `json:"output"`
	Args     []string `json:"args,omitempty"`
	Err      error    `json:"-"`
}

// CompileBatch compiles the same timeline once per platform preset, keeping
// each result at its platform's index so output order matches input order.
// maxWorkers bounds concurrency; values below 1 mean one worker.
func CompileBatch(t Timeline, platforms []string, outputDir string, maxWorkers int) []BatchResult {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make([]BatchResult, len(platforms))
	jobs := make(chan int, len(platforms))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = compileForPlatform(t, platforms[i], outputDir)
			}
		}()
	}

	for i := range platforms {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func compileForPlatform(t Timeline, platform, outputDir string) BatchResult {
	preset, ok := models.PresetFor(platform)
	if !ok {
		return BatchResult{
			Platform: platform,
			Err:      fmt.Errorf("unknown platform %q", platform),
		}
	}

	// The preset supplies geometry and encoding; the timeline keeps its own
	// duration.
	preset.Duration = t.Settings.Duration
	scoped := Timeline{Layers: t.Layers, Settings: preset.WithDefaults()}

	output := filepath.Join(outputDir, fmt.Sprintf("final_%s.mp4", platform))
	args, err := BuildCommand(scoped, output)
	return BatchResult{Platform: platform, Output: output, Args: args, Err: err}
}
