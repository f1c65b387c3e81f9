package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/joho/godotenv"

	"video_compositor/compositor/captions"
	"video_compositor/compositor/engine"
	"video_compositor/compositor/models"
	"video_compositor/compositor/utils"
)

const (
	DefaultProject = "./project.json"
	OutputDir      = "./output"
)

func main() {
	fmt.Println("🎬 Starting Video Compositor...")

	// Optional .env for PLATFORMS / CAPTIONS / RENDER overrides
	_ = godotenv.Load()

	if err := os.MkdirAll(OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	projectPath := DefaultProject
	if len(os.Args) > 1 {
		projectPath = os.Args[1]
	}

	project, err := engine.LoadProject(projectPath)
	if err != nil {
		log.Fatalf("Failed to load project: %v", err)
	}

	timeline := project.Timeline()
	fmt.Printf("📋 Loaded %d layers at %dx%d@%dfps\n",
		len(timeline.Layers),
		timeline.Settings.Width, timeline.Settings.Height, timeline.Settings.FPS)

	// Optional caption track composed on top of the project's layers
	if captionPath := os.Getenv("CAPTIONS"); captionPath != "" {
		timeline, err = addCaptionTrack(timeline, captionPath)
		if err != nil {
			log.Fatalf("Failed to add captions: %v", err)
		}
	}

	// Batch mode: compile the same timeline once per platform preset
	if platformList := os.Getenv("PLATFORMS"); platformList != "" {
		runBatch(timeline, strings.Split(platformList, ","))
		return
	}

	graph, err := engine.Compile(timeline)
	if err != nil {
		log.Fatalf("Failed to compile timeline: %v", err)
	}
	fmt.Printf("🔧 Compiled graph: %s\n", engine.Summary(graph))

	command := engine.Emit(graph, timeline.Settings, project.Output)
	fmt.Println("▶️  " + command)

	if os.Getenv("RENDER") != "1" {
		return
	}

	if err := utils.ValidateFFmpegInstalled(); err != nil {
		log.Fatalf("%v", err)
	}

	args := engine.EmitArgs(graph, timeline.Settings, project.Output)
	cmd := exec.Command("ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	fmt.Println("🎉 Render completed successfully!")
	if info, err := os.Stat(project.Output); err == nil {
		fmt.Printf("📊 Output size: %.2f MB\n", float64(info.Size())/(1024*1024))
	}
}

func addCaptionTrack(timeline engine.Timeline, path string) (engine.Timeline, error) {
	entries, err := captions.LoadFile(path, captions.ParseOptions{})
	if err != nil {
		return timeline, err
	}

	report := captions.Validate(entries, captions.ValidateOptions{})
	if !report.Valid {
		for _, issue := range report.Errors {
			log.Printf("Caption error at cue %d: %s", issue.Index, issue.Message)
		}
		return timeline, fmt.Errorf("caption file %s has %d errors", path, len(report.Errors))
	}
	for _, issue := range report.Warnings {
		log.Printf("Caption warning at cue %d: %s", issue.Index, issue.Message)
	}

	fmt.Printf("💬 Adding %d caption cues (%.1fs total)\n",
		report.Stats.Count, report.Stats.TotalDuration)
	return captions.ComposeTracks(timeline, []captions.Track{{Name: "main", Entries: entries}}), nil
}

func runBatch(timeline engine.Timeline, platforms []string) {
	for i := range platforms {
		platforms[i] = strings.TrimSpace(platforms[i])
	}
	fmt.Printf("📦 Batch compiling for platforms: %s\n", strings.Join(platforms, ", "))
	fmt.Printf("   Available presets: %s\n", strings.Join(models.Platforms(), ", "))

	results := engine.CompileBatch(timeline, platforms, OutputDir, 4)
	for _, r := range results {
		if r.Err != nil {
			log.Printf("❌ %s: %v", r.Platform, r.Err)
			continue
		}
		fmt.Printf("✅ %s -> %s (%d args)\n", r.Platform, r.Output, len(r.Args))
	}
}
