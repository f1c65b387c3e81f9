package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"video_compositor/compositor/engine"
	"video_compositor/compositor/models"
)

const OutputDir = "./output"

var (
	jobs   = make(map[string]*JobStatus)
	jobsMu sync.RWMutex

	store *SnapshotStore
)

func main() {
	_ = godotenv.Load()

	if err := os.MkdirAll(OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		var err error
		store, err = NewSnapshotStore(uri)
		if err != nil {
			log.Fatalf("Failed to connect snapshot store: %v", err)
		}
		defer store.Close()
		fmt.Println("💾 Timeline snapshots enabled")
	}

	r := mux.NewRouter()

	r.HandleFunc("/api/render", renderHandler).Methods("POST")
	r.HandleFunc("/api/command", commandHandler).Methods("POST")
	r.HandleFunc("/api/status/{jobId}", statusHandler).Methods("GET")
	r.HandleFunc("/api/jobs", listJobsHandler).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	r.PathPrefix("/videos/").Handler(http.StripPrefix("/videos/", http.FileServer(http.Dir(OutputDir))))

	fmt.Println("🎬 Render API Server starting...")
	fmt.Println("📡 Server running on http://localhost:8088")
	fmt.Println("📚 API Endpoints:")
	fmt.Println("   POST /api/render - Compile a project and render it")
	fmt.Println("   POST /api/command - Compile a project, return the command only")
	fmt.Println("   GET  /api/status/{jobId} - Check job status")
	fmt.Println("   GET  /api/jobs - List all jobs")
	fmt.Println("   GET  /videos/{filename} - Download rendered videos")
	fmt.Println("   GET  /health - Health check")

	log.Fatal(http.ListenAndServe(":8088", r))
}

// buildTimeline turns a request into the timeline to compile, applying the
// platform preset when one is named.
func buildTimeline(req *RenderRequest) (engine.Timeline, string, error) {
	project := req.Project
	project.Settings = project.Settings.WithDefaults()
	if project.Output == "" {
		project.Output = filepath.Join(OutputDir, "final_video.mp4")
	}

	if req.Platform != "" {
		preset, ok := models.PresetFor(req.Platform)
		if !ok {
			return engine.Timeline{}, "", fmt.Errorf("unknown platform %q", req.Platform)
		}
		preset.Duration = project.Settings.Duration
		project.Settings = preset.WithDefaults()
	}

	return project.Timeline(), project.Output, nil
}

func renderHandler(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	timeline, output, err := buildTimeline(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := ResolveSources(timeline); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	command, err := engine.BuildCommandLine(timeline, output)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()
	job := &JobStatus{
		ID:        jobID,
		Status:    "pending",
		CreatedAt: time.Now(),
		Command:   command,
		VideoPath: output,
	}
	jobsMu.Lock()
	jobs[jobID] = job
	jobsMu.Unlock()

	if err := store.Save(jobID, timeline, command); err != nil {
		log.Printf("Warning: failed to persist snapshot for job %s: %v", jobID, err)
	}

	if !req.DryRun {
		go runRender(jobID, timeline, output)
	}

	writeJSON(w, RenderResponse{
		JobID:   jobID,
		Status:  job.Status,
		Message: "Render job created",
		Command: command,
	})
}

// runRender executes one job in the background and records the outcome.
func runRender(jobID string, timeline engine.Timeline, output string) {
	setJobStatus(jobID, "rendering", "")

	args, err := engine.BuildCommand(timeline, output)
	if err != nil {
		setJobStatus(jobID, "failed", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := ExecuteCommand(ctx, args)
	if err != nil {
		log.Printf("Job %s failed: %v", jobID, err)
		setJobStatus(jobID, "failed", err.Error())
		return
	}

	log.Printf("Job %s completed in %s", jobID, result.Duration.Round(time.Millisecond))
	setJobStatus(jobID, "completed", "")
}

func setJobStatus(jobID, status, errMsg string) {
	jobsMu.Lock()
	defer jobsMu.Unlock()

	job, ok := jobs[jobID]
	if !ok {
		return
	}
	job.Status = status
	job.Error = errMsg
	if status == "completed" || status == "failed" {
		now := time.Now()
		job.CompletedAt = &now
	}
}

// commandHandler compiles a project and returns the command without running
// it. Missing sources are not an error here.
func commandHandler(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	timeline, output, err := buildTimeline(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	command, err := engine.BuildCommandLine(timeline, output)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, RenderResponse{Status: "compiled", Command: command})
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, exists := jobSnapshot(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	resp := RenderResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Command: job.Command,
	}
	if job.Status == "completed" && job.VideoPath != "" {
		resp.VideoURL = fmt.Sprintf("/videos/%s", filepath.Base(job.VideoPath))
	}
	if job.Status == "failed" {
		resp.Message = job.Error
	}
	writeJSON(w, resp)
}

// jobSnapshot returns a value copy of a job so handlers never read fields
// the background renderer is mutating.
func jobSnapshot(jobID string) (JobStatus, bool) {
	jobsMu.RLock()
	defer jobsMu.RUnlock()

	job, exists := jobs[jobID]
	if !exists {
		return JobStatus{}, false
	}
	return *job, true
}

func listJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobsMu.RLock()
	jobList := make([]JobStatus, 0, len(jobs))
	for _, job := range jobs {
		jobList = append(jobList, *job)
	}
	jobsMu.RUnlock()

	writeJSON(w, jobList)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "service": "render-api"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
