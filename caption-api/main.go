package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"video_compositor/compositor/captions"
)

type ParseRequest struct {
	Content string `json:"content"`
	Strict  bool   `json:"strict,omitempty"`
}

type GenerateRequest struct {
	Entries       []captions.Entry `json:"entries"`
	MaxLineLength int              `json:"max_line_length,omitempty"`
	CRLF          bool             `json:"crlf,omitempty"`
	BOM           bool             `json:"bom,omitempty"`
	OmitMillis    bool             `json:"omit_millis,omitempty"`
}

type ValidateRequest struct {
	Entries      []captions.Entry `json:"entries"`
	GapThreshold float64          `json:"gap_threshold,omitempty"`
}

type SplitRequest struct {
	Entries    []captions.Entry `json:"entries"`
	MaxSeconds float64          `json:"max_seconds"`
}

type MergeRequest struct {
	Tracks     [][]captions.Entry `json:"tracks"`
	GapSeconds float64            `json:"gap_seconds,omitempty"`
}

type TimingRequest struct {
	Text           string  `json:"text"`
	Start          float64 `json:"start"`
	Duration       float64 `json:"duration"`
	WordsPerSecond float64 `json:"words_per_second,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func main() {
	r := gin.Default()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)
	r.POST("/parse", parseSubtitles)
	r.POST("/generate", generateSubtitles)
	r.POST("/validate", validateSubtitles)
	r.POST("/split", splitSubtitles)
	r.POST("/merge", mergeSubtitles)
	r.POST("/timing", timeWords)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8087"
	}

	log.Printf("💬 Caption API Server starting on port %s", port)
	log.Fatal(r.Run(":" + port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "caption-api",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func parseSubtitles(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	entries, err := captions.Parse([]byte(req.Content), captions.ParseOptions{Strict: req.Strict})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "parse_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func generateSubtitles(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	eol := "\n"
	if req.CRLF {
		eol = "\r\n"
	}
	content := captions.Generate(req.Entries, captions.GenerateOptions{
		MaxLineLength: req.MaxLineLength,
		EOL:           eol,
		BOM:           req.BOM,
		OmitMillis:    req.OmitMillis,
	})

	c.JSON(http.StatusOK, gin.H{"content": string(content)})
}

func validateSubtitles(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	report := captions.Validate(req.Entries, captions.ValidateOptions{GapThreshold: req.GapThreshold})
	c.JSON(http.StatusOK, report)
}

func splitSubtitles(c *gin.Context) {
	var req SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if req.MaxSeconds <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "max_seconds must be positive"})
		return
	}

	chunks := captions.Split(req.Entries, req.MaxSeconds)
	c.JSON(http.StatusOK, gin.H{"chunks": chunks, "count": len(chunks)})
}

func mergeSubtitles(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	merged := captions.Merge(req.Tracks, req.GapSeconds)
	c.JSON(http.StatusOK, gin.H{"entries": merged, "count": len(merged)})
}

func timeWords(c *gin.Context) {
	var req TimingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	timings := captions.TimeWords(req.Text, req.Start, req.Duration, req.WordsPerSecond)
	c.JSON(http.StatusOK, gin.H{"words": timings, "count": len(timings)})
}
