package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".webm": true,
	".m4v":  true,
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
}

// GetImageFiles returns all image files under dir, sorted by path so the
// layer order they produce is stable.
func GetImageFiles(dir string) ([]string, error) {
	return filesByExtension(dir, imageExtensions)
}

// GetVideoFiles returns all video files under dir, sorted by path.
func GetVideoFiles(dir string) ([]string, error) {
	return filesByExtension(dir, videoExtensions)
}

// GetAudioFiles returns all audio files under dir, sorted by path.
func GetAudioFiles(dir string) ([]string, error) {
	return filesByExtension(dir, audioExtensions)
}

// GetCaptionFiles returns all .srt files under dir, sorted by path.
func GetCaptionFiles(dir string) ([]string, error) {
	return filesByExtension(dir, map[string]bool{".srt": true})
}

func filesByExtension(dir string, extensions map[string]bool) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && extensions[strings.ToLower(filepath.Ext(info.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// MediaDuration returns a media file's duration in seconds using ffprobe.
func MediaDuration(filePath string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "quiet", "-show_entries",
		"format=duration", "-of", "csv=p=0", filePath)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to probe %s: %v", filePath, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration of %s: %v", filePath, err)
	}
	return duration, nil
}

// ValidateFFmpegInstalled checks that ffmpeg and ffprobe are on the PATH.
func ValidateFFmpegInstalled() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH. Please install FFmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe not found in PATH. Please install FFmpeg")
	}
	return nil
}

// SanitizeFilename replaces characters that are invalid in filenames.
func SanitizeFilename(filename string) string {
	reg := regexp.MustCompile(`[<>:"/\\|?*]`)
	sanitized := reg.ReplaceAllString(filename, "_")
	sanitized = strings.Trim(sanitized, " .")
	if sanitized == "" {
		sanitized = "untitled"
	}
	return sanitized
}

// EnsureDirectoryExists creates a directory if it doesn't exist.
func EnsureDirectoryExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, 0755)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}
