package view

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"

	"github.com/glabrego/carta-cli/internal/feed"
)

const maxPreviewBytes = 5 * 1024 * 1024

// PreviewURL is the still image shown for an entry: the media itself for
// images, the thumbnail for videos.
func PreviewURL(entry feed.Entry) string {
	if entry.Kind == feed.MediaImage {
		return strings.TrimSpace(entry.MediaURL)
	}
	return strings.TrimSpace(entry.Thumbnail)
}

func PreviewKey(entryID string, width, rows int) string {
	return fmt.Sprintf("%s@%dx%d", entryID, width, rows)
}

func chafaArgs(width, rows int) []string {
	size := fmt.Sprintf("%dx%d", width, rows)
	return []string{
		"--size", size,
		"--view-size", size,
		"--align", "top,center",
		"--format", "symbols",
		"--animate", "off",
		"-",
	}
}

// RenderImagePreview downloads imageURL and renders it with chafa as
// symbols no larger than width x rows.
func RenderImagePreview(ctx context.Context, imageURL string, width, rows int) (string, error) {
	if width < 8 || rows < 2 {
		return "", fmt.Errorf("no room for a preview")
	}
	chafaPath, err := exec.LookPath("chafa")
	if err != nil {
		return "", fmt.Errorf("chafa is not installed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	cmd := exec.CommandContext(ctx, chafaPath, chafaArgs(width, rows)...)
	cmd.Stdin = bytes.NewReader(imageData)
	output, err := cmd.CombinedOutput()
	trimmed := strings.TrimRight(string(output), "\r\n")
	if err != nil {
		return "", fmt.Errorf("render image via chafa: %w: %s", err, strings.TrimSpace(trimmed))
	}
	if strings.TrimSpace(trimmed) == "" {
		return "", fmt.Errorf("empty output")
	}
	return trimmed, nil
}
