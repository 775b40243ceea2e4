package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/client"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
)

var (
	benchQuestion = "What is in this image?"

	formatFiles = []string{"jpg", "png", "gif", "pdf"}
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadClient(os.Getenv("VQA_CLIENT_PROFILE"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var results []BenchResult
	for _, formatFile := range formatFiles {
		dataPath := filepath.Join(".", "data", formatFile)

		images, err := listImages(dataPath)
		if err != nil {
			log.Printf("skip %s: %v", dataPath, err)
			continue
		}

		for _, filePath := range images {
			res := benchmarkImage(ctx, cfg.Endpoint, filePath)

			if res.Err != nil {
				log.Println("ERR:", res.Err)
			} else {
				log.Printf("OK %s %v %q", res.File, res.Duration, res.Answer)
			}

			results = append(results, res)
		}
	}

	printMarkdown(results)
}

// listImages returns the regular files in dir. A missing directory is not an
// error: the format simply has no samples.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func benchmarkImage(ctx context.Context, endpoint, filePath string) BenchResult {
	start := time.Now()

	file, err := client.OpenFile(filePath)
	if err != nil {
		return BenchResult{File: filePath, Err: err}
	}

	view := &client.RecordingView{}
	err = client.NewSubmitter(endpoint, view).Submit(ctx, client.Form{
		Image:    file,
		Question: benchQuestion,
	})

	return BenchResult{
		File:     file.Name,
		Format:   strings.TrimPrefix(filepath.Ext(filePath), "."),
		Duration: time.Since(start),
		Answer:   strings.TrimPrefix(view.Text(), client.FormatAnswer("")),
		Err:      err,
		Size:     int64(len(file.Data)),
	}
}

func aggregate(results []BenchResult) map[string]Agg {
	m := map[string]Agg{}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		a := m[r.Format]
		a.Count++
		a.TotalBytes += r.Size
		a.Total += r.Duration
		m[r.Format] = a
	}
	return m
}

func printMarkdown(results []BenchResult) {
	fmt.Print(renderMarkdown(results))
}

func renderMarkdown(results []BenchResult) string {
	var b strings.Builder
	b.WriteString("\n## Benchmark Results\n\n")
	b.WriteString("| Format | Requests | Avg Time | Total Time | Avg File Size |\n")
	b.WriteString("|--------|----------|----------|------------|---------------|\n")

	agg := aggregate(results)

	formats := make([]string, 0, len(agg))
	for format := range agg {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	var (
		totalCount    int
		totalDuration time.Duration
		totalBytes    int64
	)

	for _, format := range formats {
		a := agg[format]
		avg := a.Total / time.Duration(a.Count)
		avgSize := a.TotalBytes / int64(a.Count)
		fmt.Fprintf(&b, "| %s | %d | %v | %v | %s |\n",
			format,
			a.Count,
			avg.Round(time.Millisecond),
			a.Total.Round(time.Millisecond),
			humanBytes(avgSize),
		)
		totalCount += a.Count
		totalDuration += a.Total
		totalBytes += a.TotalBytes
	}

	if totalCount > 0 {
		mean := totalDuration / time.Duration(totalCount)
		avgSize := totalBytes / int64(totalCount)
		fmt.Fprintf(&b, "| **ALL** | %d | %v | %v | %s |\n",
			totalCount,
			mean.Round(time.Millisecond),
			totalDuration.Round(time.Millisecond),
			humanBytes(avgSize),
		)
	}
	return b.String()
}

func humanBytes(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
