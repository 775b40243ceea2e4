package main

import "time"

type BenchResult struct {
	File     string
	Format   string
	Duration time.Duration
	Answer   string
	Err      error
	Size     int64
}

type Agg struct {
	Count      int
	Total      time.Duration
	TotalBytes int64
}
