package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type stats struct {
	total     atomic.Int64
	success   atomic.Int64
	errors    atomic.Int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (s *stats) record(d time.Duration, status int, err error) {
	s.total.Add(1)
	if err != nil || status < 200 || status >= 300 {
		s.errors.Add(1)
		return
	}
	s.success.Add(1)
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	flag.Parse()

	queries := []string{
		"side effects",
		"vaccine",
		"#covid",
		"malaria vaccine",
		"covid vaccine dose",
		"hospital admission",
		"travel restrictions",
		"#lockdown update",
		"booster shot",
		"symptoms fever cough",
	}

	fmt.Println("=== Record Search Load Test ===")
	fmt.Printf("Target:      %s\n", *baseURL)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Duration:    %s\n", *duration)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *concurrency * 2,
			MaxIdleConnsPerHost: *concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	st := &stats{latencies: make([]time.Duration, 0, 100000)}
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < *concurrency; w++ {
		workerID := w
		g.Go(func() error {
			queryIdx := workerID
			for {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				query := queries[queryIdx%len(queries)]
				queryIdx++

				searchURL := fmt.Sprintf("%s/search?q=%s&limit=10", *baseURL, url.QueryEscape(query))
				req, err := http.NewRequestWithContext(gctx, http.MethodGet, searchURL, nil)
				if err != nil {
					return err
				}

				start := time.Now()
				resp, err := client.Do(req)
				took := time.Since(start)
				if err != nil {
					st.record(took, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				st.record(took, resp.StatusCode, nil)
			}
		})
	}
	g.Wait()

	printReport(st, *duration)
}

func printReport(st *stats, duration time.Duration) {
	total := st.total.Load()
	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", st.success.Load())
	fmt.Printf("Errors:          %d\n", st.errors.Load())
	if total > 0 {
		fmt.Printf("Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	st.mu.Lock()
	latencies := make([]time.Duration, len(st.latencies))
	copy(latencies, st.latencies)
	st.mu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:  %s\n", latencies[0])
		fmt.Printf("Avg:  %s\n", sum/time.Duration(len(latencies)))
		fmt.Printf("P50:  %s\n", percentile(latencies, 50))
		fmt.Printf("P95:  %s\n", percentile(latencies, 95))
		fmt.Printf("P99:  %s\n", percentile(latencies, 99))
		fmt.Printf("Max:  %s\n", latencies[len(latencies)-1])
	}

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
