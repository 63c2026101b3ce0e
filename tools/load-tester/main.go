package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type logsPage struct {
	Count         int     `json:"count"`
	NextPageToken *string `json:"nextPageToken"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000/logs", "Target URL of the logs endpoint")
	containerID := flag.String("container", "", "Container (resource) id to query")
	hours := flag.Int("hours", 1, "Lookback window in hours")
	limit := flag.Int("limit", 100, "Page size")
	pages := flag.Int("pages", 1, "Maximum pages to follow per request chain")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 50, "Requests per second limit")
	flag.Parse()

	if *containerID == "" {
		log.Fatal("-container is required")
	}

	log.Printf("Starting load test on %s", *baseURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount, entryCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 10)

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{
				Timeout: 45 * time.Second,
			}

			for ctx.Err() == nil {
				pageToken := ""
				for p := 0; p < *pages; p++ {
					if err := limiter.Wait(ctx); err != nil {
						return
					}

					page, err := fetch(ctx, client, *baseURL, *containerID, *hours, *limit, pageToken)
					if err != nil {
						if ctx.Err() == nil {
							errorCount.Add(1)
						}
						break
					}
					successCount.Add(1)
					entryCount.Add(int64(page.Count))

					if page.NextPageToken == nil {
						break
					}
					pageToken = *page.NextPageToken
				}
			}
		}()
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 OK): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Entries received: %d", entryCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}

func fetch(ctx context.Context, client *http.Client, base, containerID string, hours, limit int, pageToken string) (*logsPage, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("container_id", containerID)
	q.Set("hours", strconv.Itoa(hours))
	q.Set("limit", strconv.Itoa(limit))
	if pageToken != "" {
		q.Set("page_token", pageToken)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var page logsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.code)
}
