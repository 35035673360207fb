package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	phones      int
)

// Metrics
var (
	totalRequests uint64
	success200    uint64
	fail400       uint64
	failOther     uint64
	capViolations uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.IntVar(&phones, "phones", 20, "Distinct phone numbers to hammer")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark | Workers: %d | Duration: %s | Phones: %d", concurrency, duration, phones)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// worker fires share events at a small pool of phones so many workers
// race on the same counters, then checks the returned counters never
// exceed their caps.
func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		phone := fmt.Sprintf("+2348099999%03d", rand.Intn(phones))
		kind := "friend"
		if rand.Intn(2) == 0 {
			kind = "group"
		}

		payload := map[string]interface{}{"phone": phone, "type": kind}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", targetURL+"/api/share", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		atomic.AddUint64(&totalRequests, 1)
		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			atomic.AddUint64(&success200, 1)
			var counters struct {
				Friends int `json:"friends"`
				Groups  int `json:"groups"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&counters); err == nil {
				if counters.Friends > 10 || counters.Groups > 2 {
					atomic.AddUint64(&capViolations, 1)
				}
			}
		case http.StatusBadRequest:
			atomic.AddUint64(&fail400, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func printResults(elapsed time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	fmt.Println("--- Benchmark Results ---")
	fmt.Printf("Elapsed:        %s\n", elapsed)
	fmt.Printf("Total Requests: %d (%.1f req/s)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("200 OK:         %d\n", atomic.LoadUint64(&success200))
	fmt.Printf("400 Bad:        %d\n", atomic.LoadUint64(&fail400))
	fmt.Printf("Other Failures: %d\n", atomic.LoadUint64(&failOther))
	fmt.Printf("Cap Violations: %d\n", atomic.LoadUint64(&capViolations))
	if atomic.LoadUint64(&capViolations) > 0 {
		fmt.Println("WARNING: counters exceeded their caps under load")
	}
}
