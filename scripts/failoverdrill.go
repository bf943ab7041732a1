// Failoverdrill exercises the balancer's failover path end to end against a
// running deployment: it sends a batch of requests, drains one replica via
// its admin endpoint, waits for the monitor to take it out of rotation,
// verifies traffic lands only on the survivors, then restores the replica
// and verifies it rejoins.
//
// Usage:
//
//	go run failoverdrill.go -lb http://localhost:8080 -drain http://localhost:8081 -wait 90s
//
// The -wait duration must cover unhealthy_threshold probe intervals.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	var (
		lbURL    = flag.String("lb", "http://localhost:8080", "Load balancer base URL")
		drainURL = flag.String("drain", "http://localhost:8081", "Replica to drain and restore")
		requests = flag.Int("requests", 10, "Requests per phase")
		wait     = flag.Duration("wait", 90*time.Second, "Time to wait for health state transitions")
	)
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	fmt.Println("Phase 1: all replicas in rotation")
	before := distribution(client, *lbURL, *requests)
	report(before)

	fmt.Printf("Draining %s\n", *drainURL)
	if err := post(client, *drainURL+"/admin/drain"); err != nil {
		fmt.Fprintf(os.Stderr, "drain failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Waiting %s for the monitor to mark the replica unhealthy\n", *wait)
	time.Sleep(*wait)

	fmt.Println("Phase 2: drained replica should receive no traffic")
	during := distribution(client, *lbURL, *requests)
	report(during)
	if during[*drainURL] > 0 {
		fmt.Fprintln(os.Stderr, "FAIL: drained replica still receiving traffic")
		os.Exit(1)
	}

	fmt.Printf("Restoring %s\n", *drainURL)
	if err := post(client, *drainURL+"/admin/restore"); err != nil {
		fmt.Fprintf(os.Stderr, "restore failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Waiting %s for the replica to rejoin\n", *wait)
	time.Sleep(*wait)

	fmt.Println("Phase 3: restored replica back in rotation")
	after := distribution(client, *lbURL, *requests)
	report(after)
	if after[*drainURL] == 0 {
		fmt.Fprintln(os.Stderr, "FAIL: restored replica received no traffic")
		os.Exit(1)
	}

	fmt.Println("PASS")
}

// distribution sends n requests and counts responses per backend using the
// X-Backend-Server header set by the routing layer.
func distribution(client *http.Client, lbURL string, n int) map[string]int {
	counts := make(map[string]int)

	for i := 0; i < n; i++ {
		res, err := client.Get(lbURL + "/api/message")
		if err != nil {
			counts["error"]++
			continue
		}
		res.Body.Close()

		if res.StatusCode != http.StatusOK {
			counts[fmt.Sprintf("status_%d", res.StatusCode)]++
			continue
		}

		counts[res.Header.Get("X-Backend-Server")]++
	}

	return counts
}

func post(client *http.Client, url string) error {
	res, err := client.Post(url, "", nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	return nil
}

func report(counts map[string]int) {
	for target, count := range counts {
		fmt.Printf("  %-40s %d\n", target, count)
	}
}
