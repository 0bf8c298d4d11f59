// slot-probe posts a search request file to a running availability-service
// and prints the returned slots, one per line. Meant for local development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

func main() {
	var (
		baseURL = flag.String("base-url", getenv("BASE_URL", "http://localhost:8085"), "availability-service base url")
		file    = flag.String("file", "", "path to a JSON search request ({configuration, from, to})")
	)
	flag.Parse()

	if strings.TrimSpace(*file) == "" {
		fatal("-file is required")
	}
	payload, err := os.ReadFile(*file)
	if err != nil {
		fatal(err.Error())
	}

	resp, err := http.Post(
		strings.TrimRight(*baseURL, "/")+"/api/v1/availability/search",
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fatal(err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		fatal(fmt.Sprintf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed struct {
		Slots []struct {
			StartAt         string `json:"start_at"`
			EndAt           string `json:"end_at"`
			DurationMinutes int    `json:"duration_minutes"`
		} `json:"slots"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		fatal(err.Error())
	}

	for _, s := range parsed.Slots {
		fmt.Printf("%s  ->  %s  (%dm)\n", s.StartAt, s.EndAt, s.DurationMinutes)
	}
	fmt.Printf("count=%d\n", parsed.Count)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
