package scraper

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetch downloads the disponibilidade page HTML.
func Fetch(url string, timeout time.Duration) (string, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	t0 := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("fetch error url=%s err=%v", url, err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	log.Printf("fetched %s in %dms", url, time.Since(t0).Milliseconds())
	return string(body), nil
}
