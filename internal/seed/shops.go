// Package seed loads shop records for the in-memory store. Shops are created
// outside the API, so a memory-backed shop service starts from these.
package seed

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
)

var gzipMagic = []byte{0x1f, 0x8b}

// sourceResult holds the result of loading a single source
type sourceResult struct {
	index int
	shops []models.Shop
	err   error
}

// Loader reads newline-delimited JSON shop records from files or URLs.
// Sources may be gzip compressed.
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader. client defaults to one with a one minute timeout.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	return &Loader{client: client}
}

// LoadShops loads every source concurrently and returns the shops in source
// order. Returns error if any source fails to load.
func (l *Loader) LoadShops(ctx context.Context, sources []string) ([]models.Shop, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	resultChan := make(chan sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()

			shops, err := l.load(ctx, source)
			resultChan <- sourceResult{index: index, shops: shops, err: err}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order
	results := make([]sourceResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	var shops []models.Shop
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load shop source %s: %w", sources[i], result.err)
		}
		shops = append(shops, result.shops...)
	}

	return shops, nil
}

func (l *Loader) load(ctx context.Context, source string) ([]models.Shop, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	r := io.Reader(br)
	if magic, _ := br.Peek(len(gzipMagic)); bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return parseShops(r)
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// parseShops reads one JSON shop per line. Blank lines are skipped.
func parseShops(r io.Reader) ([]models.Shop, error) {
	var shops []models.Shop
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var shop models.Shop
		if err := json.Unmarshal([]byte(text), &shop); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if strings.TrimSpace(shop.Name) == "" {
			return nil, fmt.Errorf("line %d: shop name is required", line)
		}
		shops = append(shops, shop)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return shops, nil
}
