// Package integration handles external service interactions: gauge pages,
// reading files and notification delivery channels
package integration

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelzeko/water-alert/internal/entities"
	"go.uber.org/zap"
)

// GaugeTimestampLayout is the date format used by gauge history tables
const GaugeTimestampLayout = "02.01.2006 15:04"

// GaugeScraper reads level history tables from hydrological gauge pages.
// A page lists one observation per row: a timestamp cell and a level cell.
type GaugeScraper struct {
	client   *http.Client
	location *time.Location
	logger   *zap.Logger
}

// NewGaugeScraper creates a scraper. Timestamps on the pages are read in
// loc; nil means UTC.
func NewGaugeScraper(client *http.Client, loc *time.Location, logger *zap.Logger) *GaugeScraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GaugeScraper{client: client, location: loc, logger: logger}
}

// FetchReadings downloads the gauge page at url and returns its readings
// for location, oldest first. Rows that are not a timestamp/level pair
// are skipped.
func (gs *GaugeScraper) FetchReadings(ctx context.Context, location, url string) ([]entities.Reading, error) {
	gs.logger.Debug("Fetching gauge page", zap.String("location", location), zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", location, err)
	}
	res, err := gs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gauge page for %s: %w", location, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code for %s: %d %s", location, res.StatusCode, res.Status)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gauge page for %s: %w", location, err)
	}

	readings, processed, skipped := gs.parseTable(doc, location)
	gs.logger.Info("Parsed gauge page",
		zap.String("location", location),
		zap.Int("rows", processed),
		zap.Int("valid", len(readings)),
		zap.Int("skipped", skipped),
	)
	return readings, nil
}

func (gs *GaugeScraper) parseTable(doc *goquery.Document, location string) (readings []entities.Reading, processed, skipped int) {
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		processed++

		dateTimeStr := strings.TrimSpace(cells.Eq(0).Text())
		levelStr := strings.TrimSpace(cells.Eq(1).Text())

		timestamp, err := time.ParseInLocation(GaugeTimestampLayout, dateTimeStr, gs.location)
		if err != nil {
			skipped++
			return
		}
		level, err := parseLevel(levelStr)
		if err != nil {
			gs.logger.Debug("Skipping row with invalid level", zap.String("value", levelStr))
			skipped++
			return
		}

		readings = append(readings, entities.Reading{
			Location:  location,
			Timestamp: timestamp,
			Level:     level,
		})
	})

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	return readings, processed, skipped
}

// parseLevel accepts both "72.5" and "72,5"
func parseLevel(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	level, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if err := (entities.Reading{Level: level, Timestamp: time.Unix(0, 0)}).Validate(); err != nil {
		return 0, err
	}
	return level, nil
}
