package integration

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
)

var csvTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// LoadReadingsCSV reads a "timestamp,level" file (header optional) into
// readings for location, oldest first
func LoadReadingsCSV(path, location string) ([]entities.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open readings file: %w", err)
	}
	defer f.Close()
	return ParseReadingsCSV(f, location)
}

// ParseReadingsCSV is LoadReadingsCSV over an arbitrary reader
func ParseReadingsCSV(r io.Reader, location string) ([]entities.Reading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var readings []entities.Reading
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: want timestamp and level, got %d fields", line, len(record))
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "timestamp") {
			continue
		}

		ts, err := parseCSVTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		level, err := parseLevel(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid level %q: %w", line, record[1], err)
		}
		readings = append(readings, entities.Reading{Location: location, Timestamp: ts, Level: level})
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	return readings, nil
}

func parseCSVTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
