// Package station ingests MTA stop exports into the station catalog.
package station

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"congestion-pulse/internal/models"

	"go.uber.org/zap"
)

// ParseFile reads an MTA stops CSV (Stop Name / GTFS Latitude / GTFS
// Longitude columns, any order). Bad rows are logged and skipped so one
// malformed line cannot abort an ingest.
func ParseFile(filename string, log *zap.Logger) ([]models.Station, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file, log)
}

// Parse consumes the CSV from a reader.
func Parse(r io.Reader, log *zap.Logger) ([]models.Station, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable fields

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Map header indices
	indices := make(map[string]int)
	for i, h := range header {
		indices[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, required := range []string{"stop name", "gtfs latitude", "gtfs longitude"} {
		if _, ok := indices[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var results []models.Station
	seen := make(map[string]bool)
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return results, fmt.Errorf("error at line %d: %w", lineNum, err)
		}
		lineNum++

		s, err := recordToStation(record, indices)
		if err != nil {
			log.Warn("skipping station row", zap.Int("line", lineNum), zap.Error(err))
			continue
		}
		// Exports repeat a stop once per route; keep the first occurrence.
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		results = append(results, s)
	}

	return results, nil
}

func recordToStation(record []string, indices map[string]int) (models.Station, error) {
	var s models.Station

	getValue := func(key string) string {
		if idx, ok := indices[key]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	s.Name = getValue("stop name")
	if s.Name == "" {
		return s, fmt.Errorf("missing stop name")
	}

	var err error
	s.Latitude, err = strconv.ParseFloat(getValue("gtfs latitude"), 64)
	if err != nil {
		return s, fmt.Errorf("invalid latitude: %w", err)
	}
	s.Longitude, err = strconv.ParseFloat(getValue("gtfs longitude"), 64)
	if err != nil {
		return s, fmt.Errorf("invalid longitude: %w", err)
	}

	if errs := Validate(&s); len(errs) > 0 {
		return s, fmt.Errorf("%s", errs[0])
	}
	return s, nil
}

// Validate checks a station's fields, returning one message per problem.
func Validate(s *models.Station) []string {
	var errors []string

	if s.Name == "" {
		errors = append(errors, "name is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		errors = append(errors, "latitude must be between -90 and 90")
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		errors = append(errors, "longitude must be between -180 and 180")
	}

	return errors
}
