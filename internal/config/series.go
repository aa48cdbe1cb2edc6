package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"hemcore/internal/clock"
	"hemcore/internal/hemerr"
)

// loadSeries reads a single-column CSV file (one value per line, last
// field of each record if more than one) into a clock.Series. Grounded on
// the teacher's internal/ingest.StatsParser: a csv.NewReader record loop
// that tolerates blank lines and reports the offending line number on a
// parse failure.
func loadSeries(path string, startDay int, stepH float64) (clock.Series, error) {
	if path == "" {
		return clock.Series{}, hemerr.InputValidationf("ExternalConditions", "series file path must not be empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return clock.Series{}, hemerr.Wrap(hemerr.InputValidation, "ExternalConditions", fmt.Errorf("opening series file %s: %w", path, err))
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	var values []float64
	lineNum := 0
	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return clock.Series{}, hemerr.Wrap(hemerr.InputValidation, "ExternalConditions", fmt.Errorf("reading %s line %d: %w", path, lineNum, err))
		}
		if len(record) == 0 {
			continue
		}
		raw := strings.TrimSpace(record[len(record)-1])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return clock.Series{}, hemerr.Wrap(hemerr.InputValidation, "ExternalConditions", fmt.Errorf("parsing %s line %d: %w", path, lineNum, err))
		}
		values = append(values, v)
	}

	s, err := clock.NewSeries(startDay, stepH, values)
	if err != nil {
		return clock.Series{}, hemerr.Wrap(hemerr.InputValidation, "ExternalConditions", fmt.Errorf("building series from %s: %w", path, err))
	}
	return s, nil
}
