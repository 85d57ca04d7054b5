package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/saeedalam/dramarec/pkg/types"
)

var (
	// ErrUnsupportedFormat is returned for dataset files that are neither CSV nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrMissingTitleColumn is returned when a CSV has no Title column.
	ErrMissingTitleColumn = errors.New("dataset has no title column")
)

var validate = validator.New()

// LoadDataset reads a catalog from a .csv or .json file. Item ids are the
// 0-based positions of accepted rows.
func LoadDataset(path string) ([]types.Item, *types.LoadReport, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		return LoadCSV(f, path)
	case ".json":
		return loadJSONDataset(path)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// column indexes into a CSV record; -1 when absent.
type columns struct {
	title, genres, moodTags, summary, mainLeads, year, rating int
}

// normalizeHeader mirrors how the dataset's headers are cleaned:
// "Personal rating (out of 10)" becomes "personal_rating_out_of_10".
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.NewReplacer("(", "", ")", "").Replace(h)
	return strings.ToLower(h)
}

func mapColumns(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1, -1, -1, -1}
	for i, raw := range header {
		switch h := normalizeHeader(raw); {
		case h == "title":
			cols.title = i
		case h == "genres":
			cols.genres = i
		case h == "mood_tags":
			cols.moodTags = i
		case h == "summary":
			cols.summary = i
		case h == "main_leads":
			cols.mainLeads = i
		case h == "year":
			cols.year = i
		case h == "rating" || strings.HasPrefix(h, "personal_rating"):
			cols.rating = i
		}
	}
	if cols.title < 0 {
		return cols, ErrMissingTitleColumn
	}
	return cols, nil
}

// LoadCSV parses a catalog CSV. Rows that fail validation are skipped and
// listed in the report.
func LoadCSV(r io.Reader, path string) ([]types.Item, *types.LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("reading header: empty file")
		}
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	report := &types.LoadReport{Path: path}
	var items []types.Item
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		line, _ := reader.FieldPos(0)

		if isBlankRecord(record) {
			continue
		}

		item := types.Item{
			ID:        len(items),
			Title:     strings.TrimSpace(field(record, cols.title)),
			Genres:    splitList(field(record, cols.genres)),
			MoodTags:  splitList(field(record, cols.moodTags)),
			Summary:   strings.TrimSpace(field(record, cols.summary)),
			MainLeads: splitList(field(record, cols.mainLeads)),
			Year:      parseYear(field(record, cols.year)),
			Rating:    parseRating(field(record, cols.rating)),
		}
		if err := validate.Struct(item); err != nil {
			report.Rejected = append(report.Rejected, types.RejectedRow{Line: line, Reason: err.Error()})
			continue
		}
		items = append(items, item)
	}

	report.Accepted = len(items)
	return items, report, nil
}

func loadJSONDataset(path string) ([]types.Item, *types.LoadReport, error) {
	raw, err := readJSON[[]types.Item](path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	report := &types.LoadReport{Path: path}
	var items []types.Item
	for i, item := range *raw {
		item.Title = strings.TrimSpace(item.Title)
		item.ID = len(items)
		if err := validate.Struct(item); err != nil {
			report.Rejected = append(report.Rejected, types.RejectedRow{Line: i + 1, Reason: err.Error()})
			continue
		}
		items = append(items, item)
	}

	report.Accepted = len(items)
	return items, report, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRating coerces unparseable ratings to 0.
func parseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseYear accepts "2020" and "2020.0"; anything else is 0.
func parseYear(s string) int {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}
