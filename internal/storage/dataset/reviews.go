// Package dataset reads the startup review table and location list.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"review_analyzer/internal/domain"
)

var requiredColumns = []string{"ReviewBody", "Location", "Timestamp"}

// LoadReviewsFile opens path and parses it with ReadReviews.
func LoadReviewsFile(path string) ([]domain.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reviews: %w", err)
	}
	defer f.Close()
	return ReadReviews(f)
}

// ReadReviews parses a CSV table with a header row. Columns are matched by name;
// ReviewId is optional and generated when missing, unknown columns are ignored.
// Rows without a body or with a malformed Timestamp are skipped.
func ReadReviews(r io.Reader) ([]domain.Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("reviews csv: missing header")
		}
		return nil, fmt.Errorf("reviews csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("reviews csv: missing column %q", c)
		}
	}
	idCol, hasID := idx["ReviewId"]

	var out []domain.Review
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reviews csv line %d: %w", line, err)
		}
		field := func(i int) string {
			if i < len(rec) {
				return rec[i]
			}
			return ""
		}

		rv := domain.Review{
			ReviewBody: field(idx["ReviewBody"]),
			Location:   field(idx["Location"]),
			Timestamp:  strings.TrimSpace(field(idx["Timestamp"])),
		}
		if hasID {
			rv.ReviewId = strings.TrimSpace(field(idCol))
		}
		if rv.ReviewId == "" {
			rv.ReviewId = uuid.New().String()
		}
		if rv.ReviewBody == "" {
			log.Warn().Int("line", line).Msg("skipping review without body")
			continue
		}
		if _, err := rv.Time(); err != nil {
			log.Warn().Int("line", line).Str("timestamp", rv.Timestamp).Msg("skipping review with malformed timestamp")
			continue
		}
		out = append(out, rv)
	}
	return out, nil
}
