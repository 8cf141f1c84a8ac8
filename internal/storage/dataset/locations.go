package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"review_analyzer/internal/domain"
)

func LoadLocationsFile(path string) (domain.LocationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.LocationSet{}, fmt.Errorf("open locations: %w", err)
	}
	defer f.Close()
	return ReadLocations(f)
}

// ReadLocations reads one location per line. Lines are trimmed; blank lines are dropped
// so the empty string is never a valid location.
func ReadLocations(r io.Reader) (domain.LocationSet, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if n := strings.TrimSpace(sc.Text()); n != "" {
			names = append(names, n)
		}
	}
	if err := sc.Err(); err != nil {
		return domain.LocationSet{}, fmt.Errorf("read locations: %w", err)
	}
	return domain.NewLocationSet(names), nil
}
