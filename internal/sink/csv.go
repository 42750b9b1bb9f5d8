package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/job-seekers/harvest/pkg/models"
)

var csvHeader = []string{
	"title",
	"job_location",
	"posted_date",
	"description",
	"url",
	"scraped_at",
	"search_term",
	"search_location",
	"source",
}

// CSV writes records as a timestamped CSV file under dir.
type CSV struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewCSV returns a CSV writer creating <prefix>_<timestamp>.csv files in dir.
func NewCSV(dir, prefix string) *CSV {
	return &CSV{dir: dir, prefix: prefix, now: time.Now}
}

// Write saves the records and returns the path written. Unresolved fields
// are written as the N/A marker.
func (c *CSV) Write(records []models.JobRecord) (string, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(c.dir, timestampedName(c.prefix, "csv", c.now()))

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	converter := newConverter()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, rec := range records {
		row := []string{
			rec.Title.String(),
			rec.Location.String(),
			rec.PostedDate.String(),
			renderDescription(converter, rec.Description),
			rec.URL.String(),
			rec.ScrapedAt.Format(time.RFC3339),
			rec.SearchTerm,
			rec.SearchLocation,
			rec.Source,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}
