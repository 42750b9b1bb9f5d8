package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/job-seekers/harvest/pkg/models"
)

// JSON writes records as a timestamped, indented JSON array under dir.
type JSON struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewJSON returns a JSON writer creating <prefix>_<timestamp>.json files in dir.
func NewJSON(dir, prefix string) *JSON {
	return &JSON{dir: dir, prefix: prefix, now: time.Now}
}

// Write saves the records and returns the path written. Descriptions are
// rendered to markdown so the export carries no raw page markup.
func (j *JSON) Write(records []models.JobRecord) (string, error) {
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(j.dir, timestampedName(j.prefix, "json", j.now()))

	converter := newConverter()
	out := make([]models.JobRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].Description.Resolved() {
			out[i].Description = models.FieldOf(renderDescription(converter, out[i].Description))
		}
	}

	content, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", err
	}
	return path, nil
}
