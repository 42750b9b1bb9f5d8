// Package sink persists extracted job records to disk. Writers are
// independent of the extraction engine; they receive finished records and
// own the file format.
package sink

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/job-seekers/harvest/pkg/models"
)

// Writer persists a batch of records and returns the path written.
type Writer interface {
	Write(records []models.JobRecord) (string, error)
}

// timestampedName builds the output filename: <prefix>_YYYYMMDD_HHMMSS.<ext>.
// Successive runs never overwrite each other.
func timestampedName(prefix, ext string, t time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format("20060102_150405"), ext)
}

func newConverter() *md.Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return converter
}

// renderDescription converts a description field for output. Descriptions
// come off the page as inner HTML; plain text passes through untouched.
func renderDescription(converter *md.Converter, f models.Field) string {
	text, ok := f.Value()
	if !ok {
		return models.NotAvailable
	}
	if !strings.Contains(text, "<") {
		return text
	}
	rendered, err := converter.ConvertString(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(rendered)
}
