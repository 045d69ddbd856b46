// package formatter renders search results and the watched list as tables and exports the watched list to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/popcorn/internal/models"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, md/markdown and txt/text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, md or txt)", s)
	}
}

// Export renders the watched list in the given format.
func Export(list models.WatchedList, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(list)
	case FormatMarkdown:
		return ExportToMarkdown(list)
	case FormatText:
		return ExportToText(list)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// ExportToCSV converts a watched list to CSV with columns: ID, Title, Year, IMDb Rating, Runtime, User Rating, Rating Changes
func ExportToCSV(list models.WatchedList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "IMDb Rating", "Runtime", "User Rating", "Rating Changes"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range list {
		record := []string{
			e.ID,
			e.Title,
			e.Year,
			strconv.FormatFloat(e.ExternalRating, 'f', 1, 64),
			strconv.Itoa(e.RuntimeMinutes),
			strconv.Itoa(e.UserRating),
			strconv.Itoa(e.RatingRevisionCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a watched list to Markdown with a summary header
func ExportToMarkdown(list models.WatchedList) ([]byte, error) {
	var buf bytes.Buffer
	s := list.Summary()

	buf.WriteString("# Movies you watched\n\n")
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n", s.Count))
	buf.WriteString(fmt.Sprintf("**Average IMDb rating**: %.2f\n", s.AvgExternalRating))
	buf.WriteString(fmt.Sprintf("**Average user rating**: %.2f\n", s.AvgUserRating))
	buf.WriteString(fmt.Sprintf("**Average runtime**: %.2f min\n\n", s.AvgRuntime))

	buf.WriteString("## Movies\n\n")
	for i, e := range list {
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) (%s) ⭐️ %.1f 🌟 %d ⏳ %s\n",
			i+1, e.Title, imdbURL(e.ID), e.Year, e.ExternalRating, e.UserRating, FormatRuntime(e.RuntimeMinutes)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a watched list to plain text
func ExportToText(list models.WatchedList) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Watched: %d movies\n\n", len(list)))
	for i, e := range list {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) - rated %d/10\n", i+1, e.Title, e.Year, e.UserRating))
	}

	return buf.Bytes(), nil
}

// WriteExport writes the watched list to path in the given format.
//
// Defaults to watched.<format> as the filename.
func WriteExport(list models.WatchedList, format Format, path string) (string, error) {
	if path == "" {
		path = "watched." + string(format)
	}

	data, err := Export(list, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// FormatRuntime renders minutes, or "?" when the runtime is unknown.
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return "?"
	}
	return fmt.Sprintf("%d min", minutes)
}

func imdbURL(id string) string {
	return "https://www.imdb.com/title/" + id + "/"
}
