package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/popcorn/internal/models"
)

func testWatched() models.WatchedList {
	return models.WatchedList{
		{ID: "tt1375666", Title: "Inception", Year: "2010", ExternalRating: 8.8, RuntimeMinutes: 148, UserRating: 9, RatingRevisionCount: 2},
		{ID: "tt0816692", Title: "Interstellar", Year: "2014", ExternalRating: 8.6, RuntimeMinutes: 0, UserRating: 7},
	}
}

func TestExporters(t *testing.T) {
	list := testWatched()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(list)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if lines[0] != "ID,Title,Year,IMDb Rating,Runtime,User Rating,Rating Changes" {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if lines[1] != "tt1375666,Inception,2010,8.8,148,9,2" {
			t.Errorf("unexpected record: %s", lines[1])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(list)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		content := string(data)
		for _, want := range []string{
			"# Movies you watched",
			"**Movies**: 2",
			"**Average user rating**: 8.00",
			"[Inception](https://www.imdb.com/title/tt1375666/)",
			"⏳ ?",
		} {
			if !strings.Contains(content, want) {
				t.Errorf("markdown missing %q", want)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(list)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		content := string(data)
		if !strings.Contains(content, "Watched: 2 movies") {
			t.Error("text missing count")
		}
		if !strings.Contains(content, "2. Interstellar (2014) - rated 7/10") {
			t.Error("text missing entry")
		}
	})

	t.Run("Empty list", func(t *testing.T) {
		data, err := ExportToMarkdown(nil)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "**Movies**: 0") {
			t.Error("expected zero count")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"Markdown", FormatMarkdown, false},
		{" md ", FormatMarkdown, false},
		{"text", FormatText, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	written, err := WriteExport(testWatched(), FormatCSV, path)
	if err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	if written != path {
		t.Errorf("expected %s, got %s", path, written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "ID,Title") {
		t.Errorf("unexpected content: %s", data)
	}
}

func TestTables(t *testing.T) {
	t.Run("SearchTable", func(t *testing.T) {
		out := SearchTable([]models.SearchResult{{ID: "tt1375666", Title: "Inception", Year: "2010"}})
		if !strings.Contains(out, "Inception") || !strings.Contains(out, "tt1375666") {
			t.Errorf("unexpected table:\n%s", out)
		}
	})

	t.Run("WatchedTable", func(t *testing.T) {
		out := WatchedTable(testWatched())
		if !strings.Contains(out, "2 movies") {
			t.Errorf("expected summary footer:\n%s", out)
		}
		if !strings.Contains(out, "148 min") {
			t.Errorf("expected runtime column:\n%s", out)
		}
	})

	t.Run("FormatRuntime", func(t *testing.T) {
		if got := FormatRuntime(0); got != "?" {
			t.Errorf("FormatRuntime(0) = %q", got)
		}
		if got := FormatRuntime(90); got != "90 min" {
			t.Errorf("FormatRuntime(90) = %q", got)
		}
	})
}

func TestTable(t *testing.T) {
	out := Table([]string{"Key", "Revision"}, [][]string{{"watched", "3"}, {"short"}})
	if !strings.Contains(out, "watched") || !strings.Contains(out, "Revision") {
		t.Errorf("unexpected table:\n%s", out)
	}
	if Table(nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}
