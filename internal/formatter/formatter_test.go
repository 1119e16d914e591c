package formatter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/shared"
	tu "github.com/desertthunder/spotilytics/internal/testing"
)

func sampleTracks() []models.Track {
	return []models.Track{
		{
			ID:         "track1",
			Name:       "Song One",
			Artists:    []models.Artist{{Name: "Artist One"}, {Name: "Guest"}},
			Album:      models.Album{Name: "Album One"},
			DurationMS: 185000,
		},
		{
			ID:         "track2",
			Name:       "Pipe | Song",
			Artists:    []models.Artist{{Name: "Artist Two"}},
			Album:      models.Album{Name: "Album, Two"},
			DurationMS: 240000,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText}, {"text", FormatText}, {"TXT", FormatText},
		{"markdown", FormatMarkdown}, {"md", FormatMarkdown}, {"csv", FormatCSV},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExporters(t *testing.T) {
	table := TrackTable("Top Tracks", sampleTracks())

	t.Run("ToCSV", func(t *testing.T) {
		data, err := ToCSV(table)
		if err != nil {
			t.Fatalf("ToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.HasPrefix(output, "#,ID,Title,Artist,Album,Duration\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `1,track1,Song One,"Artist One, Guest",Album One,3:05`) {
			t.Errorf("CSV missing track1 row, got: %s", output)
		}
		if !strings.Contains(output, `"Album, Two"`) {
			t.Errorf("CSV should quote commas, got: %s", output)
		}
		if strings.Contains(output, "Top Tracks") {
			t.Error("CSV should not include the title")
		}
	})

	t.Run("ToMarkdown", func(t *testing.T) {
		output := string(ToMarkdown(table))

		if !strings.HasPrefix(output, "## Top Tracks\n\n") {
			t.Errorf("Markdown missing heading, got: %s", output)
		}
		if !strings.Contains(output, "| # | ID | Title | Artist | Album | Duration |\n| --- | --- | --- | --- | --- | --- |") {
			t.Errorf("Markdown missing header rows, got: %s", output)
		}
		if !strings.Contains(output, `Pipe \| Song`) {
			t.Errorf("Markdown should escape pipes, got: %s", output)
		}
	})

	t.Run("ToMarkdown Empty With Note", func(t *testing.T) {
		output := string(ToMarkdown(Table{Title: "Hidden", Note: "Couldn't load", Headers: []string{"ID"}}))
		if !strings.Contains(output, "_Couldn't load_") || !strings.Contains(output, "_Nothing to show._") {
			t.Errorf("unexpected output: %s", output)
		}
	})

	t.Run("ToText", func(t *testing.T) {
		output := string(ToText(table, nil))
		for _, want := range []string{"Top Tracks", "Song One", "Artist One, Guest", "4:00"} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ToPlain", func(t *testing.T) {
		output := string(ToPlain(table))
		if !strings.Contains(output, "Items: 2") || !strings.Contains(output, "1. 1 - track1 - Song One") {
			t.Errorf("unexpected plain output:\n%s", output)
		}
	})

	t.Run("Render Multiple", func(t *testing.T) {
		var buf bytes.Buffer
		err := Render(&buf, FormatMarkdown, table, ShowTable("Shows", []models.Show{{ID: "s1", Name: "Pod", TotalEpisodes: 3}}))
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "## Top Tracks") || !strings.Contains(output, "\n\n## Shows") {
			t.Errorf("expected both tables separated by a blank line, got:\n%s", output)
		}
	})

	t.Run("Render Write Failure", func(t *testing.T) {
		if err := Render(&tu.FWriter{}, FormatCSV, table); err == nil {
			t.Error("expected write error")
		}
		w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
		if err := Render(&w, FormatText, table, table); err == nil {
			t.Error("expected error after the first write")
		}
	})
}

func TestTables(t *testing.T) {
	t.Run("ArtistTable", func(t *testing.T) {
		artists := []models.Artist{
			{ID: "a1", Name: "One", Genres: []string{"pop", "rock"}, Followers: models.Followers{Total: 42}},
			{ID: "a2", Name: "Two"},
		}

		plain := ArtistTable("Artists", artists, nil)
		if len(plain.Headers) != 5 {
			t.Errorf("expected no Following column, got %v", plain.Headers)
		}

		followed := ArtistTable("Artists", artists, func(id string) bool { return id == "a1" })
		if followed.Headers[5] != "Following" {
			t.Fatalf("expected Following column, got %v", followed.Headers)
		}
		if followed.Rows[0][5] != "yes" || followed.Rows[1][5] != "no" {
			t.Errorf("unexpected follow cells %v", followed.Rows)
		}
		if followed.Rows[0][3] != "42" || followed.Rows[0][4] != "pop, rock" {
			t.Errorf("unexpected row %v", followed.Rows[0])
		}
	})

	t.Run("PlaylistTable", func(t *testing.T) {
		table := PlaylistTable("Library", []models.Playlist{
			{ID: "p1", Name: "Mine", Owner: models.Owner{ID: "alice"}, Tracks: models.PlaylistTracks{Total: 12}, Public: true},
			{ID: "p2", Name: "Shared", Owner: models.Owner{ID: "bob", DisplayName: "Bob"}, Collaborative: true},
		})
		want := [][]string{
			{"p1", "Mine", "alice", "12", "Public", "no"},
			{"p2", "Shared", "Bob", "0", "Private", "yes"},
		}
		for i, row := range want {
			if strings.Join(table.Rows[i], "|") != strings.Join(row, "|") {
				t.Errorf("row %d = %v, want %v", i, table.Rows[i], row)
			}
		}
	})

	t.Run("Misc", func(t *testing.T) {
		albums := AlbumTable("New", []models.Album{{ID: "al", Name: "LP", Artists: []models.Artist{{Name: "X"}, {Name: "Y"}}, AlbumType: "album", ReleaseDate: "2024-01-01"}})
		if albums.Rows[0][2] != "X, Y" {
			t.Errorf("unexpected album row %v", albums.Rows[0])
		}

		episodes := EpisodeTable("Episodes", []models.Episode{{ID: "e1", Name: "Ep", Show: models.Show{Name: "Pod"}, DurationMS: 61000}})
		if episodes.Rows[0][2] != "Pod" || episodes.Rows[0][4] != "1:01" {
			t.Errorf("unexpected episode row %v", episodes.Rows[0])
		}

		counts := CountTable("Genres", []string{"Pop", "Rock", "Extra"}, []int{3, 1})
		if len(counts.Rows) != 2 {
			t.Errorf("mismatched slices should be truncated, got %v", counts.Rows)
		}

		profile := ProfileTable(models.Profile{ID: "alice", DisplayName: "Alice"})
		if profile.Rows[1][1] != "Alice" {
			t.Errorf("unexpected profile rows %v", profile.Rows)
		}
	})
}

func TestWriteExport(t *testing.T) {
	table := TrackTable("Top Tracks", sampleTracks())

	t.Run("Appends Extension", func(t *testing.T) {
		path, err := WriteExport(filepath.Join(t.TempDir(), "nested", "top"), FormatCSV, table)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if filepath.Ext(path) != ".csv" {
			t.Errorf("expected .csv, got %s", path)
		}
		if !strings.Contains(tu.MustReadFile(t, path), "track2") {
			t.Error("file missing rows")
		}
	})

	t.Run("Text Is Unstyled", func(t *testing.T) {
		path, err := WriteExport(filepath.Join(t.TempDir(), "top.txt"), FormatText, table, table)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		content := tu.MustReadFile(t, path)
		if strings.Contains(content, "\x1b[") {
			t.Error("file output should not contain ANSI escapes")
		}
		if strings.Count(content, "Top Tracks") != 2 {
			t.Errorf("expected both tables, got:\n%s", content)
		}
	})

	t.Run("Markdown Keeps Extension", func(t *testing.T) {
		path, err := WriteExport(filepath.Join(t.TempDir(), "README.markdown"), FormatMarkdown, table)
		if err != nil || filepath.Base(path) != "README.markdown" {
			t.Fatalf("unexpected path %s: %v", path, err)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		if _, err := WriteExport("", FormatCSV, table); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := WriteExport(filepath.Join(blocker, "out.csv"), FormatCSV, table); err == nil {
			t.Error("expected error when parent is a file")
		}
	})
}
