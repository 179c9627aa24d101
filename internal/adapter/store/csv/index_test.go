package csv

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		key     string
		t, m, g float64
		wantErr bool
	}{
		{" 5000,0.0,4.5", 5000, 0, 4.5, false},
		{"12000, -0.5 ,3.00", 12000, -0.5, 3, false},
		{"5000,0.0", 0, 0, 0, true},
		{"hot,0.0,4.5", 0, 0, 0, true},
	}
	for _, tt := range tests {
		temp, met, grav, err := ParseIndex(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseIndex(%q) expected error", tt.key)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseIndex(%q): %v", tt.key, err)
		}
		if temp != tt.t || met != tt.m || grav != tt.g {
			t.Errorf("ParseIndex(%q) = %v,%v,%v want %v,%v,%v", tt.key, temp, met, grav, tt.t, tt.m, tt.g)
		}
	}
}

func TestFormatIndex(t *testing.T) {
	if got := FormatIndex(5000, 0, 4.5, "%2.1f"); got != " 5000,0.0,4.5" {
		t.Errorf("got %q", got)
	}
	if got := FormatIndex(31000, 0, 3.25, "%3.2f"); got != "31000,0.0,3.25" {
		t.Errorf("got %q", got)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		in, file, column string
	}{
		{"phoenixm00/phoenixm00_05000.nc[g4.5]", "phoenixm00/phoenixm00_05000.nc", "g4.5"},
		{"t0500.nc", "t0500.nc", DefaultColumn},
		{" t0500.nc ", "t0500.nc", DefaultColumn},
	}
	for _, tt := range tests {
		f, c := ParseFilename(tt.in)
		if f != tt.file || c != tt.column {
			t.Errorf("ParseFilename(%q) = %q,%q want %q,%q", tt.in, f, c, tt.file, tt.column)
		}
	}
}

func TestWriteThenReadIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	rows := []Row{
		{Index: FormatIndex(5000, 0, 4.5, "%2.1f"), Filename: "phoenixm00/phoenixm00_05000.nc[g4.5]"},
		{Index: FormatIndex(5100, 0, 4.5, "%2.1f"), Filename: "phoenixm00/phoenixm00_05100.nc[g4.5]"},
	}
	if err := WriteIndex(path, rows); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}

	entries, err := ReadIndex(path)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[1].Temperature != 5100 || entries[1].Gravity != 4.5 || entries[1].Column != "g4.5" {
		t.Errorf("unexpected entry %+v", entries[1])
	}
}

func TestWriteQuotesIndex(t *testing.T) {
	var buf bytes.Buffer
	if err := writeIndex(&buf, []Row{{Index: "5000,0.0,4.5", Filename: "a.nc"}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"5000,0.0,4.5",a.nc`) {
		t.Errorf("index key not quoted: %q", buf.String())
	}
}

func TestReadIndexRejectsBadHeader(t *testing.T) {
	if _, err := readIndex(strings.NewReader("KEY,FILE\n")); err == nil {
		t.Error("expected header error")
	}
	if _, err := ReadIndex(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected open error")
	}
}
