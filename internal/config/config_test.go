package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soil-api/internal/soildata"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
dataset:
  path: inputs/soil.dat
gridlist: inputs/gridlist.txt
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dataset.Source != "file" {
		t.Errorf("Source = %q, want default file", cfg.Dataset.Source)
	}
	if cfg.Search.MaxRadiusDeg != 0.1 {
		t.Errorf("MaxRadiusDeg = %g, want default 0.1", cfg.Search.MaxRadiusDeg)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Workers)
	}
	if cfg.Output.CSV != "soil_resolved.csv" {
		t.Errorf("Output.CSV = %q, want default", cfg.Output.CSV)
	}
	if cfg.Schema() != soildata.SchemaMineral {
		t.Errorf("Schema = %v, want mineral by default", cfg.Schema())
	}
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
dataset:
  source: minio
  bucket: datasets
  object: hwsd/global.dat
  soil_code: true
search:
  max_radius_deg: 0.25
gridlist: runs/alpine/gridlist.txt
restrict_to_gridlist: true
output:
  csv: runs/alpine/soil.csv
workers: 16
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dataset.Bucket != "datasets" || cfg.Dataset.Object != "hwsd/global.dat" {
		t.Errorf("dataset = %+v", cfg.Dataset)
	}
	if cfg.Schema() != soildata.SchemaCode {
		t.Errorf("Schema = %v, want code", cfg.Schema())
	}
	if !cfg.RestrictToGridlist || cfg.Workers != 16 || cfg.Search.MaxRadiusDeg != 0.25 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		frag string
	}{
		{"missing gridlist", "dataset:\n  path: a.dat\n", "gridlist"},
		{"bad source", "dataset:\n  source: ftp\ngridlist: g.txt\n", "dataset.source"},
		{"file without path", "dataset:\n  source: file\ngridlist: g.txt\n", "dataset.path"},
		{"minio without object", "dataset:\n  source: minio\n  bucket: b\ngridlist: g.txt\n", "dataset.object"},
		{"negative radius", "dataset:\n  path: a.dat\ngridlist: g.txt\nsearch:\n  max_radius_deg: -1\n", "max_radius_deg"},
		{"nan radius", "dataset:\n  path: a.dat\ngridlist: g.txt\nsearch:\n  max_radius_deg: .nan\n", "max_radius_deg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load: want error, got nil")
			}
			if !strings.Contains(err.Error(), tt.frag) {
				t.Errorf("error %q does not mention %q", err, tt.frag)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/no/such/run.yml"); err == nil {
		t.Fatal("Load: want error for missing config")
	}
}
