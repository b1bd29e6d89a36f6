package config

import (
	"reflect"
	"testing"

	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

func TestConvertToDashboardFull(t *testing.T) {
	result := ParseConfigString(validJSONConfig, "json")
	if !result.IsValid() {
		t.Fatalf("fixture should be valid: %v", result.AllErrors())
	}

	cfg, err := ConvertToDashboard(result.Data)
	if err != nil {
		t.Fatalf("ConvertToDashboard returned error: %v", err)
	}

	if cfg.SchemaVersion != "1.0.0" {
		t.Errorf("SchemaVersion = %q, want 1.0.0", cfg.SchemaVersion)
	}
	if cfg.Title != "Project Explorer Analytics" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Data.Path != "projects.csv" {
		t.Errorf("Data.Path = %q", cfg.Data.Path)
	}
	if cfg.Data.Sample.Seed != 42 || cfg.Data.Sample.Count != 100 {
		t.Errorf("Sample = %+v", cfg.Data.Sample)
	}
	if cfg.Server.Address != "localhost:8501" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if !reflect.DeepEqual(cfg.Defaults.Filter.Categories, []string{"AI/ML", "IoT"}) {
		t.Errorf("Categories = %v", cfg.Defaults.Filter.Categories)
	}
	if cfg.Defaults.Filter.LaunchYear == nil || cfg.Defaults.Filter.LaunchYear.Min != 2018 || cfg.Defaults.Filter.LaunchYear.Max != 2024 {
		t.Errorf("LaunchYear = %+v", cfg.Defaults.Filter.LaunchYear)
	}
	if cfg.Export.Directory != "exports" {
		t.Errorf("Export.Directory = %q", cfg.Export.Directory)
	}
}

func TestConvertToDashboardFromYAML(t *testing.T) {
	result := ParseConfigString(validYAMLConfig, "yaml")
	if !result.IsValid() {
		t.Fatalf("fixture should be valid: %v", result.AllErrors())
	}

	cfg, err := ConvertToDashboard(result.Data)
	if err != nil {
		t.Fatalf("ConvertToDashboard returned error: %v", err)
	}

	// YAML integers must convert the same way JSON floats do
	if cfg.Data.Sample.Seed != 42 || cfg.Data.Sample.Count != 100 {
		t.Errorf("Sample = %+v", cfg.Data.Sample)
	}
	if cfg.Defaults.Filter.LaunchYear == nil || cfg.Defaults.Filter.LaunchYear.Min != 2018 {
		t.Errorf("LaunchYear = %+v", cfg.Defaults.Filter.LaunchYear)
	}
}

func TestConvertToDashboardDefaults(t *testing.T) {
	result := ParseConfigString(`{"schemaVersion": "1.0.0", "dashboard": {"title": "Minimal"}}`, "json")
	if !result.IsValid() {
		t.Fatalf("fixture should be valid: %v", result.AllErrors())
	}

	cfg, err := ConvertToDashboard(result.Data)
	if err != nil {
		t.Fatalf("ConvertToDashboard returned error: %v", err)
	}

	if cfg.Server.Address != DefaultServerAddress {
		t.Errorf("Address = %q, want %q", cfg.Server.Address, DefaultServerAddress)
	}
	if cfg.Data.Path != "" {
		t.Errorf("Data.Path = %q, want empty (sample fallback)", cfg.Data.Path)
	}
	if cfg.Data.Sample.Seed != 42 || cfg.Data.Sample.Count != 100 {
		t.Errorf("Sample = %+v, want generator defaults", cfg.Data.Sample)
	}
	if !cfg.Defaults.Filter.IsZero() {
		t.Errorf("Defaults.Filter should be permissive, got %+v", cfg.Defaults.Filter)
	}
}

func TestConvertToDashboardErrors(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"nil data", nil},
		{"missing dashboard", map[string]interface{}{"schemaVersion": "1.0.0"}},
		{
			"missing title",
			map[string]interface{}{
				"dashboard": map[string]interface{}{},
			},
		},
		{
			"non-string category",
			map[string]interface{}{
				"dashboard": map[string]interface{}{
					"title": "T",
					"defaults": map[string]interface{}{
						"categories": []interface{}{42},
					},
				},
			},
		},
		{
			"non-integer range bound",
			map[string]interface{}{
				"dashboard": map[string]interface{}{
					"title": "T",
					"defaults": map[string]interface{}{
						"launchYear": map[string]interface{}{"min": "old", "max": 2024},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ConvertToDashboard(tt.data); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestConvertFloatRange(t *testing.T) {
	data := map[string]interface{}{
		"schemaVersion": "1.0.0",
		"dashboard": map[string]interface{}{
			"title": "T",
			"defaults": map[string]interface{}{
				"successRate": map[string]interface{}{"min": 0.25, "max": 0.75},
			},
		},
	}

	cfg, err := ConvertToDashboard(data)
	if err != nil {
		t.Fatalf("ConvertToDashboard returned error: %v", err)
	}

	want := &explorer.FloatRange{Min: 0.25, Max: 0.75}
	if !reflect.DeepEqual(cfg.Defaults.Filter.SuccessRate, want) {
		t.Errorf("SuccessRate = %+v, want %+v", cfg.Defaults.Filter.SuccessRate, want)
	}
}
