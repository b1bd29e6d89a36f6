// Package config provides functionality for parsing and validating
// dashboard configuration files (JSON/YAML).
package config

import (
	"fmt"

	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// ConvertToDashboard converts parsed configuration data to a DashboardConfig.
// The input data should have been validated against the schema before calling
// this function.
//
// The configuration is expected to have this structure:
//
//	{
//	  "schemaVersion": "1.0.0",
//	  "dashboard": {
//	    "title": "...",
//	    "data": {"path": "...", "sample": {"seed": 42, "count": 100}},
//	    "server": {"address": "localhost:8501"},
//	    "defaults": {...},
//	    "export": {"directory": "..."}
//	  }
//	}
func ConvertToDashboard(data map[string]interface{}) (*DashboardConfig, error) {
	if data == nil {
		return nil, fmt.Errorf("configuration data is nil")
	}

	dashboardData, ok := data["dashboard"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'dashboard' section")
	}

	cfg := &DashboardConfig{
		Data: DataConfig{
			Sample: SampleConfig{
				Seed:  dataset.DefaultSampleSeed,
				Count: dataset.DefaultSampleSize,
			},
		},
		Server: ServerConfig{Address: DefaultServerAddress},
	}

	if version, okVersion := data["schemaVersion"].(string); okVersion {
		cfg.SchemaVersion = version
	}

	title, ok := dashboardData["title"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'dashboard.title'")
	}
	cfg.Title = title

	if dataSection, okData := dashboardData["data"].(map[string]interface{}); okData {
		if path, okPath := dataSection["path"].(string); okPath {
			cfg.Data.Path = path
		}
		if sampleSection, okSample := dataSection["sample"].(map[string]interface{}); okSample {
			if seed, okSeed := toInt(sampleSection["seed"]); okSeed {
				cfg.Data.Sample.Seed = int64(seed)
			}
			if count, okCount := toInt(sampleSection["count"]); okCount {
				cfg.Data.Sample.Count = count
			}
		}
	}

	if serverSection, okServer := dashboardData["server"].(map[string]interface{}); okServer {
		if addr, okAddr := serverSection["address"].(string); okAddr {
			cfg.Server.Address = addr
		}
		if v, okTimeout := toInt(serverSection["readTimeoutSeconds"]); okTimeout {
			cfg.Server.ReadTimeoutSeconds = v
		}
		if v, okTimeout := toInt(serverSection["writeTimeoutSeconds"]); okTimeout {
			cfg.Server.WriteTimeoutSeconds = v
		}
	}

	if defaultsSection, okDefaults := dashboardData["defaults"].(map[string]interface{}); okDefaults {
		defaults, err := convertDefaults(defaultsSection)
		if err != nil {
			return nil, err
		}
		cfg.Defaults = *defaults
	}

	if exportSection, okExport := dashboardData["export"].(map[string]interface{}); okExport {
		if dir, okDir := exportSection["directory"].(string); okDir {
			cfg.Export.Directory = dir
		}
	}

	return cfg, nil
}

// convertDefaults converts the 'defaults' section into a DefaultsConfig.
func convertDefaults(section map[string]interface{}) (*DefaultsConfig, error) {
	defaults := &DefaultsConfig{}

	if cats, ok := section["categories"].([]interface{}); ok {
		for i, raw := range cats {
			cat, okCat := raw.(string)
			if !okCat {
				return nil, fmt.Errorf("invalid category at index %d: expected string, got %T", i, raw)
			}
			defaults.Filter.Categories = append(defaults.Filter.Categories, cat)
		}
	}

	intRange := func(name string) (*explorer.IntRange, error) {
		raw, ok := section[name].(map[string]interface{})
		if !ok {
			return nil, nil
		}
		minVal, okMin := toInt(raw["min"])
		maxVal, okMax := toInt(raw["max"])
		if !okMin || !okMax {
			return nil, fmt.Errorf("invalid '%s' range: min and max must be integers", name)
		}
		return &explorer.IntRange{Min: minVal, Max: maxVal}, nil
	}
	floatRange := func(name string) (*explorer.FloatRange, error) {
		raw, ok := section[name].(map[string]interface{})
		if !ok {
			return nil, nil
		}
		minVal, okMin := toFloat(raw["min"])
		maxVal, okMax := toFloat(raw["max"])
		if !okMin || !okMax {
			return nil, fmt.Errorf("invalid '%s' range: min and max must be numbers", name)
		}
		return &explorer.FloatRange{Min: minVal, Max: maxVal}, nil
	}

	var err error
	if defaults.Filter.LaunchYear, err = intRange("launchYear"); err != nil {
		return nil, err
	}
	if defaults.Filter.TeamSize, err = intRange("teamSize"); err != nil {
		return nil, err
	}
	if defaults.Filter.Funding, err = floatRange("funding"); err != nil {
		return nil, err
	}
	if defaults.Filter.SuccessRate, err = floatRange("successRate"); err != nil {
		return nil, err
	}

	if search, ok := section["search"].(string); ok {
		defaults.Filter.Search = search
	}
	if expression, ok := section["expression"].(string); ok {
		defaults.Filter.Expression = expression
	}
	if scriptFile, ok := section["scriptFile"].(string); ok {
		defaults.ScriptFile = scriptFile
	}

	return defaults, nil
}

// toInt accepts the integer representations produced by both the JSON parser
// (float64) and the YAML parser (int/int64).
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// toFloat accepts any numeric representation from either parser.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
