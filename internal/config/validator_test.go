package config

import (
	"encoding/json"
	"testing"
)

func parsedConfig(t *testing.T, content string) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		t.Fatalf("fixture is not valid JSON: %v", err)
	}
	return data
}

func TestValidateConfigValid(t *testing.T) {
	data := parsedConfig(t, validJSONConfig)

	result := ValidateConfig(data)
	if !result.Valid {
		t.Fatalf("expected valid config, got errors: %v", result.Errors)
	}
}

func TestValidateConfigNilAndEmpty(t *testing.T) {
	if result := ValidateConfig(nil); result.Valid {
		t.Error("nil data should be invalid")
	}
	if result := ValidateConfig(map[string]interface{}{}); result.Valid {
		t.Error("empty data should be invalid")
	}
}

func TestValidateConfigReportsPath(t *testing.T) {
	data := parsedConfig(t, `{
		"schemaVersion": "1.0.0",
		"dashboard": {
			"title": "T",
			"server": {"address": ""}
		}
	}`)

	result := ValidateConfig(data)
	if result.Valid {
		t.Fatal("expected validation failure for empty address")
	}

	found := false
	for _, e := range result.Errors {
		if e.Path == "/dashboard/server/address" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error at /dashboard/server/address, got %v", result.Errors)
	}
}

func TestGetEmbeddedSchema(t *testing.T) {
	schema := GetEmbeddedSchema()
	if len(schema) == 0 {
		t.Fatal("embedded schema should not be empty")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(schema, &doc); err != nil {
		t.Fatalf("embedded schema is not valid JSON: %v", err)
	}
}
