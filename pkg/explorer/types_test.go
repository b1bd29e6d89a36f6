package explorer

import (
	"strings"
	"testing"
)

func TestFieldsOmitsAbsentCoordinates(t *testing.T) {
	rec := ProjectRecord{Title: "Flat", Category: "IoT", LaunchYear: 2020}

	fields := rec.Fields()
	for _, key := range []string{"x", "y", "z"} {
		if _, ok := fields[key]; ok {
			t.Errorf("field %q should be absent without coordinates", key)
		}
	}

	rec.Coords = &Coordinates{X: 1, Y: 2, Z: 3}
	fields = rec.Fields()
	if fields["x"] != 1.0 || fields["y"] != 2.0 || fields["z"] != 3.0 {
		t.Errorf("coordinate fields = %v, %v, %v", fields["x"], fields["y"], fields["z"])
	}
	if fields["launch_year"] != 2020 {
		t.Errorf("launch_year = %v", fields["launch_year"])
	}
}

func TestRangeContainsIsInclusive(t *testing.T) {
	ir := IntRange{Min: 2018, Max: 2024}
	for v, want := range map[int]bool{2017: false, 2018: true, 2024: true, 2025: false} {
		if got := ir.Contains(v); got != want {
			t.Errorf("IntRange.Contains(%d) = %v, want %v", v, got, want)
		}
	}

	fr := FloatRange{Min: 0.1, Max: 0.9}
	for v, want := range map[float64]bool{0.0: false, 0.1: true, 0.9: true, 1.0: false} {
		if got := fr.Contains(v); got != want {
			t.Errorf("FloatRange.Contains(%v) = %v, want %v", v, got, want)
		}
	}
}

func TestFilterStateIsZero(t *testing.T) {
	if !(FilterState{}).IsZero() {
		t.Error("zero FilterState must report IsZero")
	}
	if (FilterState{Search: "x"}).IsZero() {
		t.Error("a search term makes the state restrictive")
	}
	if (FilterState{LaunchYear: &IntRange{Min: 2018, Max: 2024}}).IsZero() {
		t.Error("a range makes the state restrictive")
	}
}

func TestFilterStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   FilterState
		wantErr bool
	}{
		{"zero state", FilterState{}, false},
		{"valid ranges", FilterState{
			LaunchYear:  &IntRange{Min: 2018, Max: 2024},
			SuccessRate: &FloatRange{Min: 0.1, Max: 0.9},
		}, false},
		{"degenerate range", FilterState{TeamSize: &IntRange{Min: 5, Max: 5}}, false},
		{"inverted year range", FilterState{LaunchYear: &IntRange{Min: 2024, Max: 2018}}, true},
		{"inverted funding range", FilterState{Funding: &FloatRange{Min: 100, Max: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilterStateKey(t *testing.T) {
	if got := (FilterState{}).Key(); got != "unfiltered" {
		t.Errorf("zero state Key() = %q", got)
	}

	// Category order must not affect the key
	a := FilterState{Categories: []string{"IoT", "AI/ML"}}
	b := FilterState{Categories: []string{"AI/ML", "IoT"}}
	if a.Key() != b.Key() {
		t.Errorf("keys differ across category orderings: %q vs %q", a.Key(), b.Key())
	}

	// Distinct states must produce distinct keys
	c := FilterState{Categories: []string{"AI/ML"}}
	if a.Key() == c.Key() {
		t.Errorf("distinct states share key %q", a.Key())
	}

	d := FilterState{Search: "Sensor"}
	e := FilterState{Search: "sensor"}
	if d.Key() != e.Key() {
		t.Error("search term keys should be case-insensitive")
	}

	// A value containing another field's separator must not collide with
	// the state that spells it out as two fields.
	forged := FilterState{Search: "a|expr=funding > 0"}
	split := FilterState{Search: "a", Expression: "funding > 0"}
	if forged.Key() == split.Key() {
		t.Errorf("embedded separator forges key %q", forged.Key())
	}
	catForged := FilterState{Categories: []string{"AI,3:IoT"}}
	catSplit := FilterState{Categories: []string{"AI", "IoT"}}
	if catForged.Key() == catSplit.Key() {
		t.Errorf("embedded category separator forges key %q", catForged.Key())
	}

	// Large scripts are keyed by digest, not source
	script := FilterState{Script: strings.Repeat("function match(r) { return true }\n", 100)}
	if len(script.Key()) > 64 {
		t.Errorf("script key too long: %d bytes", len(script.Key()))
	}
}

func TestLoadDiagnosticsClean(t *testing.T) {
	if !(LoadDiagnostics{RowsRead: 5, RowsLoaded: 5}).Clean() {
		t.Error("no drops or defaults must report clean")
	}
	if (LoadDiagnostics{RowsDropped: 1}).Clean() {
		t.Error("a dropped row must not report clean")
	}
	if (LoadDiagnostics{RowsDefaulted: 1}).Clean() {
		t.Error("a defaulted row must not report clean")
	}
}
