package validate

import (
	"reflect"
	"testing"

	"hsnserve/pkg/catalog"
)

// testCatalog builds the fixture reference data used across the tests.
// "020110" is deliberately present without its 2- and 4-digit parents so
// hierarchy failures can be observed on an existing code.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Entry{
		{Code: "01", Description: "Live animals"},
		{Code: "0101", Description: "Live horses, asses, mules and hinnies"},
		{Code: "010110", Description: "Pure-bred breeding horses"},
		{Code: "0102", Description: "Live bovine animals"},
		{Code: "020110", Description: "Carcasses and half-carcasses of bovine animals"},
	})
	if err != nil {
		t.Fatalf("building test catalog: %v", err)
	}
	return cat
}

func TestCheckFormat(t *testing.T) {
	v := New(testCatalog(t))

	testCases := []struct {
		input       string
		valid       bool
		cleaned     string
		description string
	}{
		{"01", true, "01", "2-digit sector code"},
		{"0101", true, "0101", "4-digit chapter code"},
		{"010110", true, "010110", "6-digit heading code"},
		{"01011010", true, "01011010", "8-digit sub-heading code"},
		{"01 01", true, "0101", "spaces stripped before length check"},
		{"0101.10", true, "010110", "punctuation stripped"},
		{"abc", false, "", "letters only leaves nothing"},
		{"", false, "", "empty input"},
		{"1", false, "1", "1 digit is not a legal depth"},
		{"123", false, "123", "3 digits is not a legal depth"},
		{"12345", false, "12345", "5 digits is not a legal depth"},
		{"0101101010", false, "0101101010", "10 digits is not a legal depth"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			result := v.CheckFormat(tc.input)
			if result.Valid != tc.valid {
				t.Errorf("Input %q: expected valid=%v, got %v (err: %s)", tc.input, tc.valid, result.Valid, result.Err)
			}
			if result.CleanedCode != tc.cleaned {
				t.Errorf("Input %q: expected cleaned %q, got %q", tc.input, tc.cleaned, result.CleanedCode)
			}
			if !tc.valid && result.Err == "" {
				t.Errorf("Input %q: invalid result must carry an error message", tc.input)
			}
		})
	}
}

func TestCheckExistence(t *testing.T) {
	v := New(testCatalog(t))

	if r := v.CheckExistence("0101"); !r.Exists || r.Description == "" {
		t.Errorf("Expected 0101 to exist with description, got %+v", r)
	}
	// Absence is a normal outcome, never an error.
	if r := v.CheckExistence("9999"); r.Exists || r.Description != "" {
		t.Errorf("Expected 9999 to be absent, got %+v", r)
	}
}

func TestCheckHierarchy(t *testing.T) {
	v := New(testCatalog(t))

	testCases := []struct {
		code        string
		valid       bool
		parents     []string
		missing     []string
		description string
	}{
		{"01", true, nil, nil, "2-digit code has no required ancestors"},
		{"0101", true, []string{"01"}, nil, "4-digit code needs its sector"},
		{"010110", true, []string{"01", "0101"}, nil, "6-digit code needs sector and chapter"},
		{"01011010", true, []string{"01", "0101", "010110"}, nil, "8-digit code needs all three prefixes"},
		{"020110", false, []string{"02", "0201"}, []string{"02", "0201"}, "orphan code reports every missing parent"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			result := v.CheckHierarchy(tc.code)
			if result.Valid != tc.valid {
				t.Errorf("Code %q: expected valid=%v, got %v", tc.code, tc.valid, result.Valid)
			}
			if !reflect.DeepEqual(result.ParentCodes, tc.parents) {
				t.Errorf("Code %q: expected parents %v, got %v", tc.code, tc.parents, result.ParentCodes)
			}
			if !reflect.DeepEqual(result.MissingParents, tc.missing) {
				t.Errorf("Code %q: expected missing %v, got %v", tc.code, tc.missing, result.MissingParents)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	v := New(testCatalog(t))

	t.Run("valid leaf with full ancestry", func(t *testing.T) {
		result := v.Validate("010110")
		if !result.OverallValid {
			t.Errorf("Expected 010110 to be valid, got %+v", result)
		}
		if len(result.MissingParents) != 0 {
			t.Errorf("Expected no missing parents, got %v", result.MissingParents)
		}
		if result.Description != "Pure-bred breeding horses" {
			t.Errorf("Unexpected description: %q", result.Description)
		}
	})

	t.Run("well-formed but absent code", func(t *testing.T) {
		result := v.Validate("010199")
		if result.Exists {
			t.Error("Expected 010199 to be absent")
		}
		if result.OverallValid {
			t.Error("Absent code must not be overall valid")
		}
		if !result.FormatValid || !result.HierarchyValid {
			t.Errorf("Format and hierarchy should pass for 010199, got %+v", result)
		}
	})

	t.Run("format failure short-circuits", func(t *testing.T) {
		result := v.Validate("abc")
		if result.FormatValid || result.OverallValid {
			t.Errorf("Expected format failure, got %+v", result)
		}
		if result.Exists || result.HierarchyValid {
			t.Error("Existence and hierarchy must not pass for an ill-formed code")
		}
		if result.Err == "" {
			t.Error("Format failure must populate the error field")
		}
	})

	t.Run("existing code with missing parents", func(t *testing.T) {
		result := v.Validate("020110")
		if !result.Exists {
			t.Error("Expected 020110 to exist")
		}
		if result.HierarchyValid || result.OverallValid {
			t.Errorf("Expected hierarchy failure, got %+v", result)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		first := v.Validate("010110")
		second := v.Validate("010110")
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Repeated calls differ: %+v vs %+v", first, second)
		}
	})

	// If a longer code is hierarchy-valid, its prefixes must themselves exist.
	t.Run("hierarchy monotonicity", func(t *testing.T) {
		leaf := v.Validate("010110")
		if !leaf.HierarchyValid {
			t.Fatalf("Fixture leaf should be hierarchy-valid: %+v", leaf)
		}
		for _, parent := range leaf.ParentCodes {
			if r := v.Validate(parent); !r.Exists {
				t.Errorf("Parent %q of hierarchy-valid code must exist", parent)
			}
		}
	})
}

func TestValidateAll(t *testing.T) {
	v := New(testCatalog(t))

	codes := []string{"010110", "abc", "0101", "9999"}
	results := v.ValidateAll(codes)

	if len(results) != len(codes) {
		t.Fatalf("Expected %d results, got %d", len(codes), len(results))
	}
	for i, code := range codes {
		if results[i].InputCode != code {
			t.Errorf("Result %d: expected input %q, got %q", i, code, results[i].InputCode)
		}
		// Batch results must match the independent single-code verdicts.
		if single := v.Validate(code); !reflect.DeepEqual(results[i], single) {
			t.Errorf("Result %d differs from single validation", i)
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	cat, err := catalog.New([]catalog.Entry{
		{Code: "01", Description: "Live animals"},
		{Code: "0101", Description: "Live horses, asses, mules and hinnies"},
		{Code: "010110", Description: "Pure-bred breeding horses"},
	})
	if err != nil {
		b.Fatal(err)
	}
	v := New(cat)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inputs := []string{"010110", "0101", "abc", "9999"}
		v.Validate(inputs[i%len(inputs)])
	}
}
