/*
Package validate answers whether a candidate HSN code is well formed, present
in the catalog, and consistent with its ancestor prefixes.

HSN codes nest at fixed digit lengths: sector (2) → chapter (4) → heading (6)
→ sub-heading (8). A code is only meaningful when every coarser prefix that
contains it is itself a recognized classification, so the hierarchy check
requires each shorter prefix at lengths {2,4,6} to exist.

All checks are pure functions of the code and the immutable catalog; ill-formed
input is an expected case and is reported through result fields, never as an
error return.
*/
package validate

import (
	"fmt"
	"strings"

	"hsnserve/internal/utils"
	"hsnserve/pkg/catalog"
)

// validLengths enumerates the only legal HSN nesting depths.
var validLengths = []int{2, 4, 6, 8}

// parentLengths are the prefix lengths checked during hierarchy validation.
var parentLengths = []int{2, 4, 6}

// FormatResult reports the outcome of the format check alone.
type FormatResult struct {
	Valid       bool
	CleanedCode string
	Length      int
	Err         string
}

// ExistenceResult reports whether a cleaned code is in the catalog.
type ExistenceResult struct {
	Exists      bool
	Description string
}

// HierarchyResult reports which ancestor prefixes exist in the catalog.
type HierarchyResult struct {
	Valid          bool
	ParentCodes    []string
	ValidParents   []string
	MissingParents []string
}

// Result is the full verdict for one candidate code. It is self-contained:
// every field is populated even when validation fails early.
type Result struct {
	InputCode      string
	CleanedCode    string
	FormatValid    bool
	Exists         bool
	Description    string
	HierarchyValid bool
	ParentCodes    []string
	ValidParents   []string
	MissingParents []string
	OverallValid   bool
	Err            string
}

// Validator runs code checks against a fixed catalog.
type Validator struct {
	cat *catalog.Catalog
}

// New creates a Validator bound to the given catalog.
func New(cat *catalog.Catalog) *Validator {
	return &Validator{cat: cat}
}

// CheckFormat strips every non-digit character from the input and verifies
// the remainder is non-empty and exactly 2, 4, 6 or 8 digits long.
func (v *Validator) CheckFormat(code string) FormatResult {
	cleaned := utils.DigitsOnly(code)

	if cleaned == "" {
		return FormatResult{
			CleanedCode: cleaned,
			Err:         "HSN code must contain only numbers",
		}
	}

	lengthOK := false
	for _, l := range validLengths {
		if len(cleaned) == l {
			lengthOK = true
			break
		}
	}
	if !lengthOK {
		return FormatResult{
			CleanedCode: cleaned,
			Length:      len(cleaned),
			Err:         fmt.Sprintf("HSN code must be %s digits, got %d", joinLengths(), len(cleaned)),
		}
	}

	return FormatResult{Valid: true, CleanedCode: cleaned, Length: len(cleaned)}
}

// CheckExistence looks a cleaned code up in the catalog. Absence is a normal
// outcome, not an error; callers wanting a meaningful result should run
// CheckFormat first.
func (v *Validator) CheckExistence(cleaned string) ExistenceResult {
	desc, ok := v.cat.Lookup(cleaned)
	return ExistenceResult{Exists: ok, Description: desc}
}

// CheckHierarchy verifies that every required ancestor prefix of a cleaned
// code exists in the catalog. A 2-digit code has no ancestors and is
// trivially valid.
func (v *Validator) CheckHierarchy(cleaned string) HierarchyResult {
	if len(cleaned) <= 2 {
		return HierarchyResult{Valid: true}
	}

	var parents, valid, missing []string
	for _, l := range parentLengths {
		if len(cleaned) <= l {
			break
		}
		parent := cleaned[:l]
		parents = append(parents, parent)
		if v.cat.Has(parent) {
			valid = append(valid, parent)
		} else {
			missing = append(missing, parent)
		}
	}

	return HierarchyResult{
		Valid:          len(missing) == 0,
		ParentCodes:    parents,
		ValidParents:   valid,
		MissingParents: missing,
	}
}

// Validate runs format, existence and hierarchy checks in order and combines
// them into one verdict. A format failure short-circuits: existence and
// hierarchy are never evaluated against an ill-formed code. The call is
// deterministic and has no side effects.
func (v *Validator) Validate(code string) Result {
	format := v.CheckFormat(code)
	if !format.Valid {
		return Result{
			InputCode:   code,
			CleanedCode: format.CleanedCode,
			Err:         format.Err,
		}
	}

	cleaned := format.CleanedCode
	existence := v.CheckExistence(cleaned)
	hierarchy := v.CheckHierarchy(cleaned)

	return Result{
		InputCode:      code,
		CleanedCode:    cleaned,
		FormatValid:    true,
		Exists:         existence.Exists,
		Description:    existence.Description,
		HierarchyValid: hierarchy.Valid,
		ParentCodes:    hierarchy.ParentCodes,
		ValidParents:   hierarchy.ValidParents,
		MissingParents: hierarchy.MissingParents,
		OverallValid:   existence.Exists && hierarchy.Valid,
	}
}

// ValidateAll validates a batch of codes, preserving input order. Each result
// is independent of the other codes in the batch.
func (v *Validator) ValidateAll(codes []string) []Result {
	results := make([]Result, len(codes))
	for i, code := range codes {
		results[i] = v.Validate(code)
	}
	return results
}

func joinLengths() string {
	parts := make([]string, len(validLengths))
	for i, l := range validLengths {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ", ")
}
