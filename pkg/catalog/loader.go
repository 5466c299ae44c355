package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"hsnserve/internal/utils"

	"github.com/charmbracelet/log"
)

// Column name fragments tried in order when detecting the code and
// description columns of a master-data file.
var (
	codeColumnHints = []string{"hsn", "code"}
	descColumnHints = []string{"description", "desc", "product", "item", "goods"}
)

// LoadCSV reads HSN master data from a CSV file with a header row, detects
// the code and description columns by name, cleans each cell and drops rows
// that would violate catalog invariants (missing values, duplicate codes).
// The surviving rows are returned in file order, ready for New.
func LoadCSV(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open master data: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read master data: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("master data %s has no data rows", path)
	}

	codeCol, descCol, err := detectColumns(records[0])
	if err != nil {
		return nil, err
	}
	log.Debugf("Detected columns: code=%d desc=%d", codeCol, descCol)

	var entries []Entry
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range records[1:] {
		if codeCol >= len(row) || descCol >= len(row) {
			skipped++
			continue
		}
		code := strings.ReplaceAll(strings.TrimSpace(row[codeCol]), " ", "")
		desc := strings.TrimSpace(row[descCol])

		if code == "" || desc == "" {
			skipped++
			continue
		}
		if !utils.IsOnlyDigits(code) {
			log.Warnf("Row %d: code %q is not numeric, skipping", i+2, code)
			skipped++
			continue
		}
		if seen[code] {
			log.Debugf("Row %d: duplicate code %q, keeping first occurrence", i+2, code)
			skipped++
			continue
		}

		seen[code] = true
		entries = append(entries, Entry{Code: code, Description: desc})
	}

	if skipped > 0 {
		log.Warnf("Skipped %d unusable rows out of %d", skipped, len(records)-1)
	}
	log.Debugf("Loaded %d HSN codes from %s", len(entries), path)

	return entries, nil
}

// detectColumns finds the code and description columns from header names.
// Matching is substring based so variants like "HSN Code", "HSN_Code" or
// "Product Description" all resolve.
func detectColumns(header []string) (int, int, error) {
	codeCol, descCol := -1, -1

	for _, hint := range codeColumnHints {
		for i, name := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(name)), hint) {
				codeCol = i
				break
			}
		}
		if codeCol >= 0 {
			break
		}
	}

	for _, hint := range descColumnHints {
		for i, name := range header {
			if i == codeCol {
				continue
			}
			if strings.Contains(strings.ToLower(strings.TrimSpace(name)), hint) {
				descCol = i
				break
			}
		}
		if descCol >= 0 {
			break
		}
	}

	if codeCol < 0 || descCol < 0 {
		return -1, -1, fmt.Errorf("could not detect code and description columns in header %v", header)
	}
	return codeCol, descCol, nil
}
