/*
Package catalog holds the immutable reference data for HSN classification.

A Catalog maps HSN codes to their goods descriptions and keeps the entries in
their original load order so that listings and similarity indices stay
reproducible across runs. It is built once at startup and never mutated
afterwards, which makes every method safe for unlimited concurrent callers.
*/
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"hsnserve/internal/utils"

	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrDataIntegrity marks malformed reference data detected at construction.
// It is fatal: the catalog refuses to build rather than repair bad input.
var ErrDataIntegrity = errors.New("catalog data integrity")

// Entry is one HSN code with its goods description.
type Entry struct {
	Code        string
	Description string
}

// Summary reports aggregate shape of the loaded reference data.
type Summary struct {
	TotalCodes   int
	LengthCounts map[int]int
}

// Catalog is the read-only code → description store plus derived indices.
type Catalog struct {
	entries  []Entry
	byCode   map[string]int // code -> position in entries
	codeTrie *patricia.Trie // codes as prefixes, item = entry position
	lengths  map[int]int
}

// New builds a Catalog from already-cleaned entries. Codes must be unique,
// digits-only and paired with a non-empty description; any violation fails
// with an ErrDataIntegrity wrapped error.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries:  make([]Entry, 0, len(entries)),
		byCode:   make(map[string]int, len(entries)),
		codeTrie: patricia.NewTrie(),
		lengths:  make(map[int]int),
	}

	for i, e := range entries {
		code := strings.TrimSpace(e.Code)
		desc := strings.TrimSpace(e.Description)

		if code == "" {
			return nil, fmt.Errorf("%w: entry %d has empty code", ErrDataIntegrity, i)
		}
		if !utils.IsOnlyDigits(code) {
			return nil, fmt.Errorf("%w: code %q is not digits-only", ErrDataIntegrity, code)
		}
		if desc == "" {
			return nil, fmt.Errorf("%w: code %q has empty description", ErrDataIntegrity, code)
		}
		if _, dup := c.byCode[code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrDataIntegrity, code)
		}

		pos := len(c.entries)
		c.entries = append(c.entries, Entry{Code: code, Description: desc})
		c.byCode[code] = pos
		c.codeTrie.Insert(patricia.Prefix(code), pos)
		c.lengths[len(code)]++
	}

	return c, nil
}

// Lookup returns the description for a code, O(1).
func (c *Catalog) Lookup(code string) (string, bool) {
	pos, ok := c.byCode[code]
	if !ok {
		return "", false
	}
	return c.entries[pos].Description, true
}

// Has reports whether a code is part of the reference data.
func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns all entries in load order. Callers must not modify
// the returned slice.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Entry returns the entry at a given load position.
func (c *Catalog) Entry(pos int) Entry {
	return c.entries[pos]
}

// Descriptions returns every description in load order, one per entry.
func (c *Catalog) Descriptions() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Description
	}
	return out
}

// Summarize returns the total code count and the code-length histogram.
func (c *Catalog) Summarize() Summary {
	counts := make(map[int]int, len(c.lengths))
	for l, n := range c.lengths {
		counts[l] = n
	}
	return Summary{TotalCodes: len(c.entries), LengthCounts: counts}
}

// SearchDescriptions scans descriptions for a case-insensitive substring and
// returns matches in load order, capped at limit (0 means no cap).
func (c *Catalog) SearchDescriptions(substr string, limit int) []Entry {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return nil
	}
	needle := strings.ToLower(substr)

	var matches []Entry
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Description), needle) {
			matches = append(matches, e)
			if limit > 0 && len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// Children returns every entry whose code strictly extends the given prefix,
// in code order as visited by the trie.
func (c *Catalog) Children(code string) []Entry {
	var children []Entry
	_ = c.codeTrie.VisitSubtree(patricia.Prefix(code), func(p patricia.Prefix, item patricia.Item) error {
		if string(p) == code {
			return nil
		}
		children = append(children, c.entries[item.(int)])
		return nil
	})
	return children
}
