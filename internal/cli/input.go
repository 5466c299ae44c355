// Package cli handles cmd line input for DBG and testing the validation and suggestion engines
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"hsnserve/internal/utils"
	"hsnserve/pkg/catalog"
	"hsnserve/pkg/suggest"
	"hsnserve/pkg/validate"

	"github.com/charmbracelet/log"
)

// InputHandler processes user input from stdin. Lines starting with a colon
// run commands (:v validates codes, :children lists a subtree, :summary
// prints catalog shape); any other line is treated as a product description
// and answered with ranked suggestions.
type InputHandler struct {
	validator    *validate.Validator
	engine       *suggest.Engine
	cat          *catalog.Catalog
	suggestLimit int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(v *validate.Validator, e *suggest.Engine, cat *catalog.Catalog, limit int) *InputHandler {
	return &InputHandler{
		validator:    v,
		engine:       e,
		cat:          cat,
		suggestLimit: limit,
	}
}

// Start begins the interface loop. It continuously prompts for input, reads a
// line from stdin, and passes the trimmed input for processing. Loop
// terminates if an error occurs while reading from stdin.
func (h *InputHandler) Start() error {
	log.Print("hsnserve CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a product description for suggestions, ':v CODE...' to validate (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput routes one input line to a command or the suggestion engine.
func (h *InputHandler) handleInput(line string) {
	switch {
	case strings.HasPrefix(line, ":v "):
		h.handleValidate(strings.Fields(line[3:]))
	case strings.HasPrefix(line, ":children "):
		h.handleChildren(strings.TrimSpace(line[10:]))
	case line == ":summary":
		h.handleSummary()
	case strings.HasPrefix(line, ":"):
		log.Errorf("Unknown command: %s", line)
	default:
		h.handleSuggest(line)
	}
}

func (h *InputHandler) handleValidate(codes []string) {
	if len(codes) == 0 {
		log.Error("Usage: :v CODE [CODE...]")
		return
	}
	for _, result := range h.validator.ValidateAll(codes) {
		if result.OverallValid {
			log.Printf("%-10s VALID    %s", result.CleanedCode, result.Description)
			continue
		}
		switch {
		case !result.FormatValid:
			log.Printf("%-10s INVALID  %s", result.InputCode, result.Err)
		case !result.Exists:
			log.Printf("%-10s INVALID  code not in catalog", result.CleanedCode)
		default:
			log.Printf("%-10s INVALID  missing parents: %s", result.CleanedCode, strings.Join(result.MissingParents, ", "))
		}
	}
}

func (h *InputHandler) handleSuggest(query string) {
	start := time.Now()
	explained := h.engine.SuggestWithExplanation(query, h.suggestLimit)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(explained.Suggestions) == 0 {
		log.Warnf("No suggestions found for: '%s'", query)
		return
	}

	log.Printf("Found %d suggestions:", len(explained.Suggestions))
	for i, s := range explained.Suggestions {
		clCode := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Code)
		log.Printf("%2d. %-12s %-50s (score: %.3f, %s)", i+1, clCode, s.Description, s.Score, s.Confidence)
	}
	if len(explained.KeyTerms) > 0 {
		log.Printf("key terms: %s", strings.Join(explained.KeyTerms, ", "))
	}
}

func (h *InputHandler) handleChildren(code string) {
	children := h.cat.Children(code)
	if len(children) == 0 {
		log.Warnf("No codes nested under '%s'", code)
		return
	}
	log.Printf("%d codes under %s:", len(children), code)
	for _, e := range children {
		log.Printf("  %-10s %s", e.Code, e.Description)
	}
}

func (h *InputHandler) handleSummary() {
	summary := h.cat.Summarize()
	log.Printf("Total codes: %s", utils.FormatWithCommas(summary.TotalCodes))
	for _, l := range []int{2, 4, 6, 8} {
		if n, ok := summary.LengthCounts[l]; ok {
			log.Printf("  %d-digit: %s", l, utils.FormatWithCommas(n))
		}
	}
}
