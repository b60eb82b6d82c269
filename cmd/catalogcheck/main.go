// Command catalogcheck verifies a generated city.json: it parses, every
// weather code is well formed, names are present, and all records share one
// shape (plain or validated).
//
// Usage:
//
//	go run ./cmd/catalogcheck -catalog city.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/cityinfo-etl/internal/domain"
)

// weatherCodeLen is len("101") plus a six digit area code.
const weatherCodeLen = len(domain.WeatherCodePrefix) + 6

var (
	plainFields     = []string{"id", "name"}
	validatedFields = []string{"city", "id", "name", "province"}
)

// phase tracks pass/fail for a check phase. Warnings never fail a phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("catalog", "city.json", "path to the generated catalog")
	flag.Parse()

	if code := run(*path, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(path string, out io.Writer) int {
	fmt.Fprintf(out, "=== City Catalog Check: %s ===\n\n", path)

	records, err := loadRecords(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkWeatherCodes(records),
		checkNames(records),
		checkShape(records),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintf(out, "\nRecords: %d\n", len(records))

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		for _, w := range p.warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nCatalog OK.")
		return 0
	}
	fmt.Fprintln(out, "\nCatalog check FAILED.")
	return 1
}

// loadRecords decodes the catalog as generic objects so that unexpected
// fields and non-string values are visible to the checks.
func loadRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return records, nil
}

// ── Phase 1: weather codes ──

func checkWeatherCodes(records []map[string]any) *phase {
	p := &phase{name: "Phase 1: Weather codes"}

	seen := make(map[string]int, len(records))
	for i, rec := range records {
		id, ok := rec["id"].(string)
		if !ok {
			p.errorf("record %d: id missing or not a string", i)
			continue
		}
		if !isWeatherCode(id) {
			p.errorf("record %d: id %q is not %s followed by six digits", i, id, domain.WeatherCodePrefix)
		}
		if first, dup := seen[id]; dup {
			p.warnf("record %d: id %s duplicates record %d", i, id, first)
			continue
		}
		seen[id] = i
	}
	return p
}

func isWeatherCode(id string) bool {
	if len(id) != weatherCodeLen || !strings.HasPrefix(id, domain.WeatherCodePrefix) {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ── Phase 2: names ──

func checkNames(records []map[string]any) *phase {
	p := &phase{name: "Phase 2: Names"}

	for i, rec := range records {
		for _, field := range []string{"name", "province", "city"} {
			v, present := rec[field]
			if !present {
				if field == "name" {
					p.errorf("record %d: name missing", i)
				}
				continue
			}
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				p.errorf("record %d (%v): %s is empty or not a string", i, rec["id"], field)
			}
		}
	}
	return p
}

// ── Phase 3: shape ──

func checkShape(records []map[string]any) *phase {
	p := &phase{name: "Phase 3: Record shape"}

	var want []string
	for i, rec := range records {
		got := slices.Sorted(maps.Keys(rec))
		if !slices.Equal(got, plainFields) && !slices.Equal(got, validatedFields) {
			p.errorf("record %d: unexpected fields %v", i, got)
			continue
		}
		if want == nil {
			want = got
			continue
		}
		if !slices.Equal(got, want) {
			p.errorf("record %d: fields %v differ from first record %v", i, got, want)
		}
	}
	return p
}
