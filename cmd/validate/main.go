// Command validate checks published SHEF and CSV files offline. Every body
// line must parse and re-encode to the same bytes, headers must match the
// format and no line may repeat.
//
// Usage:
//
//	go run ./cmd/validate incoming/snotel_scraped_HOURLY.20241101_151000.shef
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/snotel-shef-etl/internal/adapter/snapshot"
	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/spf13/afero"
)

var shefHeaderRe = regexp.MustCompile(`^TTAA00 KPTR \d{6}$`)

// phase tracks pass/fail for one checked file.
type phase struct {
	name   string
	lines  int
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s FILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(snapshot.NewStore(afero.NewOsFs()), flag.Args()))
}

func run(store *snapshot.Store, paths []string) int {
	fmt.Println("=== SNOTEL SHEF File Validation ===")
	fmt.Println()

	var phases []*phase
	for _, path := range paths {
		lines, err := store.ReadLines(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		phases = append(phases, checkFile(path, lines))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-60s %6d lines  %s\n", p.name, p.lines, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// checkFile picks the format from the file extension.
func checkFile(path string, lines []string) *phase {
	p := &phase{name: filepath.Base(path), lines: len(lines)}
	switch domain.Format(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case domain.FormatSHEF:
		checkSHEF(p, lines)
	case domain.FormatCSV:
		checkCSV(p, lines)
	default:
		p.errorf("unknown extension %q", filepath.Ext(path))
	}
	return p
}

func checkSHEF(p *phase, lines []string) {
	if len(lines) < 2 {
		p.errorf("missing header: want 2 lines, got %d", len(lines))
		return
	}
	if !shefHeaderRe.MatchString(lines[0]) {
		p.errorf("line 1: bad routing header %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) == "" {
		p.errorf("line 2: empty product id")
	}

	seen := make(map[string]int)
	for i, line := range lines[2:] {
		n := i + 3
		if first, dup := seen[line]; dup {
			p.errorf("line %d: duplicate of line %d", n, first)
			continue
		}
		seen[line] = n

		parsed, err := domain.ParseBulletinLine(line)
		if err != nil {
			p.errorf("line %d: %v", n, err)
			continue
		}
		enc, err := domain.NewEncoder(domain.FormatSHEF, domain.EncoderOptions{
			SourceCode: parsed.SourceCode,
			Duration:   domain.DurationFromCode(parsed.DurationCode),
		})
		if err != nil {
			p.errorf("line %d: %v", n, err)
			continue
		}
		if again, _ := enc.EncodeRecord(parsed.Record); again != line {
			p.errorf("line %d: re-encodes as %q", n, again)
		}
	}
}

func checkCSV(p *phase, lines []string) {
	if len(lines) == 0 {
		p.errorf("empty file")
		return
	}
	if want := strings.Join(domain.CSVColumns, ","); lines[0] != want {
		p.errorf("line 1: header %q, want %q", lines[0], want)
	}

	seen := make(map[string]int)
	for i, line := range lines[1:] {
		n := i + 2
		if first, dup := seen[line]; dup {
			p.errorf("line %d: duplicate of line %d", n, first)
			continue
		}
		seen[line] = n

		fields := strings.Split(line, ",")
		if len(fields) != len(domain.CSVColumns) {
			p.errorf("line %d: %d fields, want %d", n, len(fields), len(domain.CSVColumns))
			continue
		}
		if fields[0] == "" {
			p.errorf("line %d: empty shefId", n)
		}
		if _, err := time.Parse("2006-01-02 15:04:05", fields[1]); err != nil {
			p.errorf("line %d: bad utcTime %q", n, fields[1])
		}
		if len(fields[2]) != 2 {
			p.errorf("line %d: bad PE %q", n, fields[2])
		}
		if v, err := strconv.ParseFloat(fields[3], 64); err != nil {
			p.errorf("line %d: bad value %q", n, fields[3])
		} else if domain.FormatValue(v) != fields[3] {
			p.errorf("line %d: value %q is not in canonical form", n, fields[3])
		}
		switch domain.Duration(fields[4]) {
		case domain.Hourly, domain.Daily:
		default:
			p.errorf("line %d: bad duration %q", n, fields[4])
		}
	}
}
