package domain

import (
	"regexp"
	"strconv"
	"strings"

	"gooze.dev/pkg/evomut/internal/adapter"
	m "gooze.dev/pkg/evomut/internal/model"
)

// AggregateTestName names the synthetic result produced when no per-test
// lines are recognized in the test command output.
const AggregateTestName = "all_tests"

// Output formats understood by NewOutputParser.
const (
	FormatGoTest  = "gotest"
	FormatLibtest = "libtest"
)

// OutputParser turns the raw output of one test command run into per-test
// results. Parsers never fail: unrecognized output degrades to a single
// aggregate result.
type OutputParser interface {
	Parse(run adapter.TestRun) []m.TestResult
}

// NewOutputParser returns the parser registered for format.
func NewOutputParser(format string) (OutputParser, error) {
	switch format {
	case FormatGoTest, "":
		return GoTestParser{}, nil
	case FormatLibtest:
		return LibtestParser{}, nil
	default:
		return nil, validationError("unknown test output format %q", format)
	}
}

// LibtestParser recognizes "test name ... ok" style lines. Any line holding
// both "test" and "..." is split on "...": the left side minus a "test "
// prefix names the test, and the test passed when the right side is "ok".
type LibtestParser struct{}

// Parse implements OutputParser.
func (LibtestParser) Parse(run adapter.TestRun) []m.TestResult {
	var results []m.TestResult

	for _, line := range strings.Split(run.Combined(), "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, "test") || !strings.Contains(line, "...") {
			continue
		}

		parts := strings.Split(line, "...")
		name := strings.ReplaceAll(strings.TrimSpace(parts[0]), "test ", "")
		passed := strings.TrimSpace(parts[1]) == "ok"

		result := m.TestResult{Name: name, Passed: passed}
		if !passed {
			result.Error = run.Stderr
		}

		results = append(results, result)
	}

	if len(results) == 0 {
		return []m.TestResult{aggregateResult(run, run.Stderr == "")}
	}

	return results
}

var (
	goTestLine    = regexp.MustCompile(`^\s*--- (PASS|FAIL|SKIP): (\S+) \(([0-9.]+)s\)`)
	goTestRun     = regexp.MustCompile(`^=== (?:RUN|CONT|PAUSE|NAME)\s+(\S+)`)
	goTestPackage = regexp.MustCompile(`^(ok|FAIL|\?)\s+(\S+)`)
)

// GoTestParser recognizes the "--- PASS: TestName (0.01s)" lines printed by
// go test. Skipped tests count as passed. Indented output logged while a test
// runs, or printed right after its FAIL header, becomes the failure message.
//
// A "FAIL\t<package>" line with no failed test above it (build or setup
// failure, panic, test binary timeout) becomes a failed result named after
// the package. A non-zero exit status with no failed result adds a failed
// aggregate result.
type GoTestParser struct{}

// Parse implements OutputParser.
func (GoTestParser) Parse(run adapter.TestRun) []m.TestResult {
	var (
		results     []m.TestResult
		failing     = -1
		message     []string
		pendingName string
		pending     []string
		pkgFailed   bool
	)

	flush := func() {
		if failing >= 0 && len(message) > 0 {
			results[failing].Error = strings.Join(message, "\n")
		}

		failing = -1
		message = nil
	}

	for _, line := range strings.Split(run.Combined(), "\n") {
		line = strings.TrimRight(line, "\r")

		if match := goTestLine.FindStringSubmatch(line); match != nil {
			flush()

			result := m.TestResult{
				Name:       match[2],
				Passed:     match[1] != "FAIL",
				DurationMs: secondsToMillis(match[3]),
			}
			results = append(results, result)

			if !result.Passed {
				pkgFailed = true
				failing = len(results) - 1
				if result.Name == pendingName {
					message = append(message, pending...)
				}
			}

			if result.Name == pendingName {
				pendingName, pending = "", nil
			}

			continue
		}

		if match := goTestRun.FindStringSubmatch(line); match != nil {
			flush()

			pendingName, pending = match[1], nil

			continue
		}

		if match := goTestPackage.FindStringSubmatch(line); match != nil {
			flush()

			if match[1] == "FAIL" && !pkgFailed {
				results = append(results, packageFailure(run, match[2], line))
			}

			pkgFailed = false
			pendingName, pending = "", nil

			continue
		}

		if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			switch {
			case failing >= 0:
				message = append(message, strings.TrimSpace(line))
			case pendingName != "":
				pending = append(pending, strings.TrimSpace(line))
			}

			continue
		}

		flush()
	}

	flush()

	if len(results) == 0 {
		return []m.TestResult{aggregateResult(run, run.Stderr == "" && run.ExitCode == 0)}
	}

	if run.ExitCode != 0 && !anyFailed(results) {
		results = append(results, aggregateResult(run, false))
	}

	return results
}

func packageFailure(run adapter.TestRun, pkg, line string) m.TestResult {
	message := strings.TrimSpace(run.Stderr)
	if message == "" {
		message = line
	}

	return m.TestResult{Name: pkg, Passed: false, Error: message}
}

func anyFailed(results []m.TestResult) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}

	return false
}

func aggregateResult(run adapter.TestRun, passed bool) m.TestResult {
	result := m.TestResult{Name: AggregateTestName, Passed: passed}
	if !passed {
		result.Error = run.Stderr
		if result.Error == "" {
			result.Error = run.Stdout
		}
	}

	return result
}

func secondsToMillis(s string) uint64 {
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || seconds < 0 {
		return 0
	}

	return uint64(seconds*1000 + 0.5)
}
