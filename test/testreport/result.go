package testreport

import "strings"

// TestResult is the canonical outcome of a test case run.
type TestResult int

// Keep the zero value as Passed, a case without outcome information passed.
const (
	Passed TestResult = iota
	Failed
	Skipped
	Hang
	Inconclusive
	Error
	NoRun
)

var resultNames = map[TestResult]string{
	Passed:       "Passed",
	Failed:       "Failed",
	Skipped:      "Skipped",
	Hang:         "Hang",
	Inconclusive: "Inconclusive",
	Error:        "Error",
	NoRun:        "NoRun",
}

// TestResults lists every TestResult value.
func TestResults() []TestResult {
	return []TestResult{Passed, Failed, Skipped, Hang, Inconclusive, Error, NoRun}
}

func (r TestResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "Unknown"
}

// ParseTestResult parses a canonical result name, it does not know about any wire format vocabulary.
func ParseTestResult(s string) (TestResult, bool) {
	for result, name := range resultNames {
		if strings.EqualFold(name, s) {
			return result, true
		}
	}
	return Skipped, false
}
