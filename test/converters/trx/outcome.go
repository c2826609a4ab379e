package trx

import "github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"

// outcomeByResult is the encode table, everything not listed is written as NotFound.
var outcomeByResult = map[testreport.TestResult]string{
	testreport.Passed:       "Passed",
	testreport.Failed:       "Failed",
	testreport.Skipped:      "Ignored",
	testreport.Hang:         "Timeout",
	testreport.Inconclusive: "Inconclusive",
}

const fallbackOutcome = "NotFound"

// resultByOutcome is the decode table. It accepts more than what the encoder writes,
// outcomes missing from it decode as Skipped.
var resultByOutcome = map[string]testreport.TestResult{
	"Passed":              testreport.Passed,
	"Completed":           testreport.Passed,
	"Warning":             testreport.Passed,
	"PassedButRunAborted": testreport.Passed,
	"Failed":              testreport.Failed,
	"Ignored":             testreport.Skipped,
	"NotRunnable":         testreport.Skipped,
	"NotExecuted":         testreport.NoRun,
	"Pending":             testreport.NoRun,
	"Timeout":             testreport.Hang,
	"Inconclusive":        testreport.Inconclusive,
	"Error":               testreport.Error,
	"NotFound":            testreport.Error,
	"InProgress":          testreport.Error,
	"Aborted":             testreport.Error,
	"Disconnected":        testreport.Error,
}

func encodeOutcome(result testreport.TestResult) string {
	if outcome, ok := outcomeByResult[result]; ok {
		return outcome
	}
	return fallbackOutcome
}

func decodeOutcome(outcome string) testreport.TestResult {
	if result, ok := resultByOutcome[outcome]; ok {
		return result
	}
	return testreport.Skipped
}

// runOutcome is the overall outcome written to the derived result summary.
func runOutcome(summary testreport.Summary) string {
	switch {
	case summary.Error > 0 || summary.Failed > 0 || summary.Hang > 0:
		return "Failed"
	case summary.Inconclusive > 0:
		return "Inconclusive"
	}
	return "Completed"
}
