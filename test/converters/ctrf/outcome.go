package ctrf

import "github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"

const (
	statusPassed  = "passed"
	statusFailed  = "failed"
	statusSkipped = "skipped"
	statusPending = "pending"
	statusOther   = "other"
)

var outcomeByResult = map[testreport.TestResult]string{
	testreport.Passed:       statusPassed,
	testreport.Failed:       statusFailed,
	testreport.Skipped:      statusSkipped,
	testreport.Hang:         statusFailed,
	testreport.Inconclusive: statusOther,
	testreport.Error:        statusFailed,
	testreport.NoRun:        statusPending,
}

var resultByOutcome = map[string]testreport.TestResult{
	statusPassed:  testreport.Passed,
	statusFailed:  testreport.Failed,
	statusSkipped: testreport.Skipped,
	statusPending: testreport.NoRun,
	statusOther:   testreport.Inconclusive,
}

func encodeOutcome(result testreport.TestResult) string {
	if status, ok := outcomeByResult[result]; ok {
		return status
	}
	return statusSkipped
}

func decodeOutcome(status string) testreport.TestResult {
	if result, ok := resultByOutcome[status]; ok {
		return result
	}
	return testreport.Skipped
}
