package xunit

import "github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"

const (
	resultPass   = "Pass"
	resultFail   = "Fail"
	resultSkip   = "Skip"
	resultNotRun = "NotRun"
)

var outcomeByResult = map[testreport.TestResult]string{
	testreport.Passed:       resultPass,
	testreport.Failed:       resultFail,
	testreport.Skipped:      resultSkip,
	testreport.Hang:         resultFail,
	testreport.Inconclusive: resultFail,
	testreport.Error:        resultFail,
	testreport.NoRun:        resultNotRun,
}

var resultByOutcome = map[string]testreport.TestResult{
	resultPass:   testreport.Passed,
	resultFail:   testreport.Failed,
	resultSkip:   testreport.Skipped,
	resultNotRun: testreport.NoRun,
}

func encodeOutcome(result testreport.TestResult) string {
	if outcome, ok := outcomeByResult[result]; ok {
		return outcome
	}
	return resultSkip
}

func decodeOutcome(outcome string) testreport.TestResult {
	if result, ok := resultByOutcome[outcome]; ok {
		return result
	}
	return testreport.Skipped
}
