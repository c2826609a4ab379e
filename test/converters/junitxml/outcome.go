package junitxml

import "github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"

// JUnit has no outcome attribute, the outcome is the kind of the child element of the test case.
const (
	outcomePassed  = "passed"
	outcomeFailure = "failure"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
	outcomeSkipped = "skipped"
)

const timeoutErrorType = "Timeout"

var outcomeByResult = map[testreport.TestResult]string{
	testreport.Passed:       outcomePassed,
	testreport.Failed:       outcomeFailure,
	testreport.Skipped:      outcomeSkipped,
	testreport.Hang:         outcomeTimeout,
	testreport.Inconclusive: outcomeSkipped,
	testreport.Error:        outcomeError,
	testreport.NoRun:        outcomeSkipped,
}

var resultByOutcome = map[string]testreport.TestResult{
	outcomePassed:  testreport.Passed,
	outcomeFailure: testreport.Failed,
	outcomeError:   testreport.Error,
	outcomeTimeout: testreport.Hang,
	outcomeSkipped: testreport.Skipped,
}

func encodeOutcome(result testreport.TestResult) string {
	if outcome, ok := outcomeByResult[result]; ok {
		return outcome
	}
	return outcomeSkipped
}

func decodeOutcome(outcome string) testreport.TestResult {
	if result, ok := resultByOutcome[outcome]; ok {
		return result
	}
	return testreport.Skipped
}

// nativeOutcome reads the outcome from the child elements, failure wins over error and skipped.
func nativeOutcome(tc TestCase) string {
	switch {
	case tc.Failure != nil:
		return outcomeFailure
	case tc.Error != nil && tc.Error.Type == timeoutErrorType:
		return outcomeTimeout
	case tc.Error != nil:
		return outcomeError
	case tc.Skipped != nil:
		return outcomeSkipped
	}
	return outcomePassed
}
