package nunit

import (
	"strings"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
)

const (
	resultPassed       = "Passed"
	resultFailed       = "Failed"
	resultSkipped      = "Skipped"
	resultInconclusive = "Inconclusive"
	resultWarning      = "Warning"

	labelIgnored  = "Ignored"
	labelTimeout  = "Timeout"
	labelError    = "Error"
	labelInvalid  = "Invalid"
	labelExplicit = "Explicit"
)

// outcome is the (result, label) pair of an NUnit 3 test case.
type outcome struct {
	Result string
	Label  string
}

var outcomeByResult = map[testreport.TestResult]outcome{
	testreport.Passed:       {Result: resultPassed},
	testreport.Failed:       {Result: resultFailed},
	testreport.Skipped:      {Result: resultSkipped, Label: labelIgnored},
	testreport.Hang:         {Result: resultFailed, Label: labelTimeout},
	testreport.Inconclusive: {Result: resultInconclusive},
	testreport.Error:        {Result: resultFailed, Label: labelError},
	testreport.NoRun:        {Result: resultSkipped, Label: labelExplicit},
}

// resultByOutcome holds the labelled outcomes, resultByName the rest.
var resultByOutcome = map[outcome]testreport.TestResult{
	{Result: resultFailed, Label: labelError}:     testreport.Error,
	{Result: resultFailed, Label: labelInvalid}:   testreport.Error,
	{Result: resultFailed, Label: labelTimeout}:   testreport.Hang,
	{Result: resultSkipped, Label: labelExplicit}: testreport.NoRun,
}

// resultByName also knows the NUnit 2 result values.
var resultByName = map[string]testreport.TestResult{
	resultPassed:       testreport.Passed,
	resultWarning:      testreport.Passed,
	resultFailed:       testreport.Failed,
	resultSkipped:      testreport.Skipped,
	resultInconclusive: testreport.Inconclusive,
	"Success":          testreport.Passed,
	"Failure":          testreport.Failed,
	"Error":            testreport.Error,
	"Ignored":          testreport.Skipped,
	"NotRunnable":      testreport.NoRun,
	"Cancelled":        testreport.Error,
}

func encodeOutcome(result testreport.TestResult) outcome {
	if o, ok := outcomeByResult[result]; ok {
		return o
	}
	return outcome{Result: resultSkipped}
}

func decodeOutcome(o outcome) testreport.TestResult {
	if result, ok := resultByOutcome[o]; ok {
		return result
	}
	if result, ok := resultByName[o.Result]; ok {
		return result
	}
	return testreport.Skipped
}

// runResult is the overall result of a run or a suite.
func runResult(summary testreport.Summary) string {
	switch {
	case summary.Failed+summary.Error+summary.Hang > 0:
		return resultFailed
	case summary.Inconclusive > 0:
		return resultInconclusive
	case summary.Passed == 0 && summary.Total > 0:
		return resultSkipped
	}
	return resultPassed
}

func isTestFixture(suiteType string) bool {
	return strings.EqualFold(suiteType, "TestFixture")
}
