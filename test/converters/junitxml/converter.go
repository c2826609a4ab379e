// Package junitxml converts JUnit XML documents.
//
// Both a testsuites and a single testsuite root element are accepted, nested test suites are flattened.
// JUnit has no identifiers and no place for inner results, both travel in the extension section.
package junitxml

import (
	"strconv"
	"strings"
	"time"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/timeutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/pkg/errors"
)

// Converter reads and writes JUnit XML documents. It holds no state.
type Converter struct{}

func traitSlot(t testreport.TraitType) testreport.Slot {
	switch t {
	case testreport.TraitIdentifier, testreport.TraitName, testreport.TraitResult, testreport.TraitDuration,
		testreport.TraitClassName, testreport.TraitAssembly, testreport.TraitMethod, testreport.TraitInstanceID,
		testreport.TraitComputer:
		return testreport.SlotField
	case testreport.TraitConsoleOut, testreport.TraitConsoleErr, testreport.TraitFailureMessage,
		testreport.TraitCallStack, testreport.TraitCategory, testreport.TraitPriority:
		return testreport.SlotNative
	case testreport.TraitInstanceName, testreport.TraitCustom:
		return testreport.SlotExtension
	}
	return testreport.SlotExtension
}

// Serialize ...
func (c Converter) Serialize(run *testreport.TestRun) ([]byte, error) {
	if err := testreport.Prepare(run); err != nil {
		return nil, err
	}

	report := TestReport{
		Name:      run.Name,
		Timestamp: timeutil.FormatTimestamp(run.Started),
		Extensions: extension.ForScope(run.Traits).WithFields(extension.Fields{
			ID:       run.ID,
			User:     run.RunUser,
			Finished: run.Finished,
		}).Compact(),
	}

	var total time.Duration
	for i, suite := range run.Suites {
		testSuite, suiteTime := convertSuite(i, suite)
		report.TestSuites = append(report.TestSuites, testSuite)
		report.Tests += testSuite.Tests
		report.Failures += testSuite.Failures
		report.Errors += testSuite.Errors
		report.Skipped += testSuite.Skipped
		total += suiteTime
	}
	report.Time = timeutil.FormatSeconds(&total)

	data, err := xmlutil.Marshal(report)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write JUnit XML document")
	}
	return data, nil
}

func convertSuite(idx int, suite testreport.TestSuite) (TestSuite, time.Duration) {
	summary := testreport.Summarize(suite.TestCases)
	testSuite := TestSuite{
		ID:         strconv.Itoa(idx),
		Name:       suite.Name,
		Tests:      xmlutil.Count(summary.Total),
		Failures:   xmlutil.Count(summary.Failed),
		Errors:     xmlutil.Count(summary.Error + summary.Hang),
		Skipped:    xmlutil.Count(summary.Skipped + summary.Inconclusive + summary.NoRun),
		Extensions: extension.ForScope(suite.Traits).WithFields(extension.Fields{ID: suite.ID}).Compact(),
	}

	var total time.Duration
	for _, tc := range suite.TestCases {
		if tc.Duration != nil {
			total += *tc.Duration
		}
		testSuite.TestCases = append(testSuite.TestCases, convertTestCase(tc))
	}
	testSuite.Time = timeutil.FormatSeconds(&total)

	return testSuite, total
}

func convertTestCase(tc testreport.TestCaseRun) TestCase {
	native, static, instance := testreport.PartitionTraits(tc.Traits, traitSlot)
	outcome := encodeOutcome(tc.Result)

	testCase := TestCase{
		Name:       tc.Name,
		ClassName:  tc.ClassName,
		Time:       timeutil.FormatSeconds(tc.Duration),
		Properties: nativeProperties(native),
		SystemOut:  testreport.JoinTraits(native, testreport.TraitConsoleOut),
		SystemErr:  testreport.JoinTraits(native, testreport.TraitConsoleErr),
		Extensions: extension.New(static, instance, tc.Attachments).
			WithResult(tc.Result, decodeOutcome(outcome)).
			WithFields(extension.Fields{
				ID:         tc.ID,
				InstanceID: tc.InstanceID,
				Method:     tc.MethodName,
				Assembly:   tc.Assembly,
				Computer:   tc.ComputerName,
				Started:    tc.Started,
				Finished:   tc.Finished,
			}).
			WithInnerResults(tc.InnerResults).
			Compact(),
	}

	message := testreport.JoinTraits(native, testreport.TraitFailureMessage)
	stackTrace := testreport.JoinTraits(native, testreport.TraitCallStack)
	switch outcome {
	case outcomeFailure:
		testCase.Failure = &Failure{Message: message, Value: stackTrace}
	case outcomeError:
		testCase.Error = &Error{Message: message, Value: stackTrace}
	case outcomeTimeout:
		testCase.Error = &Error{Message: message, Type: timeoutErrorType, Value: stackTrace}
	case outcomeSkipped:
		testCase.Skipped = &Skipped{Message: message}
	}

	return testCase
}

func nativeProperties(native []testreport.Trait) *Properties {
	var properties Properties
	for _, trait := range native {
		if trait.Type == testreport.TraitCategory || trait.Type == testreport.TraitPriority {
			properties.Property = append(properties.Property, Property{Name: trait.Type.String(), Value: trait.Value})
		}
	}
	if len(properties.Property) == 0 {
		return nil
	}
	return &properties
}

// Deserialize ...
func (c Converter) Deserialize(data []byte) (*testreport.TestRun, error) {
	report, err := parseTestReport(data)
	if err != nil {
		return nil, err
	}

	fields := report.Extensions.Fields()
	run := &testreport.TestRun{
		ID:       fields.ID,
		Name:     report.Name,
		RunUser:  fields.User,
		Started:  timeutil.ParseTimestamp(report.Timestamp),
		Finished: fields.Finished,
		Traits:   report.Extensions.Traits(),
	}
	if run.ID == "" {
		run.ID = testreport.NewID()
	}

	for _, suite := range flatten(report.TestSuites) {
		run.Suites = append(run.Suites, testSuite(suite))
	}

	return run, nil
}

// parseTestReport accepts both testsuites and testsuite root elements.
func parseTestReport(data []byte) (TestReport, error) {
	var report TestReport
	testSuitesError := xmlutil.Unmarshal(data, &report)
	if testSuitesError == nil {
		return report, nil
	}

	var suite TestSuite
	if testSuiteError := xmlutil.Unmarshal(data, &suite); testSuiteError != nil {
		return TestReport{}, errors.Errorf("failed to parse JUnit XML document: as testsuites: %s, as testsuite: %s", testSuitesError, testSuiteError)
	}

	return TestReport{TestSuites: []TestSuite{suite}}, nil
}

// flatten returns the suites holding test cases, depth first. Suites only grouping other suites are skipped.
func flatten(suites []TestSuite) []TestSuite {
	var flat []TestSuite
	for _, suite := range suites {
		if len(suite.TestCases) > 0 || len(suite.TestSuites) == 0 {
			flat = append(flat, suite)
		}
		flat = append(flat, flatten(suite.TestSuites)...)
	}
	return flat
}

func testSuite(suite TestSuite) testreport.TestSuite {
	fields := suite.Extensions.Fields()
	s := testreport.TestSuite{
		ID:     fields.ID,
		Name:   suite.Name,
		Traits: append(propertyTraits(suite.Properties), suite.Extensions.Traits()...),
	}
	if s.ID == "" {
		s.ID = testreport.NewID()
	}

	for _, tc := range suite.TestCases {
		testCase := testCaseRun(tc)
		if testCase.ComputerName == "" {
			testCase.ComputerName = suite.Hostname
		}
		s.TestCases = append(s.TestCases, testCase)
	}
	return s
}

func testCaseRun(tc TestCase) testreport.TestCaseRun {
	fields := tc.Extensions.Fields()
	testCase := testreport.TestCaseRun{
		ID:           fields.ID,
		Name:         tc.Name,
		InstanceID:   fields.InstanceID,
		ClassName:    tc.ClassName,
		MethodName:   fields.Method,
		Assembly:     fields.Assembly,
		ComputerName: fields.Computer,
		Result:       tc.Extensions.ResolveResult(decodeOutcome(nativeOutcome(tc))),
		Started:      fields.Started,
		Finished:     fields.Finished,
		Duration:     timeutil.ParseSeconds(tc.Time),
		Attachments:  tc.Extensions.AttachmentList(),
	}
	if testCase.ID == "" {
		testCase.ID = testreport.NewID()
	}
	if testCase.InstanceID == "" {
		testCase.InstanceID = testreport.NewID()
	}

	traits := propertyTraits(tc.Properties)
	switch {
	case tc.Failure != nil:
		traits = testreport.AppendTrait(traits, testreport.TraitFailureMessage, tc.Failure.Message, testreport.Instance)
		traits = testreport.AppendTrait(traits, testreport.TraitCallStack, tc.Failure.Value, testreport.Instance)
	case tc.Error != nil:
		traits = testreport.AppendTrait(traits, testreport.TraitFailureMessage, tc.Error.Message, testreport.Instance)
		traits = testreport.AppendTrait(traits, testreport.TraitCallStack, tc.Error.Value, testreport.Instance)
	case tc.Skipped != nil:
		traits = testreport.AppendTrait(traits, testreport.TraitFailureMessage, tc.Skipped.Message, testreport.Instance)
	}
	traits = testreport.AppendTrait(traits, testreport.TraitConsoleOut, tc.SystemOut, testreport.Instance)
	traits = testreport.AppendTrait(traits, testreport.TraitConsoleErr, tc.SystemErr, testreport.Instance)
	testCase.Traits = append(traits, tc.Extensions.Traits()...)
	testCase.InnerResults = tc.Extensions.InnerResultList(testCase)

	return testCase
}

// propertyTraits maps JUnit properties to traits, well-known names become native traits.
func propertyTraits(properties *Properties) []testreport.Trait {
	if properties == nil {
		return nil
	}
	var traits []testreport.Trait
	for _, property := range properties.Property {
		switch strings.ToLower(property.Name) {
		case "category":
			traits = append(traits, testreport.NewTrait(testreport.TraitCategory, property.Value, testreport.Static))
		case "priority":
			traits = append(traits, testreport.NewTrait(testreport.TraitPriority, property.Value, testreport.Static))
		default:
			traits = append(traits, testreport.NewCustomTrait(property.Name, property.Value, testreport.Static))
		}
	}
	return traits
}
