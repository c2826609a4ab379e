// Package nunit converts NUnit 3 XML documents, NUnit 2 documents are read as well.
//
// Suites map to TestFixture test suites, consecutive suites of the same assembly are wrapped
// into one Assembly test suite.
package nunit

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/timeutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/pkg/errors"
)

const (
	testRunElement     = "test-run"
	testResultsElement = "test-results"

	suiteTypeAssembly = "Assembly"
	suiteTypeFixture  = "TestFixture"
)

// Converter reads and writes NUnit documents. It holds no state.
type Converter struct{}

func traitSlot(t testreport.TraitType) testreport.Slot {
	switch t {
	case testreport.TraitIdentifier, testreport.TraitName, testreport.TraitResult, testreport.TraitDuration,
		testreport.TraitClassName, testreport.TraitAssembly, testreport.TraitMethod, testreport.TraitInstanceID,
		testreport.TraitComputer:
		return testreport.SlotField
	case testreport.TraitConsoleOut, testreport.TraitFailureMessage, testreport.TraitCallStack,
		testreport.TraitCategory, testreport.TraitPriority:
		return testreport.SlotNative
	case testreport.TraitConsoleErr, testreport.TraitInstanceName, testreport.TraitCustom:
		return testreport.SlotExtension
	}
	return testreport.SlotExtension
}

// Serialize ...
func (c Converter) Serialize(run *testreport.TestRun) ([]byte, error) {
	if err := testreport.Prepare(run); err != nil {
		return nil, err
	}

	summary := run.Summary()
	doc := TestRun{
		XMLName:       xml.Name{Local: testRunElement},
		ID:            run.ID,
		Name:          run.Name,
		TestCaseCount: xmlutil.Count(summary.Total),
		Result:        runResult(summary),
		StartTime:     timeutil.FormatTimestamp(run.Started),
		EndTime:       timeutil.FormatTimestamp(run.Finished),
		Duration:      timeutil.FormatSeconds(timeutil.Between(run.Started, run.Finished)),
		Extensions:    extension.ForScope(run.Traits).WithFields(extension.Fields{User: run.RunUser}).Compact(),
	}
	setCounters(&doc.Total, &doc.Passed, &doc.Failed, &doc.Inconclusive, &doc.Skipped, summary)

	var assemblyCases [][]testreport.TestCaseRun
	for _, suite := range run.Suites {
		assemblyName := suiteAssembly(suite)

		last := len(doc.TestSuites) - 1
		if last < 0 || doc.TestSuites[last].Name != assemblyName {
			doc.TestSuites = append(doc.TestSuites, TestSuite{
				Type:     suiteTypeAssembly,
				Name:     assemblyName,
				FullName: assemblyName,
			})
			assemblyCases = append(assemblyCases, nil)
			last++
		}

		doc.TestSuites[last].TestSuites = append(doc.TestSuites[last].TestSuites, convertFixture(suite, assemblyName))
		assemblyCases[last] = append(assemblyCases[last], suite.TestCases...)
	}

	for i := range doc.TestSuites {
		assembly := &doc.TestSuites[i]
		assemblySummary := testreport.Summarize(assemblyCases[i])
		assembly.TestCaseCount = xmlutil.Count(assemblySummary.Total)
		assembly.Result = runResult(assemblySummary)
		assembly.Duration = sumDurations(assemblyCases[i])
		setCounters(&assembly.Total, &assembly.Passed, &assembly.Failed, &assembly.Inconclusive, &assembly.Skipped, assemblySummary)
	}

	data, err := xmlutil.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write NUnit document")
	}
	return data, nil
}

func setCounters(total, passed, failed, inconclusive, skipped *xmlutil.Count, summary testreport.Summary) {
	*total = xmlutil.Count(summary.Total)
	*passed = xmlutil.Count(summary.Passed)
	*failed = xmlutil.Count(summary.Failed + summary.Error + summary.Hang)
	*inconclusive = xmlutil.Count(summary.Inconclusive)
	*skipped = xmlutil.Count(summary.Skipped + summary.NoRun)
}

func sumDurations(cases []testreport.TestCaseRun) string {
	var total time.Duration
	for _, tc := range cases {
		if tc.Duration != nil {
			total += *tc.Duration
		}
	}
	return timeutil.FormatSeconds(&total)
}

// suiteAssembly returns the assembly of the first test case declaring one.
func suiteAssembly(suite testreport.TestSuite) string {
	for _, tc := range suite.TestCases {
		if tc.Assembly != "" {
			return tc.Assembly
		}
	}
	return ""
}

func convertFixture(suite testreport.TestSuite, assemblyName string) TestSuite {
	summary := testreport.Summarize(suite.TestCases)
	fixture := TestSuite{
		Type:          suiteTypeFixture,
		ID:            suite.ID,
		Name:          suite.Name,
		FullName:      suite.Name,
		TestCaseCount: xmlutil.Count(summary.Total),
		Result:        runResult(summary),
		Duration:      sumDurations(suite.TestCases),
		Extensions:    extension.ForScope(suite.Traits).Compact(),
	}
	setCounters(&fixture.Total, &fixture.Passed, &fixture.Failed, &fixture.Inconclusive, &fixture.Skipped, summary)

	for _, tc := range suite.TestCases {
		fixture.TestCases = append(fixture.TestCases, convertTestCase(tc, assemblyName))
	}
	return fixture
}

func convertTestCase(tc testreport.TestCaseRun, assemblyName string) TestCase {
	native, static, instance := testreport.PartitionTraits(tc.Traits, traitSlot)
	o := encodeOutcome(tc.Result)

	fields := extension.Fields{
		InstanceID: tc.InstanceID,
		Computer:   tc.ComputerName,
	}
	if tc.Assembly != assemblyName {
		fields.Assembly = tc.Assembly
	}

	fullName := tc.Name
	if tc.ClassName != "" {
		fullName = tc.ClassName + "." + tc.Name
	}

	testCase := TestCase{
		ID:         tc.ID,
		Name:       tc.Name,
		FullName:   fullName,
		MethodName: tc.MethodName,
		ClassName:  tc.ClassName,
		Result:     o.Result,
		Label:      o.Label,
		StartTime:  timeutil.FormatTimestamp(tc.Started),
		EndTime:    timeutil.FormatTimestamp(tc.Finished),
		Duration:   timeutil.FormatSeconds(tc.Duration),
		Output:     testreport.JoinTraits(native, testreport.TraitConsoleOut),
		Extensions: extension.New(static, instance, tc.Attachments).
			WithResult(tc.Result, decodeOutcome(o)).
			WithFields(fields).
			WithInnerResults(tc.InnerResults).
			Compact(),
	}

	var properties Properties
	for _, trait := range native {
		if trait.Type == testreport.TraitCategory || trait.Type == testreport.TraitPriority {
			properties.Properties = append(properties.Properties, Property{Name: trait.Type.String(), Value: trait.Value})
		}
	}
	if len(properties.Properties) > 0 {
		testCase.Properties = &properties
	}

	message := testreport.JoinTraits(native, testreport.TraitFailureMessage)
	stackTrace := testreport.JoinTraits(native, testreport.TraitCallStack)
	switch {
	case o.Result == resultSkipped:
		if message != "" {
			testCase.Reason = &Reason{Message: message}
		}
		if stackTrace != "" {
			testCase.Failure = &Failure{StackTrace: stackTrace}
		}
	case o.Result == resultFailed || message != "" || stackTrace != "":
		testCase.Failure = &Failure{Message: message, StackTrace: stackTrace}
	}

	return testCase
}

// Deserialize ...
func (c Converter) Deserialize(data []byte) (*testreport.TestRun, error) {
	var doc TestRun
	if err := xmlutil.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse NUnit document")
	}
	if doc.XMLName.Local != testRunElement && doc.XMLName.Local != testResultsElement {
		return nil, errors.Errorf("not an NUnit document, root element: %s", doc.XMLName.Local)
	}

	fields := doc.Extensions.Fields()
	run := &testreport.TestRun{
		ID:       doc.ID,
		Name:     doc.Name,
		RunUser:  fields.User,
		Started:  timeutil.ParseTimestamp(doc.StartTime),
		Finished: timeutil.ParseTimestamp(doc.EndTime),
		Traits:   doc.Extensions.Traits(),
	}
	if run.ID == "" {
		run.ID = testreport.NewID()
	}
	if run.Started == nil && doc.Date != "" {
		run.Started = timeutil.ParseTimestamp(doc.Date + " " + doc.Time)
	}

	for _, suite := range doc.TestSuites {
		run.Suites = append(run.Suites, fixtures(suite, "")...)
	}

	return run, nil
}

// fixtures walks the suite tree depth first and returns the suites holding test cases.
// Suites typed TestFixture are kept even when empty.
func fixtures(suite TestSuite, assemblyName string) []testreport.TestSuite {
	if suite.Type == suiteTypeAssembly {
		assemblyName = suite.Name
	}

	childSuites, childCases := suite.TestSuites, suite.TestCases
	if suite.Results != nil {
		childSuites = append(childSuites, suite.Results.TestSuites...)
		childCases = append(childCases, suite.Results.TestCases...)
	}

	var suites []testreport.TestSuite
	if len(childCases) > 0 || isTestFixture(suite.Type) {
		suites = append(suites, testSuite(suite, childCases, assemblyName))
	}
	for _, child := range childSuites {
		suites = append(suites, fixtures(child, assemblyName)...)
	}
	return suites
}

func testSuite(suite TestSuite, cases []TestCase, assemblyName string) testreport.TestSuite {
	s := testreport.TestSuite{
		ID:     suite.ID,
		Name:   suite.Name,
		Traits: append(propertyTraits(suite.Properties), suite.Extensions.Traits()...),
	}
	if s.ID == "" {
		s.ID = testreport.NewID()
	}

	for _, tc := range cases {
		testCase := testCaseRun(tc, assemblyName)
		if testCase.ClassName == "" {
			testCase.ClassName = suite.ClassName
		}
		testCase.InnerResults = tc.Extensions.InnerResultList(testCase)
		s.TestCases = append(s.TestCases, testCase)
	}
	return s
}

func testCaseRun(tc TestCase, assemblyName string) testreport.TestCaseRun {
	fields := tc.Extensions.Fields()
	testCase := testreport.TestCaseRun{
		ID:           tc.ID,
		Name:         tc.Name,
		InstanceID:   fields.InstanceID,
		ClassName:    tc.ClassName,
		MethodName:   tc.MethodName,
		Assembly:     fields.Assembly,
		ComputerName: fields.Computer,
		Result:       tc.Extensions.ResolveResult(decodeOutcome(outcome{Result: tc.Result, Label: tc.Label})),
		Started:      timeutil.ParseTimestamp(tc.StartTime),
		Finished:     timeutil.ParseTimestamp(tc.EndTime),
		Duration:     timeutil.ParseSeconds(tc.Duration),
		Attachments:  tc.Extensions.AttachmentList(),
	}
	if testCase.Duration == nil {
		testCase.Duration = timeutil.ParseSeconds(tc.Time)
	}
	if testCase.Assembly == "" {
		testCase.Assembly = assemblyName
	}
	if testCase.ID == "" {
		testCase.ID = testreport.NewID()
	}
	if testCase.InstanceID == "" {
		testCase.InstanceID = testreport.NewID()
	}
	// NUnit 2 names are fully qualified
	if testCase.ClassName != "" && strings.HasPrefix(testCase.Name, testCase.ClassName+".") && tc.FullName == "" {
		testCase.Name = strings.TrimPrefix(testCase.Name, testCase.ClassName+".")
	}

	traits := propertyTraits(tc.Properties)
	if tc.Failure != nil {
		traits = testreport.AppendTrait(traits, testreport.TraitFailureMessage, tc.Failure.Message, testreport.Instance)
	}
	if tc.Reason != nil {
		traits = testreport.AppendTrait(traits, testreport.TraitFailureMessage, tc.Reason.Message, testreport.Instance)
	}
	if tc.Failure != nil {
		traits = testreport.AppendTrait(traits, testreport.TraitCallStack, tc.Failure.StackTrace, testreport.Instance)
	}
	traits = testreport.AppendTrait(traits, testreport.TraitConsoleOut, tc.Output, testreport.Instance)
	testCase.Traits = append(traits, tc.Extensions.Traits()...)

	return testCase
}

// propertyTraits maps NUnit properties to traits, well-known names become native traits.
func propertyTraits(properties *Properties) []testreport.Trait {
	if properties == nil {
		return nil
	}
	var traits []testreport.Trait
	for _, property := range properties.Properties {
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
