// Package xunit converts xUnit.net v2 XML documents.
//
// Suites map to test collections, consecutive suites of the same assembly share one assembly element.
package xunit

import (
	"strings"
	"time"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/timeutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/pkg/errors"
)

const (
	testFramework = "xUnit.net"
	runDateLayout = "2006-01-02"
	runTimeLayout = "15:04:05"
)

// Converter reads and writes xUnit v2 documents. It holds no state.
type Converter struct{}

// xUnit has no stderr and no failure message on skipped tests: the skip reason is the failure message.
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

	doc := Assemblies{
		Timestamp: timeutil.FormatTimestamp(run.Started),
		Extensions: extension.ForScope(run.Traits).WithFields(extension.Fields{
			ID:       run.ID,
			Name:     run.Name,
			User:     run.RunUser,
			Finished: run.Finished,
		}).Compact(),
	}

	for _, suite := range run.Suites {
		assemblyName := suiteAssembly(suite)

		last := len(doc.Assemblies) - 1
		if last < 0 || doc.Assemblies[last].Name != assemblyName {
			doc.Assemblies = append(doc.Assemblies, newAssembly(assemblyName, run.Started))
			last++
		}

		collection := convertCollection(suite, assemblyName)
		assembly := &doc.Assemblies[last]
		assembly.Collections = append(assembly.Collections, collection)
		assembly.Total += collection.Total
		assembly.Passed += collection.Passed
		assembly.Failed += collection.Failed
		assembly.Skipped += collection.Skipped
	}

	for i := range doc.Assemblies {
		var total time.Duration
		for _, collection := range doc.Assemblies[i].Collections {
			if d := timeutil.ParseSeconds(collection.Time); d != nil {
				total += *d
			}
		}
		doc.Assemblies[i].Time = timeutil.FormatSeconds(&total)
	}

	data, err := xmlutil.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xUnit document")
	}
	return data, nil
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

func newAssembly(name string, started *time.Time) Assembly {
	assembly := Assembly{
		Name:          name,
		TestFramework: testFramework,
		Errors:        &Errors{},
	}
	if started != nil {
		assembly.RunDate = started.Format(runDateLayout)
		assembly.RunTime = started.Format(runTimeLayout)
	}
	return assembly
}

func convertCollection(suite testreport.TestSuite, assemblyName string) Collection {
	summary := testreport.Summarize(suite.TestCases)
	collection := Collection{
		Name:       suite.Name,
		Total:      xmlutil.Count(summary.Total),
		Extensions: extension.ForScope(suite.Traits).WithFields(extension.Fields{ID: suite.ID}).Compact(),
	}

	var total time.Duration
	for _, tc := range suite.TestCases {
		if tc.Duration != nil {
			total += *tc.Duration
		}

		test := convertTest(tc, assemblyName)
		switch test.Result {
		case resultPass:
			collection.Passed++
		case resultFail:
			collection.Failed++
		default:
			collection.Skipped++
		}
		collection.Tests = append(collection.Tests, test)
	}
	collection.Time = timeutil.FormatSeconds(&total)

	return collection
}

func convertTest(tc testreport.TestCaseRun, assemblyName string) Test {
	native, static, instance := testreport.PartitionTraits(tc.Traits, traitSlot)
	outcome := encodeOutcome(tc.Result)

	fields := extension.Fields{
		ID:         tc.ID,
		InstanceID: tc.InstanceID,
		Computer:   tc.ComputerName,
		Started:    tc.Started,
		Finished:   tc.Finished,
	}
	if tc.Assembly != assemblyName {
		fields.Assembly = tc.Assembly
	}

	test := Test{
		Name:   tc.Name,
		Type:   tc.ClassName,
		Method: tc.MethodName,
		Time:   timeutil.FormatSeconds(tc.Duration),
		Result: outcome,
		Output: testreport.JoinTraits(native, testreport.TraitConsoleOut),
		Extensions: extension.New(static, instance, tc.Attachments).
			WithResult(tc.Result, decodeOutcome(outcome)).
			WithFields(fields).
			WithInnerResults(tc.InnerResults).
			Compact(),
	}

	var traits Traits
	for _, trait := range native {
		if trait.Type == testreport.TraitCategory || trait.Type == testreport.TraitPriority {
			traits.Traits = append(traits.Traits, Trait{Name: trait.Type.String(), Value: trait.Value})
		}
	}
	if len(traits.Traits) > 0 {
		test.Traits = &traits
	}

	message := testreport.JoinTraits(native, testreport.TraitFailureMessage)
	stackTrace := testreport.JoinTraits(native, testreport.TraitCallStack)
	switch {
	case outcome == resultSkip || outcome == resultNotRun:
		test.Reason = message
		if stackTrace != "" {
			test.Failure = &Failure{StackTrace: stackTrace}
		}
	case outcome == resultFail || message != "" || stackTrace != "":
		test.Failure = &Failure{Message: message, StackTrace: stackTrace}
	}

	return test
}

// Deserialize ...
func (c Converter) Deserialize(data []byte) (*testreport.TestRun, error) {
	doc, err := parseAssemblies(data)
	if err != nil {
		return nil, err
	}

	fields := doc.Extensions.Fields()
	run := &testreport.TestRun{
		ID:       fields.ID,
		Name:     fields.Name,
		RunUser:  fields.User,
		Started:  timeutil.ParseTimestamp(doc.Timestamp),
		Finished: fields.Finished,
		Traits:   doc.Extensions.Traits(),
	}
	if run.ID == "" {
		run.ID = testreport.NewID()
	}

	for _, assembly := range doc.Assemblies {
		if run.Started == nil && assembly.RunDate != "" {
			run.Started = timeutil.ParseTimestamp(strings.TrimSpace(assembly.RunDate + "T" + assembly.RunTime + "Z"))
		}
		for _, collection := range assembly.Collections {
			run.Suites = append(run.Suites, testSuite(collection, assembly.Name))
		}
	}

	return run, nil
}

// parseAssemblies accepts both assemblies and a single assembly root element.
func parseAssemblies(data []byte) (Assemblies, error) {
	var doc Assemblies
	assembliesErr := xmlutil.Unmarshal(data, &doc)
	if assembliesErr == nil {
		return doc, nil
	}

	var assembly Assembly
	if assemblyErr := xmlutil.Unmarshal(data, &assembly); assemblyErr != nil {
		return Assemblies{}, errors.Errorf("failed to parse xUnit document: as assemblies: %s, as assembly: %s", assembliesErr, assemblyErr)
	}
	return Assemblies{Assemblies: []Assembly{assembly}}, nil
}

func testSuite(collection Collection, assemblyName string) testreport.TestSuite {
	fields := collection.Extensions.Fields()
	suite := testreport.TestSuite{
		ID:     fields.ID,
		Name:   collection.Name,
		Traits: collection.Extensions.Traits(),
	}
	if suite.ID == "" {
		suite.ID = testreport.NewID()
	}

	for _, test := range collection.Tests {
		suite.TestCases = append(suite.TestCases, testCaseRun(test, assemblyName))
	}
	return suite
}

func testCaseRun(test Test, assemblyName string) testreport.TestCaseRun {
	fields := test.Extensions.Fields()
	tc := testreport.TestCaseRun{
		ID:           fields.ID,
		Name:         test.Name,
		InstanceID:   fields.InstanceID,
		ClassName:    test.Type,
		MethodName:   test.Method,
		Assembly:     fields.Assembly,
		ComputerName: fields.Computer,
		Result:       test.Extensions.ResolveResult(decodeOutcome(test.Result)),
		Started:      fields.Started,
		Finished:     fields.Finished,
		Duration:     timeutil.ParseSeconds(test.Time),
		Attachments:  test.Extensions.AttachmentList(),
	}
	if tc.Assembly == "" {
		tc.Assembly = assemblyName
	}
	if tc.ID == "" {
		tc.ID = testreport.NewID()
	}
	if tc.InstanceID == "" {
		tc.InstanceID = testreport.NewID()
	}

	var traits []testreport.Trait
	if test.Traits != nil {
		for _, trait := range test.Traits.Traits {
			switch strings.ToLower(trait.Name) {
			case "category":
				traits = append(traits, testreport.NewTrait(testreport.TraitCategory, trait.Value, testreport.Static))
			case "priority":
				traits = append(traits, testreport.NewTrait(testreport.TraitPriority, trait.Value, testreport.Static))
			default:
				traits = append(traits, testreport.NewCustomTrait(trait.Name, trait.Value, testreport.Static))
			}
		}
	}
	if test.Failure != nil {
		traits = testreport.AppendTrait(traits, testreport.TraitFailureMessage, test.Failure.Message, testreport.Instance)
	}
	traits = testreport.AppendTrait(traits, testreport.TraitFailureMessage, test.Reason, testreport.Instance)
	if test.Failure != nil {
		traits = testreport.AppendTrait(traits, testreport.TraitCallStack, test.Failure.StackTrace, testreport.Instance)
	}
	traits = testreport.AppendTrait(traits, testreport.TraitConsoleOut, test.Output, testreport.Instance)
	tc.Traits = append(traits, test.Extensions.Traits()...)
	tc.InnerResults = test.Extensions.InnerResultList(tc)

	return tc
}
