// Package trx converts Visual Studio test result (TRX) documents.
//
// A TRX document declares test definitions, test lists and results separately and joins them through
// TestEntry records (test id, execution id, test list id). Test lists become suites.
package trx

import (
	"encoding/xml"

	"github.com/bitrise-io/go-utils/log"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/timeutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/format"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/pkg/errors"
)

const (
	// results referencing a missing test list are collected into the well-known default list
	defaultTestListID   = "19431567-8539-422a-85d7-44ee4e166bda"
	defaultTestListName = "All Loaded Results"

	unitTestType      = "13cdc9d9-ddb5-4fa4-a97d-d965ccfc6d4b"
	adapterTypeName   = "executor://mstestadapter/v2"
	dataDrivenTest    = "DataDrivenTest"
	dataDrivenDataRow = "DataDrivenDataRow"
)

// Converter reads and writes TRX documents. It holds no state.
type Converter struct{}

// traitSlot maps every trait type to its place in a TRX document.
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

	doc := TestRun{
		XMLName:    xml.Name{Space: format.TrxNamespace, Local: "TestRun"},
		ID:         run.ID,
		Name:       run.Name,
		RunUser:    run.RunUser,
		Extensions: extension.ForScope(run.Traits).Compact(),
	}
	if run.Started != nil || run.Finished != nil {
		doc.Times = &Times{
			Creation: timeutil.FormatTimestamp(run.Started),
			Start:    timeutil.FormatTimestamp(run.Started),
			Finish:   timeutil.FormatTimestamp(run.Finished),
		}
	}

	results := &Results{}
	definitions := &TestDefinitions{}
	entries := &TestEntries{}
	lists := &TestLists{}
	defined := map[string]bool{}

	for _, suite := range run.Suites {
		lists.TestLists = append(lists.TestLists, TestList{
			Name:       suite.Name,
			ID:         suite.ID,
			Extensions: extension.ForScope(suite.Traits).Compact(),
		})

		for _, tc := range suite.TestCases {
			native, _, _ := testreport.PartitionTraits(tc.Traits, traitSlot)

			if !defined[tc.ID] {
				defined[tc.ID] = true
				definitions.UnitTests = append(definitions.UnitTests, unitTest(tc, native))
			}

			results.UnitTestResults = append(results.UnitTestResults, unitTestResult(tc, suite.ID, ""))
			entries.TestEntries = append(entries.TestEntries, TestEntry{
				TestID:      tc.ID,
				ExecutionID: tc.InstanceID,
				TestListID:  suite.ID,
			})
		}
	}

	if len(results.UnitTestResults) > 0 {
		doc.Results = results
		doc.TestDefinitions = definitions
		doc.TestEntries = entries
	}
	if len(lists.TestLists) > 0 {
		doc.TestLists = lists
	}

	summary := run.Summary()
	doc.ResultSummary = &ResultSummary{
		Outcome: runOutcome(summary),
		Counters: Counters{
			Total:        xmlutil.Count(summary.Total),
			Executed:     xmlutil.Count(summary.Executed()),
			Passed:       xmlutil.Count(summary.Passed),
			Failed:       xmlutil.Count(summary.Failed),
			Error:        xmlutil.Count(summary.Error),
			Timeout:      xmlutil.Count(summary.Hang),
			Inconclusive: xmlutil.Count(summary.Inconclusive),
			NotExecuted:  xmlutil.Count(summary.Skipped + summary.NoRun),
		},
	}

	data, err := xmlutil.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write TRX document")
	}
	return data, nil
}

func unitTest(tc testreport.TestCaseRun, native []testreport.Trait) UnitTest {
	methodName := tc.MethodName
	if methodName == "" {
		methodName = tc.Name
	}

	def := UnitTest{
		ID:        tc.ID,
		Name:      tc.Name,
		Storage:   tc.Assembly,
		Priority:  testreport.FirstTrait(native, testreport.TraitPriority),
		Execution: &Execution{ID: tc.InstanceID},
		TestMethod: &TestMethod{
			CodeBase:        tc.Assembly,
			AdapterTypeName: adapterTypeName,
			ClassName:       tc.ClassName,
			Name:            methodName,
		},
	}

	if categories := testreport.FindTraits(native, testreport.TraitCategory); len(categories) > 0 {
		def.TestCategory = &TestCategory{}
		for _, category := range categories {
			def.TestCategory.Items = append(def.TestCategory.Items, TestCategoryItem{TestCategory: category})
		}
	}
	return def
}

func unitTestResult(tc testreport.TestCaseRun, testListID, resultType string) UnitTestResult {
	native, static, instance := testreport.PartitionTraits(tc.Traits, traitSlot)
	outcome := encodeOutcome(tc.Result)

	testName := tc.Name
	if resultType == dataDrivenDataRow {
		if instanceName := testreport.FirstTrait(tc.Traits, testreport.TraitInstanceName); instanceName != "" {
			testName = instanceName
		}
	}

	result := UnitTestResult{
		ExecutionID:              tc.InstanceID,
		TestID:                   tc.ID,
		TestName:                 testName,
		ComputerName:             tc.ComputerName,
		Duration:                 timeutil.FormatTimeSpan(tc.Duration),
		StartTime:                timeutil.FormatTimestamp(tc.Started),
		EndTime:                  timeutil.FormatTimestamp(tc.Finished),
		TestType:                 unitTestType,
		Outcome:                  outcome,
		TestListID:               testListID,
		RelativeResultsDirectory: tc.InstanceID,
		ResultType:               resultType,
		Output:                   output(native),
		Extensions:               extension.New(static, instance, tc.Attachments).WithResult(tc.Result, decodeOutcome(outcome)).Compact(),
	}

	if len(tc.InnerResults) > 0 {
		if result.ResultType == "" {
			result.ResultType = dataDrivenTest
		}
		result.InnerResults = &Results{}
		for _, inner := range tc.InnerResults {
			result.InnerResults.UnitTestResults = append(result.InnerResults.UnitTestResults, unitTestResult(inner, testListID, dataDrivenDataRow))
		}
	}
	return result
}

func output(native []testreport.Trait) *Output {
	out := Output{
		StdOut: testreport.JoinTraits(native, testreport.TraitConsoleOut),
		StdErr: testreport.JoinTraits(native, testreport.TraitConsoleErr),
	}

	message := testreport.JoinTraits(native, testreport.TraitFailureMessage)
	stackTrace := testreport.JoinTraits(native, testreport.TraitCallStack)
	if message != "" || stackTrace != "" {
		out.ErrorInfo = &ErrorInfo{Message: message, StackTrace: stackTrace}
	}

	if out.StdOut == "" && out.StdErr == "" && out.ErrorInfo == nil {
		return nil
	}
	return &out
}

// Deserialize ...
func (c Converter) Deserialize(data []byte) (*testreport.TestRun, error) {
	var doc TestRun
	if err := xmlutil.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse TRX document")
	}
	if doc.XMLName.Local != "TestRun" {
		return nil, errors.Errorf("not a TRX document, root element: %s", doc.XMLName.Local)
	}

	run := &testreport.TestRun{
		ID:      doc.ID,
		Name:    doc.Name,
		RunUser: doc.RunUser,
		Traits:  doc.Extensions.Traits(),
	}
	if run.ID == "" {
		run.ID = testreport.NewID()
	}
	if doc.Times != nil {
		run.Started = timeutil.ParseTimestamp(doc.Times.Start)
		if run.Started == nil {
			run.Started = timeutil.ParseTimestamp(doc.Times.Creation)
		}
		run.Finished = timeutil.ParseTimestamp(doc.Times.Finish)
	}

	definitions := map[string]UnitTest{}
	if doc.TestDefinitions != nil {
		for _, def := range doc.TestDefinitions.UnitTests {
			definitions[def.ID] = def
		}
	}

	suiteIndex := map[string]int{}
	if doc.TestLists != nil {
		for _, list := range doc.TestLists.TestLists {
			id := list.ID
			if id == "" {
				id = testreport.NewID()
			}
			if _, ok := suiteIndex[id]; ok {
				continue
			}
			suiteIndex[id] = len(run.Suites)
			run.Suites = append(run.Suites, testreport.TestSuite{
				ID:     id,
				Name:   list.Name,
				Traits: list.Extensions.Traits(),
			})
		}
	}

	listByExecution := map[string]string{}
	if doc.TestEntries != nil {
		for _, entry := range doc.TestEntries.TestEntries {
			if entry.ExecutionID != "" {
				listByExecution[entry.ExecutionID] = entry.TestListID
			}
		}
	}

	if doc.Results != nil {
		for _, result := range doc.Results.UnitTestResults {
			listID, ok := listByExecution[result.ExecutionID]
			if !ok {
				listID = result.TestListID
			}

			idx, ok := suiteIndex[listID]
			if !ok {
				if listID != "" {
					log.Debugf("Dropping link of result (%s) to missing test list: %s", result.TestName, listID)
				}
				idx, ok = suiteIndex[defaultTestListID]
				if !ok {
					idx = len(run.Suites)
					suiteIndex[defaultTestListID] = idx
					run.Suites = append(run.Suites, testreport.TestSuite{ID: defaultTestListID, Name: defaultTestListName})
				}
			}

			run.Suites[idx].TestCases = append(run.Suites[idx].TestCases, testCase(result, definitions, nil))
		}
	}

	return run, nil
}

func testCase(result UnitTestResult, definitions map[string]UnitTest, parent *testreport.TestCaseRun) testreport.TestCaseRun {
	tc := testreport.TestCaseRun{
		ID:           result.TestID,
		Name:         result.TestName,
		InstanceID:   result.ExecutionID,
		ComputerName: result.ComputerName,
		Started:      timeutil.ParseTimestamp(result.StartTime),
		Finished:     timeutil.ParseTimestamp(result.EndTime),
		Duration:     timeutil.ParseTimeSpan(result.Duration),
		Result:       result.Extensions.ResolveResult(decodeOutcome(result.Outcome)),
		Attachments:  result.Extensions.AttachmentList(),
	}
	if tc.InstanceID == "" {
		tc.InstanceID = testreport.NewID()
	}

	if parent != nil {
		// inner results share the static identity of their parent
		tc.ID = parent.ID
		tc.Name = parent.Name
		tc.ClassName = parent.ClassName
		tc.MethodName = parent.MethodName
		tc.Assembly = parent.Assembly
	} else {
		if tc.ID == "" {
			tc.ID = testreport.NewID()
		}
		if def, ok := definitions[result.TestID]; ok {
			if tc.Name == "" {
				tc.Name = def.Name
			}
			tc.Assembly = def.Storage
			if def.TestMethod != nil {
				tc.ClassName = def.TestMethod.ClassName
				tc.MethodName = def.TestMethod.Name
				if tc.Assembly == "" {
					tc.Assembly = def.TestMethod.CodeBase
				}
			}
			if def.TestCategory != nil {
				for _, item := range def.TestCategory.Items {
					tc.Traits = append(tc.Traits, testreport.NewTrait(testreport.TraitCategory, item.TestCategory, testreport.Static))
				}
			}
			if def.Priority != "" {
				tc.Traits = append(tc.Traits, testreport.NewTrait(testreport.TraitPriority, def.Priority, testreport.Static))
			}
		}
	}

	if result.Output != nil {
		tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitConsoleOut, result.Output.StdOut, testreport.Instance)
		tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitConsoleErr, result.Output.StdErr, testreport.Instance)
		if result.Output.ErrorInfo != nil {
			tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitFailureMessage, result.Output.ErrorInfo.Message, testreport.Instance)
			tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitCallStack, result.Output.ErrorInfo.StackTrace, testreport.Instance)
		}
	}

	generic := result.Extensions.Traits()
	if parent != nil && result.TestName != "" && result.TestName != parent.Name &&
		testreport.FirstTrait(generic, testreport.TraitInstanceName) == "" {
		tc.Traits = append(tc.Traits, testreport.NewTrait(testreport.TraitInstanceName, result.TestName, testreport.Instance))
	}
	tc.Traits = append(tc.Traits, generic...)

	if result.InnerResults != nil {
		for _, inner := range result.InnerResults.UnitTestResults {
			tc.InnerResults = append(tc.InnerResults, testCase(inner, definitions, &tc))
		}
	}
	return tc
}
