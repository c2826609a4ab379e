// Package ctrf converts Common Test Report Format (CTRF) JSON documents.
//
// CTRF has a flat test list: suites are referenced by name from the tests, suite identity and everything
// else CTRF has no field for is kept under the extra objects. Decoding accepts comments and trailing commas.
package ctrf

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/bitrise-io/go-utils/log"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/timeutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testasset"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
)

const (
	reportFormat   = "CTRF"
	specVersion    = "0.0.0"
	toolName       = "steps-test-report-interchange"
	base64Encoding = "base64"
)

// Converter reads and writes CTRF documents. It holds no state.
type Converter struct{}

func traitSlot(t testreport.TraitType) testreport.Slot {
	switch t {
	case testreport.TraitIdentifier, testreport.TraitName, testreport.TraitResult, testreport.TraitDuration,
		testreport.TraitClassName, testreport.TraitAssembly, testreport.TraitMethod, testreport.TraitInstanceID,
		testreport.TraitComputer:
		return testreport.SlotField
	case testreport.TraitConsoleOut, testreport.TraitConsoleErr, testreport.TraitFailureMessage,
		testreport.TraitCallStack, testreport.TraitCategory:
		return testreport.SlotNative
	case testreport.TraitPriority, testreport.TraitInstanceName, testreport.TraitCustom:
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
	report := Report{
		ReportFormat: reportFormat,
		SpecVersion:  specVersion,
		ReportID:     run.ID,
		Timestamp:    timeutil.FormatTimestamp(run.Started),
		GeneratedBy:  toolName,
		Results: Results{
			Tool: Tool{Name: toolName},
			Summary: Summary{
				Tests:   Number(summary.Total),
				Passed:  Number(summary.Passed),
				Failed:  Number(summary.Failed + summary.Error + summary.Hang),
				Skipped: Number(summary.Skipped),
				Pending: Number(summary.NoRun),
				Other:   Number(summary.Inconclusive),
				Start:   Number(timeutil.UnixMillis(run.Started)),
				Stop:    Number(timeutil.UnixMillis(run.Finished)),
			},
			Tests: []Test{},
		},
	}
	if run.Name != "" {
		report.Results.Environment = &Environment{ReportName: run.Name}
	}

	extra := ResultsExtra{
		RunUser:  run.RunUser,
		Finished: timeutil.FormatTimestamp(run.Finished),
		Traits:   scopeTraits(run.Traits),
	}
	for _, suite := range run.Suites {
		extra.Suites = append(extra.Suites, Suite{ID: suite.ID, Name: suite.Name, Traits: scopeTraits(suite.Traits)})
		for _, tc := range suite.TestCases {
			test := convertTest(tc)
			test.Suite = suite.Name
			test.Extra.SuiteID = suite.ID
			report.Results.Tests = append(report.Results.Tests, test)
		}
	}
	report.Results.Extra = &extra

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to write CTRF document")
	}
	return data, nil
}

func scopeTraits(traits []testreport.Trait) *Traits {
	_, static, instance := testreport.PartitionTraits(traits, testreport.ScopeSlot)
	return newTraits(static, instance)
}

func newTraits(static, instance []testreport.Trait) *Traits {
	if len(static) == 0 && len(instance) == 0 {
		return nil
	}
	t := &Traits{}
	for _, trait := range static {
		t.Static = append(t.Static, Trait{Name: trait.Name, Value: trait.Value})
	}
	for _, trait := range instance {
		t.Instance = append(t.Instance, Trait{Name: trait.Name, Value: trait.Value})
	}
	return t
}

func convertTest(tc testreport.TestCaseRun) Test {
	native, static, instance := testreport.PartitionTraits(tc.Traits, traitSlot)
	status := encodeOutcome(tc.Result)

	test := Test{
		Name:     tc.Name,
		Status:   status,
		Duration: Number(timeutil.Millis(tc.Duration)),
		Start:    Number(timeutil.UnixMillis(tc.Started)),
		Stop:     Number(timeutil.UnixMillis(tc.Finished)),
		Message:  testreport.JoinTraits(native, testreport.TraitFailureMessage),
		Trace:    testreport.JoinTraits(native, testreport.TraitCallStack),
		Tags:     testreport.FindTraits(native, testreport.TraitCategory),
		Stdout:   testreport.FindTraits(native, testreport.TraitConsoleOut),
		Stderr:   testreport.FindTraits(native, testreport.TraitConsoleErr),
		Extra: &TestExtra{
			ID:         tc.ID,
			InstanceID: tc.InstanceID,
			ClassName:  tc.ClassName,
			Method:     tc.MethodName,
			Assembly:   tc.Assembly,
			Computer:   tc.ComputerName,
			Traits:     newTraits(static, instance),
		},
	}
	if decodeOutcome(status) != tc.Result {
		test.RawStatus = tc.Result.String()
	}

	for _, attachment := range tc.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = testreport.DefaultContentType
		}
		test.Attachments = append(test.Attachments, Attachment{
			Name:        attachment.Name,
			ContentType: contentType,
			Path:        testasset.AttachmentPath(tc.InstanceID, attachment.Name),
		})
		test.Extra.Attachments = append(test.Extra.Attachments, AttachmentData{
			Name:        attachment.Name,
			ContentType: contentType,
			Encoding:    base64Encoding,
			Data:        base64.StdEncoding.EncodeToString(attachment.Data),
		})
	}

	for _, inner := range tc.InnerResults {
		test.Extra.InnerResults = append(test.Extra.InnerResults, convertTest(inner))
	}

	return test
}

// Deserialize ...
func (c Converter) Deserialize(data []byte) (*testreport.TestRun, error) {
	var report Report
	if err := json.Unmarshal(jsonc.ToJSON(data), &report); err != nil {
		return nil, errors.Wrap(err, "failed to parse CTRF document")
	}
	if report.ReportFormat != "" && !strings.EqualFold(report.ReportFormat, reportFormat) {
		return nil, errors.Errorf("not a CTRF document, report format: %s", report.ReportFormat)
	}

	run := &testreport.TestRun{
		ID:       report.ReportID,
		Started:  timeutil.ParseTimestamp(report.Timestamp),
		Finished: timeutil.FromUnixMillis(float64(report.Results.Summary.Stop)),
	}
	if run.ID == "" {
		run.ID = testreport.NewID()
	}
	if run.Started == nil {
		run.Started = timeutil.FromUnixMillis(float64(report.Results.Summary.Start))
	}
	if report.Results.Environment != nil {
		run.Name = report.Results.Environment.ReportName
	}

	suiteByID := map[string]int{}
	suiteByName := map[string]int{}
	if extra := report.Results.Extra; extra != nil {
		run.RunUser = extra.RunUser
		if finished := timeutil.ParseTimestamp(extra.Finished); finished != nil {
			run.Finished = finished
		}
		run.Traits = extra.Traits.traits()

		for _, suite := range extra.Suites {
			id := suite.ID
			if id == "" {
				id = testreport.NewID()
			}
			if _, ok := suiteByID[id]; ok {
				continue
			}
			suiteByID[id] = len(run.Suites)
			if _, ok := suiteByName[suite.Name]; !ok {
				suiteByName[suite.Name] = len(run.Suites)
			}
			run.Suites = append(run.Suites, testreport.TestSuite{ID: id, Name: suite.Name, Traits: suite.Traits.traits()})
		}
	}

	for _, test := range report.Results.Tests {
		var idx int
		var ok bool
		if test.Extra != nil && test.Extra.SuiteID != "" {
			idx, ok = suiteByID[test.Extra.SuiteID]
		}
		if !ok {
			idx, ok = suiteByName[test.Suite]
		}
		if !ok {
			idx = len(run.Suites)
			suiteByName[test.Suite] = idx
			run.Suites = append(run.Suites, testreport.TestSuite{ID: testreport.NewID(), Name: test.Suite})
		}

		run.Suites[idx].TestCases = append(run.Suites[idx].TestCases, testCase(test, nil))
	}

	return run, nil
}

func (t *Traits) traits() []testreport.Trait {
	if t == nil {
		return nil
	}
	var traits []testreport.Trait
	for _, trait := range t.Static {
		traits = append(traits, testreport.Trait{Type: testreport.TraitTypeForName(trait.Name), Name: trait.Name, Value: trait.Value, ExportType: testreport.Static})
	}
	for _, trait := range t.Instance {
		traits = append(traits, testreport.Trait{Type: testreport.TraitTypeForName(trait.Name), Name: trait.Name, Value: trait.Value, ExportType: testreport.Instance})
	}
	return traits
}

func testCase(test Test, parent *testreport.TestCaseRun) testreport.TestCaseRun {
	result := decodeOutcome(test.Status)
	if canonical, ok := testreport.ParseTestResult(test.RawStatus); ok {
		result = canonical
	}

	tc := testreport.TestCaseRun{
		Name:     test.Name,
		Result:   result,
		Started:  timeutil.FromUnixMillis(float64(test.Start)),
		Finished: timeutil.FromUnixMillis(float64(test.Stop)),
		Duration: timeutil.ParseMillis(float64(test.Duration)),
	}
	if test.Duration == 0 && test.Start > 0 && test.Stop > 0 {
		tc.Duration = timeutil.Between(tc.Started, tc.Finished)
	}

	var generic []testreport.Trait
	var inner []Test
	if extra := test.Extra; extra != nil {
		tc.ID = extra.ID
		tc.InstanceID = extra.InstanceID
		tc.ClassName = extra.ClassName
		tc.MethodName = extra.Method
		tc.Assembly = extra.Assembly
		tc.ComputerName = extra.Computer
		generic = extra.Traits.traits()
		tc.Attachments = attachments(extra.Attachments)
		inner = extra.InnerResults
	}
	if len(tc.Attachments) == 0 && len(test.Attachments) > 0 {
		log.Debugf("Skipping %d attachments of %s: only referenced by path", len(test.Attachments), test.Name)
	}

	if parent != nil {
		tc.ID = parent.ID
		tc.Name = parent.Name
		tc.ClassName = parent.ClassName
		tc.MethodName = parent.MethodName
		tc.Assembly = parent.Assembly
	}
	if tc.ID == "" {
		tc.ID = testreport.NewID()
	}
	if tc.InstanceID == "" {
		tc.InstanceID = testreport.NewID()
	}

	for _, tag := range test.Tags {
		tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitCategory, tag, testreport.Static)
	}
	tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitFailureMessage, test.Message, testreport.Instance)
	tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitCallStack, test.Trace, testreport.Instance)
	for _, line := range test.Stdout {
		tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitConsoleOut, line, testreport.Instance)
	}
	for _, line := range test.Stderr {
		tc.Traits = testreport.AppendTrait(tc.Traits, testreport.TraitConsoleErr, line, testreport.Instance)
	}
	tc.Traits = append(tc.Traits, generic...)

	for _, innerTest := range inner {
		tc.InnerResults = append(tc.InnerResults, testCase(innerTest, &tc))
	}
	return tc
}

func attachments(data []AttachmentData) []testreport.Attachment {
	var list []testreport.Attachment
	for _, attachment := range data {
		if attachment.Encoding != base64Encoding {
			log.Debugf("Skipping attachment (%s): unsupported encoding: %s", attachment.Name, attachment.Encoding)
			continue
		}
		content, err := base64.StdEncoding.DecodeString(attachment.Data)
		if err != nil {
			log.Debugf("Skipping attachment (%s): %s", attachment.Name, err)
			continue
		}
		list = append(list, testreport.NewAttachment(attachment.Name, attachment.ContentType, content))
	}
	return list
}
