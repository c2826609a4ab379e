package nunit

import (
	"testing"
	"time"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/convertertest"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nunit3 = `<?xml version="1.0" encoding="utf-8" standalone="no"?>
<test-run id="2" testcasecount="3" result="Failed" total="3" passed="1" failed="1" inconclusive="0" skipped="1" start-time="2024-03-01 10:00:00Z" end-time="2024-03-01 10:00:02Z" duration="2.0">
  <test-suite type="Assembly" id="0-1005" name="Calculator.Tests.dll" fullname="/src/Calculator.Tests.dll" testcasecount="3" result="Failed">
    <test-suite type="TestSuite" id="0-1006" name="Calculator" fullname="Calculator" testcasecount="3" result="Failed">
      <test-suite type="TestFixture" id="0-1000" name="CalculatorTests" fullname="Calculator.CalculatorTests" classname="Calculator.CalculatorTests" testcasecount="3" result="Failed">
        <test-case id="0-1001" name="Adds" fullname="Calculator.CalculatorTests.Adds" methodname="Adds" classname="Calculator.CalculatorTests" result="Passed" start-time="2024-03-01 10:00:00Z" end-time="2024-03-01 10:00:00Z" duration="0.012">
          <properties>
            <property name="Category" value="Math" />
            <property name="Author" value="someone" />
          </properties>
          <output><![CDATA[adding]]></output>
        </test-case>
        <test-case id="0-1002" name="Divides" fullname="Calculator.CalculatorTests.Divides" methodname="Divides" classname="Calculator.CalculatorTests" result="Failed" label="Error" duration="0.003">
          <failure>
            <message><![CDATA[System.DivideByZeroException]]></message>
            <stack-trace><![CDATA[at Calculator.CalculatorTests.Divides()]]></stack-trace>
          </failure>
        </test-case>
        <test-case id="0-1003" name="Later" fullname="Calculator.CalculatorTests.Later" methodname="Later" classname="Calculator.CalculatorTests" result="Skipped" label="Ignored">
          <reason>
            <message><![CDATA[not implemented]]></message>
          </reason>
        </test-case>
      </test-suite>
    </test-suite>
  </test-suite>
</test-run>`

const nunit2 = `<?xml version="1.0" encoding="utf-8" standalone="no"?>
<test-results name="/src/Calculator.Tests.dll" total="2" errors="0" failures="1" not-run="0" date="2024-03-01" time="10:00:00">
  <test-suite type="Assembly" name="/src/Calculator.Tests.dll" executed="True" result="Failure">
    <results>
      <test-suite type="TestFixture" name="CalculatorTests" executed="True" result="Failure">
        <results>
          <test-case name="Calculator.CalculatorTests.Adds" executed="True" result="Success" time="0.012" />
          <test-case name="Calculator.CalculatorTests.Divides" executed="True" result="Failure" time="0.003">
            <failure>
              <message><![CDATA[Expected: 2]]></message>
              <stack-trace><![CDATA[at Calculator.CalculatorTests.Divides()]]></stack-trace>
            </failure>
          </test-case>
        </results>
      </test-suite>
    </results>
  </test-suite>
</test-results>`

func TestConverter_RoundTrip(t *testing.T) {
	got, _ := convertertest.RoundTrip(t, Converter{}, convertertest.SampleRun())
	convertertest.RequireEqualRuns(t, convertertest.SampleRun(), got)
}

func TestConverter_RoundTripEveryResult(t *testing.T) {
	for _, result := range testreport.TestResults() {
		t.Run(result.String(), func(t *testing.T) {
			got, _ := convertertest.RoundTrip(t, Converter{}, convertertest.SingleCaseRun(result))
			require.Len(t, got.Suites, 1)
			require.Len(t, got.Suites[0].TestCases, 1)
			assert.Equal(t, result, got.Suites[0].TestCases[0].Result)
		})
	}
}

func TestConverter_Deserialize(t *testing.T) {
	run, err := Converter{}.Deserialize([]byte(nunit3))
	require.NoError(t, err)

	assert.Equal(t, "2", run.ID)
	require.NotNil(t, run.Started)
	assert.True(t, run.Started.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	require.Len(t, run.Suites, 1)
	assert.Equal(t, "0-1000", run.Suites[0].ID)
	assert.Equal(t, "CalculatorTests", run.Suites[0].Name)

	cases := run.Suites[0].TestCases
	require.Len(t, cases, 3)

	assert.Equal(t, "0-1001", cases[0].ID)
	assert.Equal(t, "Adds", cases[0].Name)
	assert.Equal(t, "Calculator.CalculatorTests", cases[0].ClassName)
	assert.Equal(t, "Adds", cases[0].MethodName)
	assert.Equal(t, "Calculator.Tests.dll", cases[0].Assembly)
	assert.Equal(t, testreport.Passed, cases[0].Result)
	require.NotNil(t, cases[0].Duration)
	assert.Equal(t, 12*time.Millisecond, *cases[0].Duration)
	assert.Equal(t, []string{"Math"}, testreport.FindTraits(cases[0].Traits, testreport.TraitCategory))
	assert.Contains(t, cases[0].Traits, testreport.NewCustomTrait("Author", "someone", testreport.Static))
	assert.Equal(t, "adding", testreport.FirstTrait(cases[0].Traits, testreport.TraitConsoleOut))

	assert.Equal(t, testreport.Error, cases[1].Result)
	assert.Equal(t, "System.DivideByZeroException", testreport.FirstTrait(cases[1].Traits, testreport.TraitFailureMessage))
	assert.Equal(t, "at Calculator.CalculatorTests.Divides()", testreport.FirstTrait(cases[1].Traits, testreport.TraitCallStack))

	assert.Equal(t, testreport.Skipped, cases[2].Result)
	assert.Equal(t, "not implemented", testreport.FirstTrait(cases[2].Traits, testreport.TraitFailureMessage))
}

func TestConverter_DeserializeNUnit2(t *testing.T) {
	run, err := Converter{}.Deserialize([]byte(nunit2))
	require.NoError(t, err)

	assert.Equal(t, "/src/Calculator.Tests.dll", run.Name)
	require.NotNil(t, run.Started)
	assert.True(t, run.Started.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	require.Len(t, run.Suites, 1)
	assert.Equal(t, "CalculatorTests", run.Suites[0].Name)

	cases := run.Suites[0].TestCases
	require.Len(t, cases, 2)
	assert.Equal(t, "Calculator.CalculatorTests.Adds", cases[0].Name)
	assert.Equal(t, "/src/Calculator.Tests.dll", cases[0].Assembly)
	assert.Equal(t, testreport.Passed, cases[0].Result)
	require.NotNil(t, cases[0].Duration)
	assert.Equal(t, 12*time.Millisecond, *cases[0].Duration)

	assert.Equal(t, testreport.Failed, cases[1].Result)
	assert.Equal(t, "Expected: 2", testreport.FirstTrait(cases[1].Traits, testreport.TraitFailureMessage))
}

func TestConverter_DeserializeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "truncated", data: `<test-run id="2"><test-suite type="Assembly">`},
		{name: "other root", data: `<testsuites></testsuites>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Converter{}.Deserialize([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestConverter_DeserializeIgnoresCounters(t *testing.T) {
	doc := `<test-run id="2" testcasecount="many" total="" passed="x">
  <test-suite type="Assembly" name="App.Tests.dll" total="?" failed="-">
    <test-suite type="TestFixture" name="Tests" testcasecount="1.0">
      <test-case name="test1" result="Passed" />
    </test-suite>
  </test-suite>
</test-run>`

	run, err := Converter{}.Deserialize([]byte(doc))
	require.NoError(t, err)

	require.Len(t, run.Suites, 1)
	assert.Equal(t, "Tests", run.Suites[0].Name)
	require.Len(t, run.Suites[0].TestCases, 1)
	assert.Equal(t, "test1", run.Suites[0].TestCases[0].Name)
	assert.Equal(t, testreport.Passed, run.Suites[0].TestCases[0].Result)
}

func TestConverter_RoundTripInnerResults(t *testing.T) {
	got, data := convertertest.RoundTrip(t, Converter{}, convertertest.InnerResultRun())
	convertertest.RequireEqualRuns(t, convertertest.InnerResultRun(), got)

	assert.Contains(t, string(data), `<InnerResult result="Failed" instanceId="row-2"`)
}

func TestConverter_Serialize(t *testing.T) {
	data, err := Converter{}.Serialize(convertertest.SampleRun())
	require.NoError(t, err)

	var doc TestRun
	require.NoError(t, xmlutil.Unmarshal(data, &doc))

	assert.Equal(t, testRunElement, doc.XMLName.Local)
	assert.Equal(t, resultFailed, doc.Result)
	assert.Equal(t, xmlutil.Count(7), doc.Total)
	assert.Equal(t, xmlutil.Count(3), doc.Failed)
	assert.Equal(t, xmlutil.Count(1), doc.Inconclusive)
	assert.Equal(t, xmlutil.Count(2), doc.Skipped)
	assert.Equal(t, "300", doc.Duration)

	require.Len(t, doc.TestSuites, 1)
	assembly := doc.TestSuites[0]
	assert.Equal(t, suiteTypeAssembly, assembly.Type)
	assert.Equal(t, "App.Tests.dll", assembly.Name)
	require.Len(t, assembly.TestSuites, 2)
	assert.Equal(t, suiteTypeFixture, assembly.TestSuites[0].Type)

	first := assembly.TestSuites[0].TestCases[0]
	assert.Equal(t, "Suite1Tests.test1", first.FullName)
	assert.Equal(t, "hello", first.Output)
	require.NotNil(t, first.Properties)
	assert.Equal(t, []Property{{Name: "Category", Value: "Smoke"}}, first.Properties.Properties)

	// native traits never show up in the extension section
	for _, fixture := range assembly.TestSuites {
		for _, tc := range fixture.TestCases {
			for _, trait := range tc.Extensions.Traits() {
				assert.Equal(t, testreport.SlotExtension, traitSlot(trait.Type), "trait %s in extension", trait.Name)
			}
		}
	}
	assert.Equal(t, []testreport.Attachment{convertertest.Screenshot()}, first.Extensions.AttachmentList())
}

func Test_traitSlot(t *testing.T) {
	want := map[testreport.TraitType]testreport.Slot{
		testreport.TraitIdentifier:     testreport.SlotField,
		testreport.TraitName:           testreport.SlotField,
		testreport.TraitResult:         testreport.SlotField,
		testreport.TraitDuration:       testreport.SlotField,
		testreport.TraitClassName:      testreport.SlotField,
		testreport.TraitAssembly:       testreport.SlotField,
		testreport.TraitMethod:         testreport.SlotField,
		testreport.TraitInstanceID:     testreport.SlotField,
		testreport.TraitComputer:       testreport.SlotField,
		testreport.TraitConsoleOut:     testreport.SlotNative,
		testreport.TraitConsoleErr:     testreport.SlotExtension,
		testreport.TraitFailureMessage: testreport.SlotNative,
		testreport.TraitCallStack:      testreport.SlotNative,
		testreport.TraitCategory:       testreport.SlotNative,
		testreport.TraitPriority:       testreport.SlotNative,
		testreport.TraitInstanceName:   testreport.SlotExtension,
		testreport.TraitCustom:         testreport.SlotExtension,
	}
	for _, traitType := range testreport.TraitTypes() {
		slot, ok := want[traitType]
		require.True(t, ok, "missing slot for %s", traitType)
		assert.Equal(t, slot, traitSlot(traitType), traitType.String())
	}
}

func Test_encodeOutcome(t *testing.T) {
	want := map[testreport.TestResult]outcome{
		testreport.Passed:       {Result: resultPassed},
		testreport.Failed:       {Result: resultFailed},
		testreport.Skipped:      {Result: resultSkipped, Label: labelIgnored},
		testreport.Hang:         {Result: resultFailed, Label: labelTimeout},
		testreport.Inconclusive: {Result: resultInconclusive},
		testreport.Error:        {Result: resultFailed, Label: labelError},
		testreport.NoRun:        {Result: resultSkipped, Label: labelExplicit},
	}
	for _, result := range testreport.TestResults() {
		assert.Equal(t, want[result], encodeOutcome(result), result.String())
	}
}

func Test_decodeOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome outcome
		want    testreport.TestResult
	}{
		{name: "passed", outcome: outcome{Result: resultPassed}, want: testreport.Passed},
		{name: "warning", outcome: outcome{Result: resultWarning}, want: testreport.Passed},
		{name: "failed", outcome: outcome{Result: resultFailed}, want: testreport.Failed},
		{name: "failed with unknown label", outcome: outcome{Result: resultFailed, Label: "Cancelled"}, want: testreport.Failed},
		{name: "error", outcome: outcome{Result: resultFailed, Label: labelError}, want: testreport.Error},
		{name: "invalid", outcome: outcome{Result: resultFailed, Label: labelInvalid}, want: testreport.Error},
		{name: "timeout", outcome: outcome{Result: resultFailed, Label: labelTimeout}, want: testreport.Hang},
		{name: "skipped", outcome: outcome{Result: resultSkipped}, want: testreport.Skipped},
		{name: "ignored", outcome: outcome{Result: resultSkipped, Label: labelIgnored}, want: testreport.Skipped},
		{name: "explicit", outcome: outcome{Result: resultSkipped, Label: labelExplicit}, want: testreport.NoRun},
		{name: "inconclusive", outcome: outcome{Result: resultInconclusive}, want: testreport.Inconclusive},
		{name: "nunit 2 success", outcome: outcome{Result: "Success"}, want: testreport.Passed},
		{name: "nunit 2 failure", outcome: outcome{Result: "Failure"}, want: testreport.Failed},
		{name: "nunit 2 error", outcome: outcome{Result: "Error"}, want: testreport.Error},
		{name: "nunit 2 ignored", outcome: outcome{Result: "Ignored"}, want: testreport.Skipped},
		{name: "nunit 2 not runnable", outcome: outcome{Result: "NotRunnable"}, want: testreport.NoRun},
		{name: "unknown", outcome: outcome{Result: "Exploded"}, want: testreport.Skipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeOutcome(tt.outcome))
		})
	}
}

func Test_runResult(t *testing.T) {
	tests := []struct {
		name    string
		summary testreport.Summary
		want    string
	}{
		{name: "empty", summary: testreport.Summary{}, want: resultPassed},
		{name: "passed", summary: testreport.Summary{Total: 2, Passed: 1, Skipped: 1}, want: resultPassed},
		{name: "only skipped", summary: testreport.Summary{Total: 1, Skipped: 1}, want: resultSkipped},
		{name: "error", summary: testreport.Summary{Total: 1, Error: 1}, want: resultFailed},
		{name: "inconclusive", summary: testreport.Summary{Total: 2, Passed: 1, Inconclusive: 1}, want: resultInconclusive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runResult(tt.summary))
		})
	}
}
