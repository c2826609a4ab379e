package ctrf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/convertertest"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handWritten = `{
  // written by hand, not by a reporter
  "reportFormat": "CTRF",
  "specVersion": "0.0.0",
  "results": {
    "tool": { "name": "jest" },
    "summary": { "tests": 3, "passed": 1, "failed": 1, "skipped": 0, "pending": 1, "other": 0, "start": 1709287200000, "stop": 1709287205000 },
    "tests": [
      { "name": "adds", "status": "passed", "duration": 12, "suite": "math", "tags": ["fast"], "stdout": ["a", "b"], },
      /* the failing one */
      { "name": "divides", "status": "failed", "duration": 3.5, "suite": "math", "message": "boom", "trace": "at divide()",
        "attachments": [{ "name": "shot.png", "path": "/tmp/shot.png" }] },
      { "name": "later", "status": "pending", "duration": 0, "suite": "other" },
    ],
  },
}`

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

func TestConverter_RoundTripInnerResults(t *testing.T) {
	newRun := func() *testreport.TestRun {
		half := 500 * time.Millisecond
		run := convertertest.SingleCaseRun(testreport.Failed)
		run.Suites[0].TestCases[0].InnerResults = []testreport.TestCaseRun{
			{ID: "test-1", Name: "test1", InstanceID: "row-1", MethodName: "test1", Result: testreport.Passed, Duration: &half},
			{
				ID: "test-1", Name: "test1", InstanceID: "row-2", MethodName: "test1", Result: testreport.Failed, Duration: &half,
				Traits: []testreport.Trait{testreport.NewTrait(testreport.TraitFailureMessage, "row 2 failed", testreport.Instance)},
			},
		}
		return run
	}

	got, _ := convertertest.RoundTrip(t, Converter{}, newRun())
	convertertest.RequireEqualRuns(t, newRun(), got)
}

func TestConverter_Deserialize(t *testing.T) {
	run, err := Converter{}.Deserialize([]byte(handWritten))
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	require.NotNil(t, run.Started)
	assert.True(t, run.Started.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	require.NotNil(t, run.Finished)
	assert.True(t, run.Finished.Equal(time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC)))

	require.Len(t, run.Suites, 2)
	assert.Equal(t, "math", run.Suites[0].Name)
	assert.Equal(t, "other", run.Suites[1].Name)

	math := run.Suites[0].TestCases
	require.Len(t, math, 2)

	assert.Equal(t, "adds", math[0].Name)
	assert.Equal(t, testreport.Passed, math[0].Result)
	require.NotNil(t, math[0].Duration)
	assert.Equal(t, 12*time.Millisecond, *math[0].Duration)
	assert.Equal(t, []string{"fast"}, testreport.FindTraits(math[0].Traits, testreport.TraitCategory))
	assert.Equal(t, []string{"a", "b"}, testreport.FindTraits(math[0].Traits, testreport.TraitConsoleOut))
	assert.NotEmpty(t, math[0].ID)
	assert.NotEmpty(t, math[0].InstanceID)

	assert.Equal(t, testreport.Failed, math[1].Result)
	require.NotNil(t, math[1].Duration)
	assert.Equal(t, 3500*time.Microsecond, *math[1].Duration)
	assert.Equal(t, "boom", testreport.FirstTrait(math[1].Traits, testreport.TraitFailureMessage))
	assert.Equal(t, "at divide()", testreport.FirstTrait(math[1].Traits, testreport.TraitCallStack))
	// attachments referenced only by path can not be carried
	assert.Empty(t, math[1].Attachments)

	require.Len(t, run.Suites[1].TestCases, 1)
	assert.Equal(t, testreport.NoRun, run.Suites[1].TestCases[0].Result)
}

func TestConverter_DeserializeForeignFields(t *testing.T) {
	doc := `{
  "reportFormat": "CTRF",
  "specVersion": "0.0.0",
  "results": {
    "tool": { "name": "playwright" },
    "summary": { "tests": "1", "passed": 1.0, "failed": "n/a", "skipped": null, "pending": 0, "other": 0, "start": 1.7e12, "stop": "later" },
    "tests": [
      { "name": "opens", "status": "passed", "duration": "250", "start": 1.7e12, "stop": "?", "retries": "none", "suite": "ui",
        "extra": { "id": 42, "className": "LoginTests", "traits": "none" } }
    ],
    "extra": { "runUser": 7, "suites": "all" }
  }
}`

	run, err := Converter{}.Deserialize([]byte(doc))
	require.NoError(t, err)

	started := time.UnixMilli(1700000000000)
	require.NotNil(t, run.Started)
	assert.True(t, started.Equal(*run.Started))
	assert.Nil(t, run.Finished)
	assert.Empty(t, run.RunUser)

	require.Len(t, run.Suites, 1)
	assert.Equal(t, "ui", run.Suites[0].Name)
	require.Len(t, run.Suites[0].TestCases, 1)

	tc := run.Suites[0].TestCases[0]
	assert.Equal(t, "opens", tc.Name)
	assert.Equal(t, testreport.Passed, tc.Result)
	assert.NotEmpty(t, tc.ID)
	assert.Equal(t, "LoginTests", tc.ClassName)
	require.NotNil(t, tc.Started)
	assert.True(t, started.Equal(*tc.Started))
	assert.Nil(t, tc.Finished)
	require.NotNil(t, tc.Duration)
	assert.Equal(t, 250*time.Millisecond, *tc.Duration)
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		data string
		want Number
	}{
		{data: `7`, want: 7},
		{data: `3.5`, want: 3.5},
		{data: `1.7e12`, want: 1.7e12},
		{data: `" 12 "`, want: 12},
		{data: `"n/a"`, want: 0},
		{data: `"NaN"`, want: 0},
		{data: `null`, want: 0},
		{data: `true`, want: 0},
		{data: `{"value": 1}`, want: 0},
		{data: `1e400`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			var got struct {
				Value Number `json:"value"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"value": `+tt.data+`}`), &got))
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestNumber_Marshal(t *testing.T) {
	data, err := json.Marshal(Summary{Tests: 7, Start: 1709287200000})
	require.NoError(t, err)
	assert.Equal(t, `{"tests":7,"passed":0,"failed":0,"skipped":0,"pending":0,"other":0,"start":1709287200000,"stop":0}`, string(data))
}

func TestConverter_DeserializeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "truncated", data: `{"reportFormat": "CTRF", "results": {`},
		{name: "array", data: `[1, 2]`},
		{name: "other report format", data: `{"reportFormat": "JUnit", "results": {"tests": []}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Converter{}.Deserialize([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestConverter_Serialize(t *testing.T) {
	data, err := Converter{}.Serialize(convertertest.SampleRun())
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, reportFormat, report.ReportFormat)
	assert.Equal(t, "run-id", report.ReportID)
	assert.Equal(t, Summary{
		Tests:   7,
		Passed:  1,
		Failed:  3,
		Skipped: 1,
		Pending: 1,
		Other:   1,
		Start:   Number(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli()),
		Stop:    Number(time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC).UnixMilli()),
	}, report.Results.Summary)
	require.NotNil(t, report.Results.Environment)
	assert.Equal(t, "run1", report.Results.Environment.ReportName)

	tests := report.Results.Tests
	require.Len(t, tests, 7)

	first := tests[0]
	assert.Equal(t, "suite1", first.Suite)
	assert.Equal(t, []string{"Smoke"}, first.Tags)
	assert.Equal(t, []string{"hello"}, first.Stdout)
	assert.Equal(t, []Attachment{{Name: "screenshot.png", ContentType: "image/png", Path: "attachments/instance-1/screenshot.png"}}, first.Attachments)
	require.NotNil(t, first.Extra)
	assert.Equal(t, "suite-1", first.Extra.SuiteID)
	assert.Equal(t, &Traits{Static: []Trait{{Name: "CustomTestCategory", Value: "UnitTest"}}}, first.Extra.Traits)

	second := tests[1]
	assert.Empty(t, second.RawStatus)
	require.NotNil(t, second.Extra)
	assert.Equal(t, &Traits{Static: []Trait{{Name: "Priority", Value: "1"}}}, second.Extra.Traits)

	hang := tests[3]
	assert.Equal(t, statusFailed, hang.Status)
	assert.Equal(t, "Hang", hang.RawStatus)
}

func TestConverter_SerializeEmptyRun(t *testing.T) {
	data, err := Converter{}.Serialize(&testreport.TestRun{})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tests": []`)
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
		testreport.TraitConsoleErr:     testreport.SlotNative,
		testreport.TraitFailureMessage: testreport.SlotNative,
		testreport.TraitCallStack:      testreport.SlotNative,
		testreport.TraitCategory:       testreport.SlotNative,
		testreport.TraitPriority:       testreport.SlotExtension,
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
	want := map[testreport.TestResult]string{
		testreport.Passed:       statusPassed,
		testreport.Failed:       statusFailed,
		testreport.Skipped:      statusSkipped,
		testreport.Hang:         statusFailed,
		testreport.Inconclusive: statusOther,
		testreport.Error:        statusFailed,
		testreport.NoRun:        statusPending,
	}
	for _, result := range testreport.TestResults() {
		assert.Equal(t, want[result], encodeOutcome(result), result.String())
	}
}

func Test_decodeOutcome(t *testing.T) {
	tests := []struct {
		status string
		want   testreport.TestResult
	}{
		{status: statusPassed, want: testreport.Passed},
		{status: statusFailed, want: testreport.Failed},
		{status: statusSkipped, want: testreport.Skipped},
		{status: statusPending, want: testreport.NoRun},
		{status: statusOther, want: testreport.Inconclusive},
		{status: "Passed", want: testreport.Skipped},
		{status: "", want: testreport.Skipped},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeOutcome(tt.status))
		})
	}
}
