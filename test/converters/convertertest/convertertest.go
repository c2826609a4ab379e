// Package convertertest holds the sample runs and comparison options the converter tests share.
package convertertest

import (
	"testing"
	"time"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// Codec ...
type Codec interface {
	Serialize(run *testreport.TestRun) ([]byte, error)
	Deserialize(data []byte) (*testreport.TestRun, error)
}

var (
	started  = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	finished = time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

// Screenshot is the attachment of the first test case of SampleRun.
func Screenshot() testreport.Attachment {
	return testreport.NewAttachment("screenshot.png", "image/png", []byte{1, 2, 3})
}

// SampleRun returns a run using every model field a format can carry without inner results.
// Traits use the export type the decoders assign to native traits.
func SampleRun() *testreport.TestRun {
	return &testreport.TestRun{
		ID:       "run-id",
		Name:     "run1",
		RunUser:  "builder",
		Started:  timePtr(started),
		Finished: timePtr(finished),
		Traits: []testreport.Trait{
			testreport.NewCustomTrait("Branch", "main", testreport.Static),
			testreport.NewCustomTrait("Shard", "1", testreport.Instance),
		},
		Suites: []testreport.TestSuite{
			{
				ID:     "suite-1",
				Name:   "suite1",
				Traits: []testreport.Trait{testreport.NewCustomTrait("Owner", "team", testreport.Static)},
				TestCases: []testreport.TestCaseRun{
					{
						ID:           "test-1",
						Name:         "test1",
						InstanceID:   "instance-1",
						ClassName:    "Suite1Tests",
						MethodName:   "test1",
						Assembly:     "App.Tests.dll",
						ComputerName: "agent-1",
						Result:       testreport.Passed,
						Started:      timePtr(started),
						Finished:     timePtr(started.Add(1500 * time.Millisecond)),
						Duration:     durationPtr(1500 * time.Millisecond),
						Attachments:  []testreport.Attachment{Screenshot()},
						Traits: []testreport.Trait{
							testreport.NewTrait(testreport.TraitCategory, "Smoke", testreport.Static),
							testreport.NewCustomTrait("CustomTestCategory", "UnitTest", testreport.Static),
							testreport.NewTrait(testreport.TraitConsoleOut, "hello", testreport.Instance),
							testreport.NewTrait(testreport.TraitConsoleErr, "warning", testreport.Instance),
						},
					},
					{
						ID:           "test-2",
						Name:         "test2",
						InstanceID:   "instance-2",
						ClassName:    "Suite1Tests",
						MethodName:   "test2",
						Assembly:     "App.Tests.dll",
						ComputerName: "agent-1",
						Result:       testreport.Failed,
						Duration:     durationPtr(250 * time.Millisecond),
						Traits: []testreport.Trait{
							testreport.NewTrait(testreport.TraitPriority, "1", testreport.Static),
							testreport.NewTrait(testreport.TraitFailureMessage, "expected true", testreport.Instance),
							testreport.NewTrait(testreport.TraitCallStack, "at Suite1Tests.test2()", testreport.Instance),
						},
					},
				},
			},
			{
				ID:   "suite-2",
				Name: "suite2",
				TestCases: []testreport.TestCaseRun{
					{
						ID:         "test-3",
						Name:       "test3",
						InstanceID: "instance-3",
						ClassName:  "Suite2Tests",
						MethodName: "test3",
						Assembly:   "App.Tests.dll",
						Result:     testreport.Skipped,
						Duration:   durationPtr(0),
						Traits: []testreport.Trait{
							testreport.NewTrait(testreport.TraitFailureMessage, "not supported", testreport.Instance),
						},
					},
					{
						ID:         "test-4",
						Name:       "test4",
						InstanceID: "instance-4",
						ClassName:  "Suite2Tests",
						MethodName: "test4",
						Assembly:   "App.Tests.dll",
						Result:     testreport.Hang,
						Duration:   durationPtr(30 * time.Second),
					},
					{
						ID:         "test-5",
						Name:       "test5",
						InstanceID: "instance-5",
						ClassName:  "Suite2Tests",
						MethodName: "test5",
						Assembly:   "App.Tests.dll",
						Result:     testreport.Error,
						Duration:   durationPtr(10 * time.Millisecond),
						Traits: []testreport.Trait{
							testreport.NewTrait(testreport.TraitFailureMessage, "boom", testreport.Instance),
						},
					},
					{
						ID:         "test-6",
						Name:       "test6",
						InstanceID: "instance-6",
						ClassName:  "Suite2Tests",
						MethodName: "test6",
						Assembly:   "App.Tests.dll",
						Result:     testreport.Inconclusive,
						Duration:   durationPtr(0),
					},
					{
						ID:         "test-7",
						Name:       "test7",
						InstanceID: "instance-7",
						ClassName:  "Suite2Tests",
						MethodName: "test7",
						Assembly:   "App.Tests.dll",
						Result:     testreport.NoRun,
						Duration:   durationPtr(0),
					},
				},
			},
		},
	}
}

// SingleCaseRun returns a run with one case of the given result.
func SingleCaseRun(result testreport.TestResult) *testreport.TestRun {
	return &testreport.TestRun{
		ID:   "run-id",
		Name: "run1",
		Suites: []testreport.TestSuite{
			{
				ID:   "suite-1",
				Name: "suite1",
				TestCases: []testreport.TestCaseRun{
					{
						ID:         "test-1",
						Name:       "test1",
						InstanceID: "instance-1",
						MethodName: "test1",
						Result:     result,
						Duration:   durationPtr(time.Second),
					},
				},
			},
		},
	}
}

// InnerResultRun returns a run with one data driven case holding two inner results.
// The inner results share the identity of their parent.
func InnerResultRun() *testreport.TestRun {
	run := SingleCaseRun(testreport.Failed)
	run.Suites[0].TestCases[0].InnerResults = []testreport.TestCaseRun{
		{
			ID:         "test-1",
			Name:       "test1",
			InstanceID: "row-1",
			MethodName: "test1",
			Result:     testreport.Passed,
			Duration:   durationPtr(500 * time.Millisecond),
			Traits: []testreport.Trait{
				testreport.NewCustomTrait("Row", "1", testreport.Instance),
			},
		},
		{
			ID:           "test-1",
			Name:         "test1",
			InstanceID:   "row-2",
			MethodName:   "test1",
			ComputerName: "agent-2",
			Result:       testreport.Failed,
			Started:      timePtr(started),
			Finished:     timePtr(started.Add(500 * time.Millisecond)),
			Duration:     durationPtr(500 * time.Millisecond),
			Attachments:  []testreport.Attachment{Screenshot()},
			Traits: []testreport.Trait{
				testreport.NewCustomTrait("Row", "2", testreport.Instance),
				testreport.NewTrait(testreport.TraitFailureMessage, "row 2 failed", testreport.Instance),
			},
		},
	}
	return run
}

// Options compares runs regardless of trait order, time zones and nil versus empty slices.
func Options() []cmp.Option {
	return []cmp.Option{
		cmpopts.EquateEmpty(),
		cmp.Comparer(func(a, b time.Time) bool {
			return a.Equal(b)
		}),
		cmpopts.SortSlices(func(a, b testreport.Trait) bool {
			if a.Type != b.Type {
				return a.Type < b.Type
			}
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			if a.Value != b.Value {
				return a.Value < b.Value
			}
			return a.ExportType < b.ExportType
		}),
	}
}

// RoundTrip serializes run with codec and reads it back.
func RoundTrip(t *testing.T, codec Codec, run *testreport.TestRun) (*testreport.TestRun, []byte) {
	t.Helper()

	data, err := codec.Serialize(run)
	require.NoError(t, err)

	got, err := codec.Deserialize(data)
	require.NoError(t, err)
	return got, data
}

// RequireEqualRuns fails the test with a diff if the runs differ.
func RequireEqualRuns(t *testing.T, want, got *testreport.TestRun) {
	t.Helper()

	if diff := cmp.Diff(want, got, Options()...); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}
}
