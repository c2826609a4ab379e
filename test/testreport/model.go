// Package testreport contains the canonical, format independent test run model.
// Every converter decodes into and encodes from these types.
package testreport

import "time"

// DefaultContentType is used for attachments without a declared media type.
const DefaultContentType = "application/octet-stream"

// TestRun is one test execution session.
type TestRun struct {
	// ID is the format native run identifier, it is used as a join key on re-import.
	ID       string
	Name     string
	RunUser  string
	Started  *time.Time
	Finished *time.Time
	Suites   []TestSuite
	Traits   []Trait
}

// TestSuite groups test cases within a run.
type TestSuite struct {
	ID        string
	Name      string
	Traits    []Trait
	TestCases []TestCaseRun
}

// TestCaseRun is one executed test case.
type TestCaseRun struct {
	ID   string
	Name string
	// InstanceID identifies this execution, the same test definition
	// can run multiple times (retries, data driven iterations).
	InstanceID   string
	ClassName    string
	MethodName   string
	Assembly     string
	ComputerName string
	Result       TestResult
	Started      *time.Time
	Finished     *time.Time
	Duration     *time.Duration
	Attachments  []Attachment
	Traits       []Trait
	InnerResults []TestCaseRun
}

// Attachment ...
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewAttachment returns an attachment, falling back to DefaultContentType.
func NewAttachment(name, contentType string, data []byte) Attachment {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return Attachment{Name: name, ContentType: contentType, Data: data}
}

// CaseCount returns the number of test cases in the run, inner results excluded.
func (r TestRun) CaseCount() int {
	count := 0
	for _, suite := range r.Suites {
		count += len(suite.TestCases)
	}
	return count
}

// Summary holds derived counters of a run.
type Summary struct {
	Total        int
	Passed       int
	Failed       int
	Skipped      int
	Hang         int
	Inconclusive int
	Error        int
	NoRun        int
}

// Executed returns the number of test cases which were actually run.
func (s Summary) Executed() int {
	return s.Total - s.Skipped - s.NoRun
}

// Add counts the given result.
func (s *Summary) Add(result TestResult) {
	s.Total++
	switch result {
	case Passed:
		s.Passed++
	case Failed:
		s.Failed++
	case Skipped:
		s.Skipped++
	case Hang:
		s.Hang++
	case Inconclusive:
		s.Inconclusive++
	case Error:
		s.Error++
	case NoRun:
		s.NoRun++
	}
}

// Summarize computes counters for the given test cases.
func Summarize(cases []TestCaseRun) Summary {
	var s Summary
	for _, tc := range cases {
		s.Add(tc.Result)
	}
	return s
}

// Summary computes counters over every test case of the run.
func (r TestRun) Summary() Summary {
	var s Summary
	for _, suite := range r.Suites {
		for _, tc := range suite.TestCases {
			s.Add(tc.Result)
		}
	}
	return s
}
