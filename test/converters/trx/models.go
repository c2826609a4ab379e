package trx

import (
	"encoding/xml"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
)

// TestRun is the root of a TRX document, XMLName carries the TRX namespace on encode.
type TestRun struct {
	XMLName         xml.Name
	ID              string                `xml:"id,attr"`
	Name            string                `xml:"name,attr,omitempty"`
	RunUser         string                `xml:"runUser,attr,omitempty"`
	Times           *Times                `xml:"Times,omitempty"`
	Results         *Results              `xml:"Results,omitempty"`
	TestDefinitions *TestDefinitions      `xml:"TestDefinitions,omitempty"`
	TestEntries     *TestEntries          `xml:"TestEntries,omitempty"`
	TestLists       *TestLists            `xml:"TestLists,omitempty"`
	ResultSummary   *ResultSummary        `xml:"ResultSummary,omitempty"`
	Extensions      *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
}

// Times ...
type Times struct {
	Creation string `xml:"creation,attr,omitempty"`
	Queuing  string `xml:"queuing,attr,omitempty"`
	Start    string `xml:"start,attr,omitempty"`
	Finish   string `xml:"finish,attr,omitempty"`
}

// Results ...
type Results struct {
	UnitTestResults []UnitTestResult `xml:"UnitTestResult"`
}

// UnitTestResult ...
type UnitTestResult struct {
	ExecutionID              string                `xml:"executionId,attr"`
	TestID                   string                `xml:"testId,attr"`
	TestName                 string                `xml:"testName,attr"`
	ComputerName             string                `xml:"computerName,attr,omitempty"`
	Duration                 string                `xml:"duration,attr,omitempty"`
	StartTime                string                `xml:"startTime,attr,omitempty"`
	EndTime                  string                `xml:"endTime,attr,omitempty"`
	TestType                 string                `xml:"testType,attr,omitempty"`
	Outcome                  string                `xml:"outcome,attr"`
	TestListID               string                `xml:"testListId,attr,omitempty"`
	RelativeResultsDirectory string                `xml:"relativeResultsDirectory,attr,omitempty"`
	ResultType               string                `xml:"resultType,attr,omitempty"`
	DataRowInfo              string                `xml:"dataRowInfo,attr,omitempty"`
	Output                   *Output               `xml:"Output,omitempty"`
	InnerResults             *Results              `xml:"InnerResults,omitempty"`
	Extensions               *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
}

// Output ...
type Output struct {
	StdOut    string     `xml:"StdOut,omitempty"`
	StdErr    string     `xml:"StdErr,omitempty"`
	ErrorInfo *ErrorInfo `xml:"ErrorInfo,omitempty"`
}

// ErrorInfo ...
type ErrorInfo struct {
	Message    string `xml:"Message,omitempty"`
	StackTrace string `xml:"StackTrace,omitempty"`
}

// TestDefinitions ...
type TestDefinitions struct {
	UnitTests []UnitTest `xml:"UnitTest"`
}

// UnitTest ...
type UnitTest struct {
	ID           string        `xml:"id,attr"`
	Name         string        `xml:"name,attr"`
	Storage      string        `xml:"storage,attr,omitempty"`
	Priority     string        `xml:"priority,attr,omitempty"`
	TestCategory *TestCategory `xml:"TestCategory,omitempty"`
	Execution    *Execution    `xml:"Execution,omitempty"`
	TestMethod   *TestMethod   `xml:"TestMethod,omitempty"`
}

// TestCategory ...
type TestCategory struct {
	Items []TestCategoryItem `xml:"TestCategoryItem"`
}

// TestCategoryItem ...
type TestCategoryItem struct {
	TestCategory string `xml:"TestCategory,attr"`
}

// Execution ...
type Execution struct {
	ID string `xml:"id,attr"`
}

// TestMethod ...
type TestMethod struct {
	CodeBase        string `xml:"codeBase,attr,omitempty"`
	AdapterTypeName string `xml:"adapterTypeName,attr,omitempty"`
	ClassName       string `xml:"className,attr,omitempty"`
	Name            string `xml:"name,attr"`
}

// TestEntries ...
type TestEntries struct {
	TestEntries []TestEntry `xml:"TestEntry"`
}

// TestEntry joins a test definition, its execution and its test list.
type TestEntry struct {
	TestID      string `xml:"testId,attr"`
	ExecutionID string `xml:"executionId,attr"`
	TestListID  string `xml:"testListId,attr"`
}

// TestLists ...
type TestLists struct {
	TestLists []TestList `xml:"TestList"`
}

// TestList ...
type TestList struct {
	Name       string                `xml:"name,attr"`
	ID         string                `xml:"id,attr"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
}

// ResultSummary is derived from the results, it is ignored on decode.
type ResultSummary struct {
	Outcome  string   `xml:"outcome,attr"`
	Counters Counters `xml:"Counters"`
}

// Counters ...
type Counters struct {
	Total        xmlutil.Count `xml:"total,attr"`
	Executed     xmlutil.Count `xml:"executed,attr"`
	Passed       xmlutil.Count `xml:"passed,attr"`
	Failed       xmlutil.Count `xml:"failed,attr"`
	Error        xmlutil.Count `xml:"error,attr"`
	Timeout      xmlutil.Count `xml:"timeout,attr"`
	Aborted      xmlutil.Count `xml:"aborted,attr"`
	Inconclusive xmlutil.Count `xml:"inconclusive,attr"`
	NotRunnable  xmlutil.Count `xml:"notRunnable,attr"`
	NotExecuted  xmlutil.Count `xml:"notExecuted,attr"`
}
