package nunit

import (
	"encoding/xml"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
)

// TestRun is the root of an NUnit 3 document. The legacy NUnit 2 root (test-results) decodes into it as well.
type TestRun struct {
	XMLName       xml.Name
	ID            string                `xml:"id,attr,omitempty"`
	Name          string                `xml:"name,attr,omitempty"`
	TestCaseCount xmlutil.Count         `xml:"testcasecount,attr"`
	Result        string                `xml:"result,attr,omitempty"`
	Total         xmlutil.Count         `xml:"total,attr"`
	Passed        xmlutil.Count         `xml:"passed,attr"`
	Failed        xmlutil.Count         `xml:"failed,attr"`
	Inconclusive  xmlutil.Count         `xml:"inconclusive,attr"`
	Skipped       xmlutil.Count         `xml:"skipped,attr"`
	StartTime     string                `xml:"start-time,attr,omitempty"`
	EndTime       string                `xml:"end-time,attr,omitempty"`
	Duration      string                `xml:"duration,attr,omitempty"`
	Date          string                `xml:"date,attr,omitempty"`
	Time          string                `xml:"time,attr,omitempty"`
	Extensions    *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
	TestSuites    []TestSuite           `xml:"test-suite"`
}

// TestSuite ...
type TestSuite struct {
	Type          string                `xml:"type,attr"`
	ID            string                `xml:"id,attr,omitempty"`
	Name          string                `xml:"name,attr"`
	FullName      string                `xml:"fullname,attr,omitempty"`
	ClassName     string                `xml:"classname,attr,omitempty"`
	TestCaseCount xmlutil.Count         `xml:"testcasecount,attr"`
	Result        string                `xml:"result,attr,omitempty"`
	Total         xmlutil.Count         `xml:"total,attr"`
	Passed        xmlutil.Count         `xml:"passed,attr"`
	Failed        xmlutil.Count         `xml:"failed,attr"`
	Inconclusive  xmlutil.Count         `xml:"inconclusive,attr"`
	Skipped       xmlutil.Count         `xml:"skipped,attr"`
	Duration      string                `xml:"duration,attr,omitempty"`
	Time          string                `xml:"time,attr,omitempty"`
	Properties    *Properties           `xml:"properties,omitempty"`
	Extensions    *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
	TestSuites    []TestSuite           `xml:"test-suite"`
	TestCases     []TestCase            `xml:"test-case"`
	Results       *Results              `xml:"results,omitempty"`
}

// Results wraps the children of a suite in NUnit 2 documents.
type Results struct {
	TestSuites []TestSuite `xml:"test-suite"`
	TestCases  []TestCase  `xml:"test-case"`
}

// TestCase ...
type TestCase struct {
	ID         string                `xml:"id,attr,omitempty"`
	Name       string                `xml:"name,attr"`
	FullName   string                `xml:"fullname,attr,omitempty"`
	MethodName string                `xml:"methodname,attr,omitempty"`
	ClassName  string                `xml:"classname,attr,omitempty"`
	Result     string                `xml:"result,attr"`
	Label      string                `xml:"label,attr,omitempty"`
	StartTime  string                `xml:"start-time,attr,omitempty"`
	EndTime    string                `xml:"end-time,attr,omitempty"`
	Duration   string                `xml:"duration,attr,omitempty"`
	Time       string                `xml:"time,attr,omitempty"`
	Properties *Properties           `xml:"properties,omitempty"`
	Failure    *Failure              `xml:"failure,omitempty"`
	Reason     *Reason               `xml:"reason,omitempty"`
	Output     string                `xml:"output,omitempty"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
}

// Properties ...
type Properties struct {
	Properties []Property `xml:"property"`
}

// Property ...
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Failure ...
type Failure struct {
	Message    string `xml:"message,omitempty"`
	StackTrace string `xml:"stack-trace,omitempty"`
}

// Reason ...
type Reason struct {
	Message string `xml:"message,omitempty"`
}
