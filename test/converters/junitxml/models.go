package junitxml

import (
	"encoding/xml"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
)

// TestReport ...
type TestReport struct {
	XMLName    xml.Name              `xml:"testsuites"`
	Name       string                `xml:"name,attr,omitempty"`
	Tests      xmlutil.Count         `xml:"tests,attr"`
	Failures   xmlutil.Count         `xml:"failures,attr"`
	Errors     xmlutil.Count         `xml:"errors,attr"`
	Skipped    xmlutil.Count         `xml:"skipped,attr"`
	Time       string                `xml:"time,attr,omitempty"`
	Timestamp  string                `xml:"timestamp,attr,omitempty"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
	TestSuites []TestSuite           `xml:"testsuite"`
}

// TestSuite ...
type TestSuite struct {
	XMLName    xml.Name              `xml:"testsuite"`
	ID         string                `xml:"id,attr,omitempty"`
	Name       string                `xml:"name,attr"`
	Tests      xmlutil.Count         `xml:"tests,attr"`
	Failures   xmlutil.Count         `xml:"failures,attr"`
	Errors     xmlutil.Count         `xml:"errors,attr"`
	Skipped    xmlutil.Count         `xml:"skipped,attr"`
	Time       string                `xml:"time,attr,omitempty"`
	Timestamp  string                `xml:"timestamp,attr,omitempty"`
	Hostname   string                `xml:"hostname,attr,omitempty"`
	Properties *Properties           `xml:"properties,omitempty"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
	TestCases  []TestCase            `xml:"testcase"`
	TestSuites []TestSuite           `xml:"testsuite"`
}

// TestCase ...
type TestCase struct {
	XMLName    xml.Name              `xml:"testcase"`
	Name       string                `xml:"name,attr"`
	ClassName  string                `xml:"classname,attr"`
	Time       string                `xml:"time,attr,omitempty"`
	File       string                `xml:"file,attr,omitempty"`
	Properties *Properties           `xml:"properties,omitempty"`
	Failure    *Failure              `xml:"failure,omitempty"`
	Error      *Error                `xml:"error,omitempty"`
	Skipped    *Skipped              `xml:"skipped,omitempty"`
	SystemOut  string                `xml:"system-out,omitempty"`
	SystemErr  string                `xml:"system-err,omitempty"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
}

// Failure ...
type Failure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// Error ...
type Error struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// Skipped ...
type Skipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Properties ...
type Properties struct {
	Property []Property `xml:"property"`
}

// Property ...
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}
