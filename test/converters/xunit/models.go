package xunit

import (
	"encoding/xml"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/extension"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
)

// Assemblies ...
type Assemblies struct {
	XMLName    xml.Name              `xml:"assemblies"`
	Timestamp  string                `xml:"timestamp,attr,omitempty"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
	Assemblies []Assembly            `xml:"assembly"`
}

// Assembly ...
type Assembly struct {
	XMLName       xml.Name      `xml:"assembly"`
	Name          string        `xml:"name,attr"`
	ConfigFile    string        `xml:"config-file,attr,omitempty"`
	TestFramework string        `xml:"test-framework,attr,omitempty"`
	Environment   string        `xml:"environment,attr,omitempty"`
	RunDate       string        `xml:"run-date,attr,omitempty"`
	RunTime       string        `xml:"run-time,attr,omitempty"`
	Time          string        `xml:"time,attr,omitempty"`
	Total         xmlutil.Count `xml:"total,attr"`
	Passed        xmlutil.Count `xml:"passed,attr"`
	Failed        xmlutil.Count `xml:"failed,attr"`
	Skipped       xmlutil.Count `xml:"skipped,attr"`
	Errors        *Errors       `xml:"errors"`
	Collections   []Collection  `xml:"collection"`
}

// Errors ...
type Errors struct {
	Errors []Error `xml:"error"`
}

// Error is an environment error, not bound to a test.
type Error struct {
	Type    string   `xml:"type,attr,omitempty"`
	Name    string   `xml:"name,attr,omitempty"`
	Failure *Failure `xml:"failure,omitempty"`
}

// Collection ...
type Collection struct {
	Name       string                `xml:"name,attr"`
	Time       string                `xml:"time,attr,omitempty"`
	Total      xmlutil.Count         `xml:"total,attr"`
	Passed     xmlutil.Count         `xml:"passed,attr"`
	Failed     xmlutil.Count         `xml:"failed,attr"`
	Skipped    xmlutil.Count         `xml:"skipped,attr"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
	Tests      []Test                `xml:"test"`
}

// Test ...
type Test struct {
	Name       string                `xml:"name,attr"`
	Type       string                `xml:"type,attr,omitempty"`
	Method     string                `xml:"method,attr,omitempty"`
	Time       string                `xml:"time,attr,omitempty"`
	Result     string                `xml:"result,attr"`
	Traits     *Traits               `xml:"traits,omitempty"`
	Failure    *Failure              `xml:"failure,omitempty"`
	Reason     string                `xml:"reason,omitempty"`
	Output     string                `xml:"output,omitempty"`
	Extensions *extension.Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
}

// Traits ...
type Traits struct {
	Traits []Trait `xml:"trait"`
}

// Trait ...
type Trait struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Failure ...
type Failure struct {
	ExceptionType string `xml:"exception-type,attr,omitempty"`
	Message       string `xml:"message,omitempty"`
	StackTrace    string `xml:"stack-trace,omitempty"`
}
