package ctrf

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bitrise-io/go-utils/log"
)

// Report is a Common Test Report Format document.
type Report struct {
	ReportFormat string  `json:"reportFormat"`
	SpecVersion  string  `json:"specVersion"`
	ReportID     string  `json:"reportId,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty"`
	GeneratedBy  string  `json:"generatedBy,omitempty"`
	Results      Results `json:"results"`
}

// Results ...
type Results struct {
	Tool        Tool          `json:"tool"`
	Summary     Summary       `json:"summary"`
	Tests       []Test        `json:"tests"`
	Environment *Environment  `json:"environment,omitempty"`
	Extra       *ResultsExtra `json:"extra,omitempty"`
}

// Tool ...
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Summary ...
type Summary struct {
	Tests   Number `json:"tests"`
	Passed  Number `json:"passed"`
	Failed  Number `json:"failed"`
	Skipped Number `json:"skipped"`
	Pending Number `json:"pending"`
	Other   Number `json:"other"`
	Start   Number `json:"start"`
	Stop    Number `json:"stop"`
}

// Environment ...
type Environment struct {
	ReportName string `json:"reportName,omitempty"`
	AppName    string `json:"appName,omitempty"`
	AppVersion string `json:"appVersion,omitempty"`
	OSPlatform string `json:"osPlatform,omitempty"`
	BuildName  string `json:"buildName,omitempty"`
	BuildID    string `json:"buildId,omitempty"`
	BuildURL   string `json:"buildUrl,omitempty"`
}

// Test ...
type Test struct {
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	Duration    Number       `json:"duration"`
	Start       Number       `json:"start,omitempty"`
	Stop        Number       `json:"stop,omitempty"`
	Suite       string       `json:"suite,omitempty"`
	Message     string       `json:"message,omitempty"`
	Trace       string       `json:"trace,omitempty"`
	RawStatus   string       `json:"rawStatus,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Type        string       `json:"type,omitempty"`
	FilePath    string       `json:"filePath,omitempty"`
	Retries     Number       `json:"retries,omitempty"`
	Flaky       bool         `json:"flaky,omitempty"`
	Stdout      []string     `json:"stdout,omitempty"`
	Stderr      []string     `json:"stderr,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Extra       *TestExtra   `json:"extra,omitempty"`
}

// Number is a numeric field. Reporters write integers as floats or strings, a value which is not
// a finite number reads as zero instead of failing the document.
type Number float64

// UnmarshalJSON ...
func (n *Number) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			log.Debugf("Ignoring number: %s", err)
			*n = 0
			return nil
		}
		value, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			log.Debugf("Ignoring number (%q): %s", s, err)
			*n = 0
			return nil
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	*n = Number(value)
	return nil
}

// Attachment references a file next to the report.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Path        string `json:"path"`
}

// ResultsExtra holds run and suite data CTRF has no place for.
type ResultsExtra struct {
	RunUser  string  `json:"runUser,omitempty"`
	Finished string  `json:"finished,omitempty"`
	Traits   *Traits `json:"traits,omitempty"`
	Suites   []Suite `json:"suites,omitempty"`
}

// UnmarshalJSON decodes the fields of known shape. A foreign extra object is not an error,
// its mismatching fields are left empty.
func (e *ResultsExtra) UnmarshalJSON(data []byte) error {
	type resultsExtra ResultsExtra
	var extra resultsExtra
	if err := json.Unmarshal(data, &extra); err != nil {
		log.Debugf("Ignoring parts of the results extra: %s", err)
	}
	*e = ResultsExtra(extra)
	return nil
}

// Suite ...
type Suite struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Traits *Traits `json:"traits,omitempty"`
}

// TestExtra holds test case data CTRF has no place for.
type TestExtra struct {
	ID           string           `json:"id,omitempty"`
	InstanceID   string           `json:"instanceId,omitempty"`
	SuiteID      string           `json:"suiteId,omitempty"`
	ClassName    string           `json:"className,omitempty"`
	Method       string           `json:"method,omitempty"`
	Assembly     string           `json:"assembly,omitempty"`
	Computer     string           `json:"computer,omitempty"`
	Traits       *Traits          `json:"traits,omitempty"`
	Attachments  []AttachmentData `json:"attachments,omitempty"`
	InnerResults []Test           `json:"innerResults,omitempty"`
}

// UnmarshalJSON decodes the fields of known shape, see ResultsExtra.UnmarshalJSON.
func (e *TestExtra) UnmarshalJSON(data []byte) error {
	type testExtra TestExtra
	var extra testExtra
	if err := json.Unmarshal(data, &extra); err != nil {
		log.Debugf("Ignoring parts of a test extra: %s", err)
	}
	*e = TestExtra(extra)
	return nil
}

// AttachmentData is the base64 encoded content of an attachment.
type AttachmentData struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Encoding    string `json:"encoding"`
	Data        string `json:"data"`
}

// Traits ...
type Traits struct {
	Static   []Trait `json:"static,omitempty"`
	Instance []Trait `json:"instance,omitempty"`
}

// Trait ...
type Trait struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
