// Package extension implements the custom XML section the XML converters use to carry
// data the wire formats have no place for: generic traits, attachments and the canonical result.
//
// The section lives in its own namespace so that tools reading the native format ignore it:
//
//	<Extensions xmlns="urn:bitrise:test-report-interchange:extensions:v1" result="Hang">
//	  <Attachments>
//	    <Attachment name="screenshot.png" mediaType="image/png" encoding="base64">AQID</Attachment>
//	  </Attachments>
//	  <StaticTraits><Trait name="Owner" value="team"/></StaticTraits>
//	  <InstanceTraits><Trait name="Shard" value="2"/></InstanceTraits>
//	  <InnerResults>
//	    <InnerResult result="Failed" instanceId="row-2" duration="0.5">
//	      <InstanceTraits><Trait name="FailureMessage" value="row 2 failed"/></InstanceTraits>
//	    </InnerResult>
//	  </InnerResults>
//	</Extensions>
package extension

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/log"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/timeutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
)

// Namespace of the Extensions element. Struct tags embedding the element repeat it literally.
const Namespace = "urn:bitrise:test-report-interchange:extensions:v1"

const base64Encoding = "base64"

// Extensions ...
type Extensions struct {
	Result         string        `xml:"result,attr,omitempty"`
	ID             string        `xml:"id,attr,omitempty"`
	Name           string        `xml:"name,attr,omitempty"`
	InstanceID     string        `xml:"instanceId,attr,omitempty"`
	Method         string        `xml:"method,attr,omitempty"`
	Assembly       string        `xml:"assembly,attr,omitempty"`
	Computer       string        `xml:"computer,attr,omitempty"`
	User           string        `xml:"user,attr,omitempty"`
	Start          string        `xml:"start,attr,omitempty"`
	End            string        `xml:"end,attr,omitempty"`
	Attachments    *Attachments  `xml:"Attachments,omitempty"`
	StaticTraits   *Traits       `xml:"StaticTraits,omitempty"`
	InstanceTraits *Traits       `xml:"InstanceTraits,omitempty"`
	InnerResults   *InnerResults `xml:"InnerResults,omitempty"`
}

// Fields are model fields a format has no native place for.
type Fields struct {
	ID         string
	Name       string
	InstanceID string
	Method     string
	Assembly   string
	Computer   string
	User       string
	Started    *time.Time
	Finished   *time.Time
}

// Attachments ...
type Attachments struct {
	Attachment []Attachment `xml:"Attachment"`
}

// Attachment ...
type Attachment struct {
	Name      string `xml:"name,attr"`
	MediaType string `xml:"mediaType,attr,omitempty"`
	Encoding  string `xml:"encoding,attr"`
	Content   string `xml:",chardata"`
}

// Traits ...
type Traits struct {
	Trait []Trait `xml:"Trait"`
}

// Trait ...
type Trait struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// InnerResults ...
type InnerResults struct {
	InnerResult []InnerResult `xml:"InnerResult"`
}

// InnerResult is one execution nested under a test case. The identity (id, name, class name,
// method and assembly) is not written, inner results share it with their parent.
type InnerResult struct {
	Result         string        `xml:"result,attr"`
	InstanceID     string        `xml:"instanceId,attr,omitempty"`
	Computer       string        `xml:"computer,attr,omitempty"`
	Start          string        `xml:"start,attr,omitempty"`
	End            string        `xml:"end,attr,omitempty"`
	Duration       string        `xml:"duration,attr,omitempty"`
	Attachments    *Attachments  `xml:"Attachments,omitempty"`
	StaticTraits   *Traits       `xml:"StaticTraits,omitempty"`
	InstanceTraits *Traits       `xml:"InstanceTraits,omitempty"`
	InnerResults   *InnerResults `xml:"InnerResults,omitempty"`
}

// New builds the section. Call Compact before embedding it into a document.
func New(static, instance []testreport.Trait, attachments []testreport.Attachment) *Extensions {
	return &Extensions{
		Attachments:    newAttachments(attachments),
		StaticTraits:   newTraits(static),
		InstanceTraits: newTraits(instance),
	}
}

func newAttachments(attachments []testreport.Attachment) *Attachments {
	if len(attachments) == 0 {
		return nil
	}
	a := &Attachments{}
	for _, attachment := range attachments {
		mediaType := attachment.ContentType
		if mediaType == "" {
			mediaType = testreport.DefaultContentType
		}
		a.Attachment = append(a.Attachment, Attachment{
			Name:      attachment.Name,
			MediaType: mediaType,
			Encoding:  base64Encoding,
			Content:   base64.StdEncoding.EncodeToString(attachment.Data),
		})
	}
	return a
}

// WithResult records the canonical result if decoding the native outcome
// would not give back the same result.
func (e *Extensions) WithResult(result, decoded testreport.TestResult) *Extensions {
	if result != decoded {
		e.Result = result.String()
	}
	return e
}

// WithFields records model fields the format can not hold natively.
func (e *Extensions) WithFields(fields Fields) *Extensions {
	e.ID = fields.ID
	e.Name = fields.Name
	e.InstanceID = fields.InstanceID
	e.Method = fields.Method
	e.Assembly = fields.Assembly
	e.Computer = fields.Computer
	e.User = fields.User
	e.Start = timeutil.FormatTimestamp(fields.Started)
	e.End = timeutil.FormatTimestamp(fields.Finished)
	return e
}

// WithInnerResults records the inner results of a test case with all of their traits.
func (e *Extensions) WithInnerResults(inner []testreport.TestCaseRun) *Extensions {
	e.InnerResults = newInnerResults(inner)
	return e
}

func newInnerResults(inner []testreport.TestCaseRun) *InnerResults {
	if len(inner) == 0 {
		return nil
	}
	results := &InnerResults{}
	for _, tc := range inner {
		var static, instance []testreport.Trait
		for _, trait := range tc.Traits {
			if trait.ExportType == testreport.Instance {
				instance = append(instance, trait)
			} else {
				static = append(static, trait)
			}
		}

		results.InnerResult = append(results.InnerResult, InnerResult{
			Result:         tc.Result.String(),
			InstanceID:     tc.InstanceID,
			Computer:       tc.ComputerName,
			Start:          timeutil.FormatTimestamp(tc.Started),
			End:            timeutil.FormatTimestamp(tc.Finished),
			Duration:       timeutil.FormatSeconds(tc.Duration),
			Attachments:    newAttachments(tc.Attachments),
			StaticTraits:   newTraits(static),
			InstanceTraits: newTraits(instance),
			InnerResults:   newInnerResults(tc.InnerResults),
		})
	}
	return results
}

// Compact returns nil if the section is empty, an empty section is never written.
func (e *Extensions) Compact() *Extensions {
	if e == nil || *e == (Extensions{}) {
		return nil
	}
	return e
}

// ForScope builds the section of a run or a suite, call Compact before embedding it.
func ForScope(traits []testreport.Trait) *Extensions {
	_, static, instance := testreport.PartitionTraits(traits, testreport.ScopeSlot)
	return New(static, instance, nil)
}

func newTraits(traits []testreport.Trait) *Traits {
	if len(traits) == 0 {
		return nil
	}
	t := &Traits{}
	for _, trait := range traits {
		t.Trait = append(t.Trait, Trait{Name: trait.Name, Value: trait.Value})
	}
	return t
}

// Traits returns the generic traits of the section, static ones first.
func (e *Extensions) Traits() []testreport.Trait {
	if e == nil {
		return nil
	}
	return decodeTraits(e.StaticTraits, e.InstanceTraits)
}

func decodeTraits(static, instance *Traits) []testreport.Trait {
	var traits []testreport.Trait
	if static != nil {
		for _, trait := range static.Trait {
			traits = append(traits, decodeTrait(trait, testreport.Static))
		}
	}
	if instance != nil {
		for _, trait := range instance.Trait {
			traits = append(traits, decodeTrait(trait, testreport.Instance))
		}
	}
	return traits
}

func decodeTrait(trait Trait, exportType testreport.ExportType) testreport.Trait {
	return testreport.Trait{
		Type:       testreport.TraitTypeForName(trait.Name),
		Name:       trait.Name,
		Value:      trait.Value,
		ExportType: exportType,
	}
}

// AttachmentList decodes the attachments, entries with an unsupported encoding
// or an invalid payload are skipped.
func (e *Extensions) AttachmentList() []testreport.Attachment {
	if e == nil {
		return nil
	}
	return decodeAttachments(e.Attachments)
}

func decodeAttachments(a *Attachments) []testreport.Attachment {
	if a == nil {
		return nil
	}
	var attachments []testreport.Attachment
	for _, attachment := range a.Attachment {
		if attachment.Encoding != base64Encoding {
			log.Debugf("Skipping attachment (%s): unsupported encoding: %s", attachment.Name, attachment.Encoding)
			continue
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(attachment.Content))
		if err != nil {
			log.Debugf("Skipping attachment (%s): %s", attachment.Name, err)
			continue
		}
		attachments = append(attachments, testreport.NewAttachment(attachment.Name, attachment.MediaType, data))
	}
	return attachments
}

// InnerResultList decodes the inner results of parent, they get the identity of parent.
// An unknown result reads as Skipped.
func (e *Extensions) InnerResultList(parent testreport.TestCaseRun) []testreport.TestCaseRun {
	if e == nil {
		return nil
	}
	return decodeInnerResults(e.InnerResults, parent)
}

func decodeInnerResults(results *InnerResults, parent testreport.TestCaseRun) []testreport.TestCaseRun {
	if results == nil {
		return nil
	}
	var list []testreport.TestCaseRun
	for _, inner := range results.InnerResult {
		result, ok := testreport.ParseTestResult(inner.Result)
		if !ok {
			log.Debugf("Unknown inner result (%s) of %s, reading it as Skipped", inner.Result, parent.Name)
			result = testreport.Skipped
		}

		tc := testreport.TestCaseRun{
			ID:           parent.ID,
			Name:         parent.Name,
			InstanceID:   inner.InstanceID,
			ClassName:    parent.ClassName,
			MethodName:   parent.MethodName,
			Assembly:     parent.Assembly,
			ComputerName: inner.Computer,
			Result:       result,
			Started:      timeutil.ParseTimestamp(inner.Start),
			Finished:     timeutil.ParseTimestamp(inner.End),
			Duration:     timeutil.ParseSeconds(inner.Duration),
			Attachments:  decodeAttachments(inner.Attachments),
			Traits:       decodeTraits(inner.StaticTraits, inner.InstanceTraits),
		}
		if tc.InstanceID == "" {
			tc.InstanceID = testreport.NewID()
		}
		tc.InnerResults = decodeInnerResults(inner.InnerResults, tc)
		list = append(list, tc)
	}
	return list
}

// CanonicalResult returns the recorded canonical result, if any.
func (e *Extensions) CanonicalResult() (testreport.TestResult, bool) {
	if e == nil || e.Result == "" {
		return testreport.Skipped, false
	}
	return testreport.ParseTestResult(e.Result)
}

// Fields returns the recorded model fields.
func (e *Extensions) Fields() Fields {
	if e == nil {
		return Fields{}
	}
	return Fields{
		ID:         e.ID,
		Name:       e.Name,
		InstanceID: e.InstanceID,
		Method:     e.Method,
		Assembly:   e.Assembly,
		Computer:   e.Computer,
		User:       e.User,
		Started:    timeutil.ParseTimestamp(e.Start),
		Finished:   timeutil.ParseTimestamp(e.End),
	}
}

// ResolveResult prefers the recorded canonical result over the natively decoded one.
func (e *Extensions) ResolveResult(decoded testreport.TestResult) testreport.TestResult {
	if result, ok := e.CanonicalResult(); ok {
		return result
	}
	return decoded
}
