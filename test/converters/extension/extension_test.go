package extension

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xmlutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	XMLName    xml.Name    `xml:"testcase"`
	Extensions *Extensions `xml:"urn:bitrise:test-report-interchange:extensions:v1 Extensions,omitempty"`
}

func TestExtensions_NilSafe(t *testing.T) {
	var ext *Extensions

	assert.Nil(t, ext.Traits())
	assert.Nil(t, ext.AttachmentList())
	assert.Equal(t, Fields{}, ext.Fields())
	assert.Nil(t, ext.Compact())
	assert.Equal(t, testreport.Failed, ext.ResolveResult(testreport.Failed))

	_, ok := ext.CanonicalResult()
	assert.False(t, ok)
}

func TestExtensions_Compact(t *testing.T) {
	assert.Nil(t, New(nil, nil, nil).Compact())
	assert.Nil(t, ForScope([]testreport.Trait{testreport.NewTrait(testreport.TraitName, "run1", testreport.Static)}).Compact())
	assert.Nil(t, New(nil, nil, nil).WithResult(testreport.Failed, testreport.Failed).Compact())
	assert.NotNil(t, New(nil, nil, nil).WithResult(testreport.Hang, testreport.Failed).Compact())
	assert.NotNil(t, New(nil, nil, nil).WithFields(Fields{Computer: "agent-1"}).Compact())
}

func TestExtensions_XMLRoundTrip(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	fields := Fields{
		ID:         "test-1",
		InstanceID: "instance-1",
		Method:     "test1",
		Assembly:   "App.Tests.dll",
		Computer:   "agent-1",
		Started:    &started,
	}
	static := []testreport.Trait{
		testreport.NewCustomTrait("Owner", "team", testreport.Static),
		testreport.NewTrait(testreport.TraitPriority, "1", testreport.Static),
	}
	instance := []testreport.Trait{testreport.NewCustomTrait("Shard", "2", testreport.Instance)}
	attachments := []testreport.Attachment{testreport.NewAttachment("screenshot.png", "", []byte{1, 2, 3})}

	data, err := xmlutil.Marshal(document{
		Extensions: New(static, instance, attachments).WithResult(testreport.Hang, testreport.Failed).WithFields(fields).Compact(),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `xmlns="`+Namespace+`"`)
	assert.Contains(t, string(data), `result="Hang"`)

	var got document
	require.NoError(t, xmlutil.Unmarshal(data, &got))

	assert.Equal(t, append(static, instance...), got.Extensions.Traits())
	assert.Equal(t, attachments, got.Extensions.AttachmentList())
	assert.Equal(t, testreport.Hang, got.Extensions.ResolveResult(testreport.Failed))

	gotFields := got.Extensions.Fields()
	require.NotNil(t, gotFields.Started)
	assert.True(t, started.Equal(*gotFields.Started))
	gotFields.Started = fields.Started
	assert.Equal(t, fields, gotFields)
}

func TestExtensions_AttachmentList(t *testing.T) {
	ext := &Extensions{Attachments: &Attachments{Attachment: []Attachment{
		{Name: "ok.txt", MediaType: "text/plain", Encoding: "base64", Content: "\n  aGVsbG8=\n"},
		{Name: "hex.bin", Encoding: "hex", Content: "00ff"},
		{Name: "broken.png", MediaType: "image/png", Encoding: "base64", Content: "!!!"},
	}}}

	assert.Equal(t, []testreport.Attachment{
		testreport.NewAttachment("ok.txt", "text/plain", []byte("hello")),
	}, ext.AttachmentList())
}

func TestExtensions_UnknownResult(t *testing.T) {
	ext := &Extensions{Result: "Exploded"}
	assert.Equal(t, testreport.Passed, ext.ResolveResult(testreport.Passed))
}

func TestExtensions_InnerResultsRoundTrip(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(250 * time.Millisecond)
	duration := 250 * time.Millisecond
	parent := testreport.TestCaseRun{
		ID:         "test-1",
		Name:       "test1",
		ClassName:  "Tests",
		MethodName: "test1",
		Assembly:   "App.Tests.dll",
	}
	inner := []testreport.TestCaseRun{
		{
			InstanceID:   "row-1",
			ComputerName: "agent-1",
			Result:       testreport.Failed,
			Started:      &started,
			Finished:     &finished,
			Duration:     &duration,
			Attachments:  []testreport.Attachment{testreport.NewAttachment("log.txt", "text/plain", []byte("row 1"))},
			Traits: []testreport.Trait{
				testreport.NewCustomTrait("Row", "1", testreport.Static),
				testreport.NewTrait(testreport.TraitFailureMessage, "row 1 failed", testreport.Instance),
			},
			InnerResults: []testreport.TestCaseRun{{InstanceID: "row-1-retry", Result: testreport.Passed}},
		},
	}

	data, err := xmlutil.Marshal(document{Extensions: New(nil, nil, nil).WithInnerResults(inner).Compact()})
	require.NoError(t, err)
	assert.Contains(t, string(data), `<InnerResult result="Failed" instanceId="row-1" computer="agent-1"`)
	assert.NotContains(t, string(data), "App.Tests.dll")

	var got document
	require.NoError(t, xmlutil.Unmarshal(data, &got))

	results := got.Extensions.InnerResultList(parent)
	require.Len(t, results, 1)
	first := results[0]
	assert.Equal(t, "test-1", first.ID)
	assert.Equal(t, "test1", first.Name)
	assert.Equal(t, "Tests", first.ClassName)
	assert.Equal(t, "test1", first.MethodName)
	assert.Equal(t, "App.Tests.dll", first.Assembly)
	assert.Equal(t, "row-1", first.InstanceID)
	assert.Equal(t, "agent-1", first.ComputerName)
	assert.Equal(t, testreport.Failed, first.Result)
	require.NotNil(t, first.Duration)
	assert.Equal(t, duration, *first.Duration)
	require.NotNil(t, first.Started)
	assert.True(t, started.Equal(*first.Started))
	require.NotNil(t, first.Finished)
	assert.True(t, finished.Equal(*first.Finished))
	assert.Equal(t, inner[0].Attachments, first.Attachments)
	assert.Equal(t, inner[0].Traits, first.Traits)

	require.Len(t, first.InnerResults, 1)
	assert.Equal(t, "row-1-retry", first.InnerResults[0].InstanceID)
	assert.Equal(t, testreport.Passed, first.InnerResults[0].Result)
	assert.Equal(t, "test-1", first.InnerResults[0].ID)
	assert.Equal(t, "App.Tests.dll", first.InnerResults[0].Assembly)
}

func TestExtensions_InnerResultList(t *testing.T) {
	ext := &Extensions{InnerResults: &InnerResults{InnerResult: []InnerResult{
		{Result: "Exploded", Duration: "abc"},
	}}}

	results := ext.InnerResultList(testreport.TestCaseRun{ID: "test-1", Name: "test1"})
	require.Len(t, results, 1)
	assert.Equal(t, testreport.Skipped, results[0].Result)
	assert.Equal(t, "test1", results[0].Name)
	assert.NotEmpty(t, results[0].InstanceID)
	assert.Nil(t, results[0].Duration)

	assert.Nil(t, New(nil, nil, nil).WithInnerResults(nil).InnerResults)
	assert.Nil(t, (*Extensions)(nil).InnerResultList(testreport.TestCaseRun{}))
}
