// Package builder assembles test runs with a fluent API and encodes them in any supported format.
//
//	data, err := builder.New().SetName("run1").
//		AddSuite().SetName("suite1").
//		AddCase().SetName("test1").SetResult(testreport.Failed).
//		Build(format.JUnitXML)
package builder

import (
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/format"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
)

// RunBuilder ...
type RunBuilder struct {
	run *testreport.TestRun
}

// SuiteBuilder ...
type SuiteBuilder struct {
	run   *RunBuilder
	index int
}

// CaseBuilder ...
type CaseBuilder struct {
	suite *SuiteBuilder
	index int
}

// New starts an empty run.
func New() *RunBuilder {
	return &RunBuilder{run: &testreport.TestRun{}}
}

// SetName ...
func (b *RunBuilder) SetName(name string) *RunBuilder {
	b.run.Name = name
	return b
}

// SetUser ...
func (b *RunBuilder) SetUser(user string) *RunBuilder {
	b.run.RunUser = user
	return b
}

// AddTrait adds a custom static trait to the run.
func (b *RunBuilder) AddTrait(name, value string) *RunBuilder {
	b.run.Traits = append(b.run.Traits, testreport.NewCustomTrait(name, value, testreport.Static))
	return b
}

// AddSuite appends a new suite and continues with it.
func (b *RunBuilder) AddSuite() *SuiteBuilder {
	b.run.Suites = append(b.run.Suites, testreport.TestSuite{})
	return &SuiteBuilder{run: b, index: len(b.run.Suites) - 1}
}

// Run returns the assembled run without encoding it.
func (b *RunBuilder) Run() *testreport.TestRun {
	return b.run
}

// Build encodes the run in the given format.
func (b *RunBuilder) Build(f format.Format) ([]byte, error) {
	codec, err := converters.ForFormat(f)
	if err != nil {
		return nil, err
	}
	return codec.Serialize(b.run)
}

func (s *SuiteBuilder) suite() *testreport.TestSuite {
	return &s.run.run.Suites[s.index]
}

// SetName ...
func (s *SuiteBuilder) SetName(name string) *SuiteBuilder {
	s.suite().Name = name
	return s
}

// AddTrait adds a custom static trait to the suite.
func (s *SuiteBuilder) AddTrait(name, value string) *SuiteBuilder {
	suite := s.suite()
	suite.Traits = append(suite.Traits, testreport.NewCustomTrait(name, value, testreport.Static))
	return s
}

// AddCase appends a new passed test case and continues with it.
func (s *SuiteBuilder) AddCase() *CaseBuilder {
	suite := s.suite()
	suite.TestCases = append(suite.TestCases, testreport.TestCaseRun{Result: testreport.Passed})
	return &CaseBuilder{suite: s, index: len(suite.TestCases) - 1}
}

// AddSuite appends a new suite to the run.
func (s *SuiteBuilder) AddSuite() *SuiteBuilder {
	return s.run.AddSuite()
}

// Run ...
func (s *SuiteBuilder) Run() *testreport.TestRun {
	return s.run.Run()
}

// Build ...
func (s *SuiteBuilder) Build(f format.Format) ([]byte, error) {
	return s.run.Build(f)
}

func (c *CaseBuilder) testCase() *testreport.TestCaseRun {
	return &c.suite.suite().TestCases[c.index]
}

// SetName ...
func (c *CaseBuilder) SetName(name string) *CaseBuilder {
	c.testCase().Name = name
	return c
}

// SetResult ...
func (c *CaseBuilder) SetResult(result testreport.TestResult) *CaseBuilder {
	c.testCase().Result = result
	return c
}

// SetClassName ...
func (c *CaseBuilder) SetClassName(className string) *CaseBuilder {
	c.testCase().ClassName = className
	return c
}

// AddTrait adds a custom static trait.
func (c *CaseBuilder) AddTrait(name, value string) *CaseBuilder {
	tc := c.testCase()
	tc.Traits = append(tc.Traits, testreport.NewCustomTrait(name, value, testreport.Static))
	return c
}

// AddInstanceTrait adds a custom instance trait.
func (c *CaseBuilder) AddInstanceTrait(name, value string) *CaseBuilder {
	tc := c.testCase()
	tc.Traits = append(tc.Traits, testreport.NewCustomTrait(name, value, testreport.Instance))
	return c
}

// AddTypedTrait adds a well-known trait.
func (c *CaseBuilder) AddTypedTrait(traitType testreport.TraitType, value string, exportType testreport.ExportType) *CaseBuilder {
	tc := c.testCase()
	tc.Traits = append(tc.Traits, testreport.NewTrait(traitType, value, exportType))
	return c
}

// AddAttachment ...
func (c *CaseBuilder) AddAttachment(name, contentType string, data []byte) *CaseBuilder {
	tc := c.testCase()
	tc.Attachments = append(tc.Attachments, testreport.NewAttachment(name, contentType, data))
	return c
}

// AddCase appends a new test case to the current suite.
func (c *CaseBuilder) AddCase() *CaseBuilder {
	return c.suite.AddCase()
}

// AddSuite appends a new suite to the run.
func (c *CaseBuilder) AddSuite() *SuiteBuilder {
	return c.suite.AddSuite()
}

// Run ...
func (c *CaseBuilder) Run() *testreport.TestRun {
	return c.suite.Run()
}

// Build ...
func (c *CaseBuilder) Build(f format.Format) ([]byte, error) {
	return c.suite.Build(f)
}
