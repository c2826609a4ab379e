package testreport

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidRun is returned when a run can not be serialized into a valid document.
var ErrInvalidRun = errors.New("invalid test run")

// NewID returns a new unique identifier.
func NewID() string {
	return uuid.NewString()
}

// Normalize assigns identifiers the wire formats require but the run does not have yet.
// Existing identifiers are never changed, so normalizing twice is a no-op.
func Normalize(run *TestRun) {
	if run.ID == "" {
		run.ID = NewID()
	}
	for i := range run.Suites {
		suite := &run.Suites[i]
		if suite.ID == "" {
			suite.ID = NewID()
		}
		for j := range suite.TestCases {
			normalizeCase(&suite.TestCases[j])
		}
	}
}

func normalizeCase(tc *TestCaseRun) {
	if tc.ID == "" {
		tc.ID = NewID()
	}
	if tc.InstanceID == "" {
		tc.InstanceID = NewID()
	}
	for i := range tc.InnerResults {
		inner := &tc.InnerResults[i]
		if inner.ID == "" {
			inner.ID = tc.ID
		}
		normalizeCase(inner)
	}
}

// Validate checks the structural requirements every format shares.
func Validate(run TestRun) error {
	instances := map[string]bool{}

	var validateCase func(suite TestSuite, tc TestCaseRun) error
	validateCase = func(suite TestSuite, tc TestCaseRun) error {
		if tc.Name == "" {
			return errors.Wrapf(ErrInvalidRun, "test case (%s) in suite (%s) has no name", tc.ID, suite.Name)
		}
		if tc.ID == "" {
			return errors.Wrapf(ErrInvalidRun, "test case (%s) in suite (%s) has no identifier", tc.Name, suite.Name)
		}
		if tc.InstanceID == "" {
			return errors.Wrapf(ErrInvalidRun, "test case (%s) in suite (%s) has no instance identifier", tc.Name, suite.Name)
		}
		if instances[tc.InstanceID] {
			return errors.Wrapf(ErrInvalidRun, "test case (%s) reuses instance identifier %s", tc.Name, tc.InstanceID)
		}
		instances[tc.InstanceID] = true

		for _, inner := range tc.InnerResults {
			if inner.Name == "" {
				inner.Name = tc.Name
			}
			if err := validateCase(suite, inner); err != nil {
				return err
			}
		}
		return nil
	}

	if run.ID == "" {
		return errors.Wrap(ErrInvalidRun, "run has no identifier")
	}
	for _, suite := range run.Suites {
		if suite.ID == "" {
			return errors.Wrapf(ErrInvalidRun, "suite (%s) has no identifier", suite.Name)
		}
		for _, tc := range suite.TestCases {
			if err := validateCase(suite, tc); err != nil {
				return err
			}
		}
	}
	return nil
}

// Prepare normalizes then validates the run, codecs call it before writing.
func Prepare(run *TestRun) error {
	if run == nil {
		return errors.Wrap(ErrInvalidRun, "nil run")
	}
	Normalize(run)
	return Validate(*run)
}
