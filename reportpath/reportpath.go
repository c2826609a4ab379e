// Package reportpath processes the test report path input of the step.
package reportpath

import (
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/format"
)

const separator = ":"

// ReportPath is a test report file, optionally pinned to a format.
type ReportPath struct {
	Path   string
	Format format.Format
}

// Processor is an interface for an entity which accepts report paths separated by the
// newline (`\n`) character and returns them with absolute paths.
type Processor interface {
	ProcessReportPaths(string) ([]ReportPath, error)
}

type processor struct {
	pathModifier pathutil.PathModifier
	pathChecker  pathutil.PathChecker
}

// NewProcessor returns a structure which implements the Processor interface.
// An item is a file path, optionally followed by a format name or a content type: report.xml:junit.
// The implementation makes sure the path exists and is not a directory.
func NewProcessor(modifier pathutil.PathModifier, checker pathutil.PathChecker) Processor {
	return processor{
		pathModifier: modifier,
		pathChecker:  checker,
	}
}

func (p processor) ProcessReportPaths(reportPaths string) ([]ReportPath, error) {
	reportPaths = strings.TrimSpace(reportPaths)
	if reportPaths == "" {
		return nil, nil
	}

	var processed []ReportPath

	list := strings.Split(reportPaths, "\n")
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		pth, reportFormat := splitItem(item)
		if pth == "" {
			return nil, fmt.Errorf("invalid item (%s): doesn't specify file path", item)
		}

		absPath, err := p.pathModifier.AbsPath(pth)
		if err != nil {
			return nil, err
		}

		exists, err := p.pathChecker.IsPathExists(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to check if path (%s) exists: %w", absPath, err)
		}
		if !exists {
			return nil, fmt.Errorf("test report (%s) does not exist", absPath)
		}

		isDir, err := p.pathChecker.IsDirExists(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to check if path (%s) is a directory: %w", absPath, err)
		}
		if isDir {
			return nil, fmt.Errorf("path (%s) is a directory, please make sure to only provide test report file paths as inputs", absPath)
		}

		processed = append(processed, ReportPath{Path: absPath, Format: reportFormat})
	}

	return processed, nil
}

// splitItem splits the format suffix off an item. A suffix which is not a known format
// name or content type is part of the path.
func splitItem(item string) (string, format.Format) {
	idx := strings.LastIndex(item, separator)
	if idx == -1 {
		return item, format.UnknownFormat
	}

	suffix := strings.TrimSpace(item[idx+1:])
	reportFormat := format.Parse(suffix)
	if reportFormat == format.UnknownFormat {
		reportFormat = format.FromContentType(suffix)
	}
	if reportFormat == format.UnknownFormat {
		return item, format.UnknownFormat
	}

	return strings.TrimSpace(item[:idx]), reportFormat
}
