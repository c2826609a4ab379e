// Package ziparchive converts zip archives holding test reports and their attachments.
//
// Serialize writes the run in an inner format plus every attachment as a loose file under
// attachments/<instance id>/<name>. Deserialize decodes every report entry and merges them into one run,
// loose attachment files are added to the test cases they belong to.
package ziparchive

import (
	"bytes"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/bitrise-io/go-utils/log"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/format"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testasset"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const defaultReportName = "report"

// ErrNoReport is returned when an archive has no decodable test report entry.
var ErrNoReport = errors.New("no test report found in archive")

// Codec is the converter of an inner report format.
type Codec interface {
	Serialize(run *testreport.TestRun) ([]byte, error)
	Deserialize(data []byte) (*testreport.TestRun, error)
}

// Resolver returns the converter of an inner report format.
type Resolver func(format.Format) (Codec, error)

// Converter reads and writes zip archives. Inner defaults to TRX.
type Converter struct {
	Resolve Resolver
	Inner   format.Format
}

// New ...
func New(resolve Resolver) Converter {
	return Converter{Resolve: resolve, Inner: format.MicrosoftTrx}
}

func (c Converter) innerFormat() format.Format {
	if c.Inner == format.UnknownFormat || c.Inner == format.ZipArchive {
		return format.MicrosoftTrx
	}
	return c.Inner
}

// Serialize ...
func (c Converter) Serialize(run *testreport.TestRun) ([]byte, error) {
	if c.Resolve == nil {
		return nil, errors.New("zip archive converter has no inner converter resolver")
	}

	innerFormat := c.innerFormat()
	codec, err := c.Resolve(innerFormat)
	if err != nil {
		return nil, err
	}

	// runs Prepare, identifiers are available afterwards
	report, err := codec.Serialize(run)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	if err := writeEntry(w, reportName(run.Name)+innerFormat.Extension(), report); err != nil {
		return nil, err
	}

	written := map[string]bool{}
	for _, suite := range run.Suites {
		if err := writeAttachments(w, suite.TestCases, written); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish zip archive")
	}
	return buf.Bytes(), nil
}

func reportName(runName string) string {
	name := strings.TrimSpace(strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(runName))
	if name == "" || name == "." || name == ".." {
		return defaultReportName
	}
	return name
}

func writeEntry(w *zip.Writer, name string, data []byte) error {
	f, err := w.Create(name)
	if err != nil {
		return errors.Wrapf(err, "failed to create zip entry: %s", name)
	}
	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write zip entry: %s", name)
	}
	return nil
}

func writeAttachments(w *zip.Writer, cases []testreport.TestCaseRun, written map[string]bool) error {
	for _, tc := range cases {
		for _, attachment := range tc.Attachments {
			name := testasset.AttachmentPath(tc.InstanceID, path.Base(attachment.Name))
			if written[name] {
				log.Debugf("Skipping duplicated attachment: %s", name)
				continue
			}
			written[name] = true

			if err := writeEntry(w, name, attachment.Data); err != nil {
				return err
			}
		}
		if err := writeAttachments(w, tc.InnerResults, written); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize ...
func (c Converter) Deserialize(data []byte) (*testreport.TestRun, error) {
	if c.Resolve == nil {
		return nil, errors.New("zip archive converter has no inner converter resolver")
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open zip archive")
	}
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	var run *testreport.TestRun
	assets := map[string][]byte{}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		content, err := readEntry(f)
		if err != nil {
			log.Warnf("Skipping zip entry (%s): %s", f.Name, err)
			continue
		}

		if strings.HasPrefix(f.Name, testasset.AttachmentsDir+"/") || testasset.IsSupportedAssetType(f.Name) {
			assets[f.Name] = content
			continue
		}

		entryFormat := format.Detect(content)
		if entryFormat == format.UnknownFormat || entryFormat == format.ZipArchive {
			log.Debugf("Skipping zip entry (%s): not a test report (%s)", f.Name, entryFormat)
			continue
		}

		codec, err := c.Resolve(entryFormat)
		if err != nil {
			return nil, err
		}
		entryRun, err := codec.Deserialize(content)
		if err != nil {
			log.Warnf("Skipping zip entry (%s): %s", f.Name, err)
			continue
		}

		if run == nil {
			run = entryRun
		} else {
			run.Suites = append(run.Suites, entryRun.Suites...)
		}
	}

	if run == nil {
		return nil, ErrNoReport
	}

	assetNames := make([]string, 0, len(assets))
	for name := range assets {
		assetNames = append(assetNames, name)
	}
	sort.Strings(assetNames)

	for i := range run.Suites {
		addAssets(run.Suites[i].TestCases, assetNames, assets)
	}

	return run, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.Warnf("Failed to close zip entry (%s): %s", f.Name, err)
		}
	}()

	return io.ReadAll(rc)
}

// addAssets attaches the loose files of the test case directories which are not embedded yet.
func addAssets(cases []testreport.TestCaseRun, names []string, assets map[string][]byte) {
	for i := range cases {
		tc := &cases[i]
		prefix := testasset.AttachmentPath(tc.InstanceID, "")

		embedded := map[string]bool{}
		for _, attachment := range tc.Attachments {
			embedded[path.Base(attachment.Name)] = true
		}

		for _, name := range names {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			base := strings.TrimPrefix(name, prefix)
			if base == "" || strings.Contains(base, "/") || embedded[base] {
				continue
			}
			tc.Attachments = append(tc.Attachments, testreport.NewAttachment(base, testasset.ContentType(base), assets[name]))
			embedded[base] = true
		}

		addAssets(tc.InnerResults, names, assets)
	}
}
