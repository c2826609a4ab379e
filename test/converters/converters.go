// Package converters resolves the converter of a test report format.
// Every converter decodes its wire format into the testreport model and encodes the model back.
package converters

import (
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/ctrf"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/junitxml"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/nunit"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/trx"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/xunit"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters/ziparchive"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/format"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for formats without a converter.
var ErrUnsupportedFormat = errors.New("unsupported test report format")

// Codec is the required interface a converter needs to match
type Codec interface {
	Serialize(run *testreport.TestRun) ([]byte, error)
	Deserialize(data []byte) (*testreport.TestRun, error)
}

// ForFormat returns the converter of the given format.
func ForFormat(f format.Format) (Codec, error) {
	switch f {
	case format.MicrosoftTrx:
		return trx.Converter{}, nil
	case format.JUnitXML:
		return junitxml.Converter{}, nil
	case format.XUnitXML:
		return xunit.Converter{}, nil
	case format.NUnitXML:
		return nunit.Converter{}, nil
	case format.CommonTestReportFormat:
		return ctrf.Converter{}, nil
	case format.ZipArchive:
		return ziparchive.New(resolveInner), nil
	case format.UnknownFormat:
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "format: %s", f)
}

func resolveInner(f format.Format) (ziparchive.Codec, error) {
	return ForFormat(f)
}

// NewZipArchive returns a zip archive converter writing the report in the inner format.
func NewZipArchive(inner format.Format) Codec {
	zipArchive := ziparchive.New(resolveInner)
	zipArchive.Inner = inner
	return zipArchive
}

// ForContentType returns the converter of the format registered for the content type.
func ForContentType(contentType string) (Codec, error) {
	f := format.FromContentType(contentType)
	if f == format.UnknownFormat {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "content type: %q", contentType)
	}
	return ForFormat(f)
}

// Detect sniffs the format of data and returns its converter.
func Detect(data []byte) (Codec, format.Format, error) {
	f := format.Detect(data)
	codec, err := ForFormat(f)
	if err != nil {
		return nil, f, err
	}
	return codec, f, nil
}

// Convert decodes data of any supported format and encodes it in the target format.
func Convert(data []byte, target format.Format) ([]byte, error) {
	source, sourceFormat, err := Detect(data)
	if err != nil {
		return nil, err
	}
	destination, err := ForFormat(target)
	if err != nil {
		return nil, err
	}

	run, err := source.Deserialize(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s test report", sourceFormat)
	}
	converted, err := destination.Serialize(run)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to write %s test report", target)
	}
	return converted, nil
}
