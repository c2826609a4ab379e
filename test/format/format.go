// Package format identifies test report wire formats, by content type or by sniffing the content.
// It does not depend on any converter.
package format

import (
	"mime"
	"strings"
)

// Format identifies a test report wire format.
type Format int

// Supported formats.
const (
	UnknownFormat Format = iota
	MicrosoftTrx
	JUnitXML
	XUnitXML
	NUnitXML
	CommonTestReportFormat
	ZipArchive
)

// Formats lists every known format, UnknownFormat excluded.
func Formats() []Format {
	return []Format{MicrosoftTrx, JUnitXML, XUnitXML, NUnitXML, CommonTestReportFormat, ZipArchive}
}

func (f Format) String() string {
	switch f {
	case MicrosoftTrx:
		return "trx"
	case JUnitXML:
		return "junit"
	case XUnitXML:
		return "xunit"
	case NUnitXML:
		return "nunit"
	case CommonTestReportFormat:
		return "ctrf"
	case ZipArchive:
		return "zip"
	}
	return "unknown"
}

// Parse resolves a format name as returned by String.
func Parse(name string) Format {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range Formats() {
		if f.String() == name {
			return f
		}
	}
	return UnknownFormat
}

// Extension returns the file extension reports of the format are usually saved with.
func (f Format) Extension() string {
	switch f {
	case MicrosoftTrx:
		return ".trx"
	case JUnitXML, XUnitXML, NUnitXML:
		return ".xml"
	case CommonTestReportFormat:
		return ".json"
	case ZipArchive:
		return ".zip"
	}
	return ""
}

// contentTypes holds the aliases of each format, the first one is the preferred content type.
var contentTypes = map[Format][]string{
	MicrosoftTrx:           {"application/x-trx", "application/trx", "text/xml+trx", "application/xml+trx"},
	JUnitXML:               {"application/x-junit", "application/junit", "text/xml+junit", "application/xml+junit"},
	XUnitXML:               {"application/x-xunit", "application/xunit", "text/xml+xunit", "application/xml+xunit"},
	NUnitXML:               {"application/x-nunit", "application/nunit", "text/xml+nunit", "application/xml+nunit"},
	CommonTestReportFormat: {"application/x-ctrf", "application/json+ctrf", "application/json"},
	ZipArchive:             {"application/zip", "application/x-zip-compressed"},
}

var formatByContentType = func() map[string]Format {
	m := map[string]Format{}
	for f, aliases := range contentTypes {
		for _, alias := range aliases {
			m[alias] = f
		}
	}
	return m
}()

// FromContentType resolves a content type (parameters like charset are ignored) to a format.
// Unknown or empty content types resolve to UnknownFormat.
func FromContentType(contentType string) Format {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return UnknownFormat
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}

	if f, ok := formatByContentType[strings.ToLower(mediaType)]; ok {
		return f
	}
	return UnknownFormat
}

// ContentType returns the preferred content type of the format.
func ContentType(f Format) (string, bool) {
	aliases, ok := contentTypes[f]
	if !ok || len(aliases) == 0 {
		return "", false
	}
	return aliases[0], true
}

// ContentTypes returns every alias of the format.
func ContentTypes(f Format) []string {
	return append([]string(nil), contentTypes[f]...)
}
