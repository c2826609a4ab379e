package format

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
)

// TrxNamespace is the namespace of Visual Studio test result documents.
const TrxNamespace = "http://microsoft.com/schemas/VisualStudio/TeamTest/2010"

var (
	zipSignature = []byte{'P', 'K', 0x03, 0x04}
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
)

// Detect identifies the format of a test report. It never panics,
// empty, truncated or malformed content is UnknownFormat.
func Detect(data []byte) Format {
	if len(data) == 0 {
		return UnknownFormat
	}

	if bytes.HasPrefix(data, zipSignature) {
		return ZipArchive
	}

	content := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n\f\v")
	if len(content) == 0 {
		return UnknownFormat
	}

	switch content[0] {
	case '<':
		return detectXML(content)
	case '{':
		return detectJSON(content)
	}
	return UnknownFormat
}

// DetectReader reads r fully and detects the format of the content.
func DetectReader(r io.Reader) (Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return UnknownFormat, err
	}
	return Detect(data), nil
}

func detectXML(content []byte) Format {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root *xml.StartElement
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return UnknownFormat
		}
		if start, ok := token.(xml.StartElement); ok && root == nil {
			root = &start
		}
	}
	if root == nil {
		return UnknownFormat
	}

	switch strings.ToLower(root.Name.Local) {
	case "testrun":
		if root.Name.Space == TrxNamespace || root.Name.Space == "" {
			return MicrosoftTrx
		}
	case "testsuites", "testsuite":
		return JUnitXML
	case "assemblies", "assembly":
		return XUnitXML
	case "test-run", "test-results":
		return NUnitXML
	}
	return UnknownFormat
}

func detectJSON(content []byte) Format {
	if !json.Valid(content) {
		return UnknownFormat
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal(content, &document); err != nil {
		return UnknownFormat
	}

	if raw, ok := document["reportFormat"]; ok {
		var reportFormat string
		if err := json.Unmarshal(raw, &reportFormat); err == nil && strings.EqualFold(reportFormat, "CTRF") {
			return CommonTestReportFormat
		}
	}

	raw, ok := document["results"]
	if !ok {
		return UnknownFormat
	}
	var results map[string]json.RawMessage
	if err := json.Unmarshal(raw, &results); err != nil {
		return UnknownFormat
	}

	if environment, ok := results["environment"]; ok && isObject(environment) {
		return CommonTestReportFormat
	}
	if tool, ok := results["tool"]; ok && isObject(tool) {
		if _, ok := results["tests"]; ok {
			return CommonTestReportFormat
		}
	}
	return UnknownFormat
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
