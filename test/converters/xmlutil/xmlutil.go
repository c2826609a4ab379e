// Package xmlutil holds the XML reading and writing settings the XML converters share.
package xmlutil

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/bitrise-io/go-utils/log"
)

// Header is written before every generated document.
const Header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewDecoder returns a decoder which accepts documents declaring a non UTF-8 charset.
// The content is read as is, the supported formats are produced as UTF-8 in practice.
func NewDecoder(data []byte) *xml.Decoder {
	decoder := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return decoder
}

// Unmarshal decodes the document into v.
func Unmarshal(data []byte, v interface{}) error {
	return NewDecoder(data).Decode(v)
}

// Marshal encodes v as an indented document with the XML header.
func Marshal(v interface{}) ([]byte, error) {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(Header), data...), nil
}

// Count is a derived counter attribute. Counters are recomputed from the test cases,
// a value which is not an integer reads as zero instead of failing the document.
type Count int

// UnmarshalXMLAttr ...
func (c *Count) UnmarshalXMLAttr(attr xml.Attr) error {
	value, err := strconv.Atoi(strings.TrimSpace(attr.Value))
	if err != nil {
		log.Debugf("Ignoring counter (%s): %s", attr.Name.Local, err)
		value = 0
	}
	*c = Count(value)
	return nil
}
