// Package xml provides an XML parser.
//
// XML has no encoding for maps; marshaling one fails.
package xml

import (
	"encoding/xml"
)

// Parser encodes values as XML.
type Parser struct{}

// New returns an XML parser.
func New() *Parser {
	return &Parser{}
}

// ContentType returns the MIME type for XML.
func (p *Parser) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML.
func (p *Parser) Marshal(v any) ([]byte, error) {
	return xml.Marshal(v)
}

// Unmarshal decodes XML data into v.
func (p *Parser) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}
