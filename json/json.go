// Package json provides a JSON parser.
package json

import (
	"encoding/json"
)

// Parser encodes values as JSON.
type Parser struct{}

// New returns a JSON parser.
func New() *Parser {
	return &Parser{}
}

// ContentType returns the MIME type for JSON.
func (p *Parser) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (p *Parser) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (p *Parser) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
