// Package yaml provides a YAML parser.
package yaml

import (
	"gopkg.in/yaml.v3"
)

// Parser encodes values as YAML.
type Parser struct{}

// New returns a YAML parser.
func New() *Parser {
	return &Parser{}
}

// ContentType returns the MIME type for YAML.
func (p *Parser) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (p *Parser) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (p *Parser) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
