// Package msgpack provides a MessagePack parser.
package msgpack

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Parser encodes values as MessagePack.
type Parser struct{}

// New returns a MessagePack parser.
func New() *Parser {
	return &Parser{}
}

// ContentType returns the MIME type for MessagePack.
func (p *Parser) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (p *Parser) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v.
func (p *Parser) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
