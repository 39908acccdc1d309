// Package bson provides a BSON parser.
//
// BSON can only encode documents, so every value is wrapped in a
// single-field document {"v": value}.
package bson

import (
	"go.mongodb.org/mongo-driver/bson"
)

// valueField is the name of the wrapping document's only field.
const valueField = "v"

// Parser encodes values as BSON.
type Parser struct{}

// New returns a BSON parser.
func New() *Parser {
	return &Parser{}
}

// ContentType returns the MIME type for BSON.
func (p *Parser) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON.
func (p *Parser) Marshal(v any) ([]byte, error) {
	return bson.Marshal(bson.D{{Key: valueField, Value: v}})
}

// Unmarshal decodes BSON data into v.
func (p *Parser) Unmarshal(data []byte, v any) error {
	var doc struct {
		V bson.RawValue `bson:"v"`
	}
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	return doc.V.Unmarshal(v)
}
