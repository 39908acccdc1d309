package zin

import (
	"fmt"
	"strconv"
	"strings"
)

// Envelope format: "<n>:<descriptor>@<cipherText>", where n is the byte
// length of descriptor. Never change this layout; every stored value
// depends on it.
const (
	lengthSeparator = ":"
	cipherSeparator = '@'
)

// Envelope is the durable record stored under a key.
type Envelope struct {
	CipherText string
	Descriptor Descriptor
}

// Serializer is the default EnvelopeCodec.
type Serializer struct{}

// NewSerializer returns the default EnvelopeCodec.
func NewSerializer() Serializer {
	return Serializer{}
}

// Pack derives the descriptor of value and joins it with cipherText.
func (Serializer) Pack(cipherText string, value any) (string, error) {
	desc, err := Describe(value)
	if err != nil {
		return "", err
	}
	d := desc.String()

	var b strings.Builder
	b.Grow(len(d) + len(cipherText) + 8)
	b.WriteString(strconv.Itoa(len(d)))
	b.WriteString(lengthSeparator)
	b.WriteString(d)
	b.WriteByte(cipherSeparator)
	b.WriteString(cipherText)
	return b.String(), nil
}

// Unpack splits a stored string into its ciphertext and descriptor.
func (Serializer) Unpack(envelope string) (Envelope, error) {
	head, rest, ok := strings.Cut(envelope, lengthSeparator)
	if !ok || !isDigits(head) {
		return Envelope{}, fmt.Errorf("%w: missing length prefix", ErrInvalidEnvelope)
	}

	n, err := strconv.Atoi(head)
	if err != nil || n <= 0 || n >= len(rest) {
		return Envelope{}, fmt.Errorf("%w: bad descriptor length %q", ErrInvalidEnvelope, head)
	}
	if rest[n] != cipherSeparator {
		return Envelope{}, fmt.Errorf("%w: missing ciphertext separator", ErrInvalidEnvelope)
	}

	desc, err := ParseDescriptor(rest[:n])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	return Envelope{
		CipherText: rest[n+1:],
		Descriptor: desc,
	}, nil
}

func isDigits(s string) bool {
	if s == "" || len(s) > 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
