package zin

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	in := `
dir: /var/lib/app
passphrase: open sesame
cipher: ChaCha20
format: msgpack
log_level: none
`
	c, err := LoadConfig(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	want := Config{
		Dir:        "/var/lib/app",
		Passphrase: "open sesame",
		Cipher:     "ChaCha20",
		Format:     "msgpack",
		LogLevel:   "none",
	}
	if c != want {
		t.Errorf("LoadConfig() = %+v, want %+v", c, want)
	}

	b, err := c.Builder()
	if err != nil {
		t.Fatalf("Builder() error: %v", err)
	}
	if b.cipher != CipherChaCha || b.level != LogNone || b.dir != "/var/lib/app" {
		t.Errorf("Builder() = cipher %q level %s dir %q", b.cipher, b.level, b.dir)
	}
	if b.parser.ContentType() != "application/msgpack" {
		t.Errorf("parser = %s", b.parser.ContentType())
	}
}

func TestLoadConfig_Empty(t *testing.T) {
	c, err := LoadConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if c != (Config{}) {
		t.Errorf("LoadConfig() = %+v, want zero config", c)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown field", "colour: blue\n"},
		{"bad cipher", "cipher: rot13\n"},
		{"bad format", "format: csv\n"},
		{"bad log level", "log_level: chatty\n"},
		{"not yaml", "dir: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfig_ValidateField(t *testing.T) {
	err := Config{Format: "csv"}.Validate()

	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "format" || ce.Value != "csv" {
		t.Errorf("Validate() error = %v, want format ConfigError", err)
	}
}

func TestParserFor(t *testing.T) {
	tests := map[string]string{
		"":        "application/json",
		"JSON":    "application/json",
		"yml":     "application/yaml",
		"msgpack": "application/msgpack",
		"xml":     "application/xml",
		"bson":    "application/bson",
	}

	for format, want := range tests {
		p, err := ParserFor(format)
		if err != nil {
			t.Errorf("ParserFor(%q) error: %v", format, err)
			continue
		}
		if p.ContentType() != want {
			t.Errorf("ParserFor(%q) = %s, want %s", format, p.ContentType(), want)
		}
	}
}
