package zin

import (
	"errors"
	"fmt"
	"io"
	"strings"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/zoobzio/zin/bson"
	"github.com/zoobzio/zin/json"
	"github.com/zoobzio/zin/msgpack"
	"github.com/zoobzio/zin/xml"
	zinyaml "github.com/zoobzio/zin/yaml"
)

// Config is the file form of a Builder's settings.
type Config struct {
	// Dir holds the database and key files. Empty keeps everything in memory.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Passphrase derives the key instead of a random key file.
	Passphrase string `yaml:"passphrase" mapstructure:"passphrase"`
	// Cipher is "aes" (default) or "chacha20".
	Cipher string `yaml:"cipher" mapstructure:"cipher"`
	// Format is the parser: "json" (default), "yaml", "msgpack", "xml" or "bson".
	Format string `yaml:"format" mapstructure:"format"`
	// LogLevel is "full" (default) or "none".
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// LoadConfig decodes and validates a YAML config. Unknown fields are
// rejected. An empty document yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	var c Config
	dec := yamlv3.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("can't parse the config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every enumerated field.
func (c Config) Validate() error {
	if c.Cipher != "" && !IsValidCipher(Cipher(strings.ToLower(c.Cipher))) {
		return newConfigError("cipher", c.Cipher)
	}
	if _, err := ParserFor(c.Format); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Builder returns a Builder configured from c.
func (c Config) Builder() (*Builder, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	parser, _ := ParserFor(c.Format)
	level, _ := ParseLogLevel(c.LogLevel)

	b := NewBuilder().
		SetDir(c.Dir).
		SetPassphrase(c.Passphrase).
		SetParser(parser).
		SetLogLevel(level)
	if c.Cipher != "" {
		b.SetCipher(Cipher(strings.ToLower(c.Cipher)))
	}
	return b, nil
}

// ParserFor returns the parser named by format. An empty format is json.
func ParserFor(format string) (Parser, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return json.New(), nil
	case "yaml", "yml":
		return zinyaml.New(), nil
	case "msgpack":
		return msgpack.New(), nil
	case "xml":
		return xml.New(), nil
	case "bson":
		return bson.New(), nil
	default:
		return nil, newConfigError("format", format)
	}
}
