package zin

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/zin/json"
	"github.com/zoobzio/zin/msgpack"
	"github.com/zoobzio/zin/xml"
)

type convUser struct {
	Name string `json:"name" msgpack:"name"`
	Age  int    `json:"age" msgpack:"age"`
}

func roundTrip(t *testing.T, c *Converter, value any) any {
	t.Helper()
	text, err := c.Encode(value)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	desc, err := Describe(value)
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	var out any
	if err := c.Decode(text, desc, &out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return out
}

func TestConverter_Untyped(t *testing.T) {
	parsers := []Parser{json.New(), msgpack.New()}
	values := []any{
		30,
		int64(-9000000000),
		"hello",
		true,
		3.25,
		[]string{"a", "b"},
		map[string]int{"a": 1},
		convUser{Name: "Ada", Age: 36},
	}

	for _, p := range parsers {
		t.Run(p.ContentType(), func(t *testing.T) {
			c := NewConverter(p)
			for _, v := range values {
				got := roundTrip(t, c, v)
				if !reflect.DeepEqual(got, v) {
					t.Errorf("round-trip %T: got %#v, want %#v", v, got, v)
				}
			}
		})
	}
}

func TestConverter_UnregisteredType(t *testing.T) {
	c := NewConverter(json.New())
	desc := Descriptor{KindStruct, "elsewhere.User"}

	var out any
	if err := c.Decode(`{"name":"Ada"}`, desc, &out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok || m["name"] != "Ada" {
		t.Errorf("Decode() = %#v, want generic map", out)
	}
}

func TestConverter_Register(t *testing.T) {
	c := NewConverter(json.New())
	c.Register(convUser{})

	desc, _ := Describe(convUser{})
	var out any
	if err := c.Decode(`{"name":"Ada","age":36}`, desc, &out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got, ok := out.(convUser); !ok || got.Name != "Ada" {
		t.Errorf("Decode() = %#v, want convUser", out)
	}
}

type sharedUser struct {
	Name string `json:"name"`
}

func TestConverter_RegisterTypeAcrossConverters(t *testing.T) {
	RegisterType[sharedUser](NewConverter(json.New()))

	// A converter that has never seen sharedUser still resolves it.
	other := NewConverter(json.New())
	desc, _ := Describe(sharedUser{})
	var out any
	if err := other.Decode(`{"name":"Ada"}`, desc, &out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got, ok := out.(sharedUser); !ok || got.Name != "Ada" {
		t.Errorf("Decode() = %#v, want sharedUser", out)
	}
}

func TestConverter_Typed(t *testing.T) {
	c := NewConverter(json.New())
	text, _ := c.Encode(30)
	desc, _ := Describe(30)

	var n int
	if err := c.Decode(text, desc, &n); err != nil || n != 30 {
		t.Errorf("Decode(int) = %d, %v", n, err)
	}

	var s []int
	if err := c.Decode(text, desc, &s); !errors.Is(err, ErrIncompatibleType) {
		t.Errorf("Decode([]int) error = %v, want ErrIncompatibleType", err)
	}
}

func TestConverter_BadTarget(t *testing.T) {
	c := NewConverter(json.New())
	var n int
	if err := c.Decode("1", Descriptor{KindScalar, "int"}, n); !errors.Is(err, ErrIncompatibleType) {
		t.Errorf("Decode(non-pointer) error = %v, want ErrIncompatibleType", err)
	}
}

func TestConverter_EncodeUnsupported(t *testing.T) {
	c := NewConverter(json.New())
	if _, err := c.Encode(make(chan int)); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Encode(chan) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := c.Encode(nil); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Encode(nil) error = %v, want ErrUnsupportedType", err)
	}
}

func TestConverter_BinaryIsText(t *testing.T) {
	c := NewConverter(msgpack.New())
	text, err := c.Encode(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	for _, r := range text {
		if r < 0x20 || r > 0x7e {
			t.Fatalf("Encode() produced non-printable text %q", text)
		}
	}
	if c.ContentType() != "application/msgpack" {
		t.Errorf("ContentType() = %q", c.ContentType())
	}
}

func TestConverter_BadBase64(t *testing.T) {
	c := NewConverter(msgpack.New())
	var out any
	if err := c.Decode("!!!", Descriptor{KindScalar, "int"}, &out); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestConverter_StringsRoundTripOrFail(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		value  string
		ok     bool
	}{
		{"json invalid utf8", json.New(), "a\xffb", false},
		{"json control char", json.New(), "x\x1by", true},
		{"json nul", json.New(), "a\x00b", true},
		{"xml nul", xml.New(), "a\x00b", false},
		{"xml escape", xml.New(), "x\x1by", false},
		{"xml invalid utf8", xml.New(), "a\xffb", false},
		{"xml plain", xml.New(), "a<b>&c", true},
		{"msgpack invalid utf8", msgpack.New(), "a\xffb", true},
		{"msgpack nul", msgpack.New(), "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConverter(tt.parser)
			text, err := c.Encode(tt.value)
			if !tt.ok {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Errorf("Encode(%q) error = %v, want ErrUnsupportedType", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode(%q) error: %v", tt.value, err)
			}

			var out any
			if err := c.Decode(text, Descriptor{KindScalar, "string"}, &out); err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if out != tt.value {
				t.Errorf("round-trip = %q, want %q", out, tt.value)
			}
		})
	}
}

type label string

func TestConverter_NamedStringChecked(t *testing.T) {
	c := NewConverter(json.New())
	if _, err := c.Encode(label("a\xffb")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Encode(label) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := c.Encode(label("fine")); err != nil {
		t.Errorf("Encode(label) error = %v", err)
	}
}
