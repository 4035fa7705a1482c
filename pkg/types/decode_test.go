package types_test

import (
	"encoding/json"
	"testing"

	"github.com/jnkit/zq/pkg/types"
)

func TestDecodeJSONScalars(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{`null`, types.NullValue},
		{`true`, true},
		{`false`, false},
		{`42`, 42.0},
		{`-3.5`, -3.5},
		{`"hello"`, "hello"},
	}

	for _, tt := range tests {
		got, err := types.DecodeJSON(tt.input)
		if err != nil {
			t.Fatalf("DecodeJSON(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("DecodeJSON(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDecodeJSONPreservesKeyOrder(t *testing.T) {
	input := `{"zebra":1,"apple":{"y":true,"b":null},"mango":[1,2]}`

	v, err := types.DecodeJSON(input)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}

	// Round-tripping must reproduce the document byte for byte.
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != input {
		t.Errorf("round trip changed the document:\n got  %s\n want %s", data, input)
	}
}

func TestDecodeJSONInvalid(t *testing.T) {
	inputs := []string{`{`, `{"a":}`, `tru`, `[1,]`, ``}

	for _, input := range inputs {
		_, err := types.DecodeJSON(input)
		if err == nil {
			t.Errorf("DecodeJSON(%q): expected error", input)
			continue
		}
		if types.CodeOf(err) != types.ErrInvalidInput {
			t.Errorf("DecodeJSON(%q): code %s, want %s", input, types.CodeOf(err), types.ErrInvalidInput)
		}
	}
}
