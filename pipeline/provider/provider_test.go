package provider

import (
	"errors"
	"io"
	"testing"
)

func TestIsJSONTruncationError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unexpected_end", err: errors.New("unexpected end of JSON input"), want: true},
		{name: "unexpected_eof", err: errors.New("unexpected EOF"), want: true},
		{name: "wrapped_eof", err: io.ErrUnexpectedEOF, want: true},
		{name: "other", err: errors.New("no JSON object found"), want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsJSONTruncationError(tc.err); got != tc.want {
				t.Fatalf("got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestIsRecoverableJSONError(t *testing.T) {
	t.Parallel()

	if !IsRecoverableJSONError(errors.New("no JSON object found in model output (len=12)")) {
		t.Fatalf("missing-object should be recoverable")
	}
	if !IsRecoverableJSONError(io.ErrUnexpectedEOF) {
		t.Fatalf("truncation should be recoverable")
	}
	if IsRecoverableJSONError(errors.New("invalid character 'x'")) {
		t.Fatalf("syntax garbage should not be recoverable")
	}
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "no_fence", in: "  {\"a\":1}  ", want: "{\"a\":1}"},
		{name: "json_fence", in: "```json\n{\"a\":1}\n```", want: "{\"a\":1}"},
		{name: "bare_fence", in: "```\n{\"a\":1}\n```", want: "{\"a\":1}"},
		{name: "upper_tag", in: "```JSON\n{\"a\":1}\n```", want: "{\"a\":1}"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestDecodeModelJSON_ExtractsObjectFromWrappedText(t *testing.T) {
	t.Parallel()

	type out struct {
		A int `json:"a"`
	}

	var o out
	if err := DecodeModelJSON("here you go:\n\n{\"a\": 2}\n", &o); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if o.A != 2 {
		t.Fatalf("A=%d", o.A)
	}
}

func TestDecodeModelJSON_FencedObject(t *testing.T) {
	t.Parallel()

	var m map[string]any
	if err := DecodeModelJSON("```json\n{\"scores\": {\"overall\": 6.8}}\n```", &m); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if _, ok := m["scores"]; !ok {
		t.Fatalf("m=%v", m)
	}
}

func TestDecodeModelJSON_MissingClosingBrace_ReturnsUnexpectedEOF(t *testing.T) {
	t.Parallel()

	var m map[string]any
	err := DecodeModelJSON("{\"a\": 1", &m)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err=%v", err)
	}
}

func TestDecodeModelJSON_EmptyOutput(t *testing.T) {
	t.Parallel()

	var m map[string]any
	if err := DecodeModelJSON("   ", &m); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err=%v", err)
	}
}

func TestDecodeModelJSON_ExtractsArrayOnlyWhenTargetIsSlice(t *testing.T) {
	t.Parallel()

	var out []int
	if err := DecodeModelJSON("prefix [1,2,3] suffix", &out); err != nil {
		t.Fatalf("slice DecodeModelJSON: %v", err)
	}
	if len(out) != 3 || out[0] != 1 || out[2] != 3 {
		t.Fatalf("out=%v", out)
	}

	var m map[string]any
	if err := DecodeModelJSON("prefix [1,2,3] suffix", &m); err == nil {
		t.Fatalf("map target should not accept bare array")
	}
}

func TestGenerateSchema_StrictObject(t *testing.T) {
	t.Parallel()

	type inner struct {
		Name string `json:"name"`
	}
	type doc struct {
		Title string  `json:"title"`
		Items []inner `json:"items"`
	}

	schema := GenerateSchema[doc]()

	if schema["type"] != "object" {
		t.Fatalf("type=%v", schema["type"])
	}
	if ap, ok := schema["additionalProperties"].(bool); !ok || ap {
		t.Fatalf("additionalProperties=%v", schema["additionalProperties"])
	}

	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatalf("required=%T", schema["required"])
	}
	found := map[string]bool{}
	for _, r := range required {
		found[r] = true
	}
	if !found["title"] || !found["items"] {
		t.Fatalf("required=%v", required)
	}

	props := schema["properties"].(map[string]interface{})
	items := props["items"].(map[string]interface{})["items"].(map[string]interface{})
	if ap, ok := items["additionalProperties"].(bool); !ok || ap {
		t.Fatalf("nested additionalProperties=%v", items["additionalProperties"])
	}
}
