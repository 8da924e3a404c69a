package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestJSON_FencedBlock(t *testing.T) {
	input := "Here are the files worth reviewing:\n\n```json\n  [\"a.ts\", \"src/b.go\"]  \n```\n\nLet me know if you need more."
	got, ok := JSON(input)
	if !ok {
		t.Fatal("expected JSON to be found")
	}
	if got != `["a.ts", "src/b.go"]` {
		t.Errorf("JSON() = %q", got)
	}
}

func TestJSON_UppercaseLabel(t *testing.T) {
	got, ok := JSON("```JSON\n{\"x\": 1}\n```")
	if !ok || got != `{"x": 1}` {
		t.Errorf("JSON() = %q, %v", got, ok)
	}
}

func TestJSON_RawInput(t *testing.T) {
	got, ok := JSON("  {\"fileName\": \"a.go\", \"overallRating\": 7}\n")
	if !ok {
		t.Fatal("expected raw JSON to be accepted")
	}
	if got != `{"fileName": "a.go", "overallRating": 7}` {
		t.Errorf("JSON() = %q", got)
	}
}

func TestJSON_BareFence(t *testing.T) {
	got, ok := JSON("Sure!\n```\n[1, 2, 3]\n```")
	if !ok || got != "[1, 2, 3]" {
		t.Errorf("JSON() = %q, %v", got, ok)
	}
}

func TestJSON_RawJSONContainingFence(t *testing.T) {
	input := "{\"suggestedFix\": \"use:\\n```go\\nx := 1\\n```\"}"
	got, ok := JSON(input)
	if !ok {
		t.Fatal("expected raw JSON with embedded fence to be accepted")
	}
	if got != input {
		t.Errorf("JSON() = %q, want input unchanged", got)
	}
}

func TestJSON_FencedPayloadContainingFence(t *testing.T) {
	input := "```json\n{\"suggestedFix\": \"wrap it:\\n```js\\nfoo()\\n```\"}\n```"
	got, ok := JSON(input)
	if !ok {
		t.Fatalf("expected payload to be recovered from %q", input)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v["suggestedFix"] != "wrap it:\n```js\nfoo()\n```" {
		t.Errorf("suggestedFix = %q", v["suggestedFix"])
	}
}

func TestJSON_Misses(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"prose", "I could not determine which files to review."},
		{"invalid fenced", "```json\n{\"a\": 1,,}\n```"},
		{"unterminated", "```json\n[\"a.go\""},
		{"truncated object", `{"fileName": "a.go", "issues": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JSON(tt.input)
			if ok || got != "" {
				t.Errorf("JSON(%q) = %q, %v; want miss", tt.input, got, ok)
			}
		})
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	values := []interface{}{
		map[string]interface{}{"fileName": "a.ts", "overallRating": 7.0, "isGoodQuality": true},
		[]interface{}{"a.go", "b/c.py"},
		map[string]interface{}{"issues": []interface{}{}, "nested": map[string]interface{}{"k": "v ``` v"}},
		"just a string",
		42.0,
		nil,
	}
	for _, v := range values {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		wrapped := "Review below.\n```json\n" + string(data) + "\n```\nThanks."
		got, ok := JSON(wrapped)
		if !ok {
			t.Fatalf("JSON() missed %s", data)
		}
		var back interface{}
		if err := json.Unmarshal([]byte(got), &back); err != nil {
			t.Fatalf("unmarshal %q: %v", got, err)
		}
		if !reflect.DeepEqual(back, v) {
			t.Errorf("round trip = %#v, want %#v", back, v)
		}
	}
}
