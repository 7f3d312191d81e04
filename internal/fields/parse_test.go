package fields

import "testing"

func TestExtractJSONObjectFromFencedOutput(t *testing.T) {
	text := "Sure, here you go:\n```json\n{\"name\": \"Jane Doe\", \"nested\": {\"a\": 1}}\n```\nThanks."
	obj, ok := ExtractJSONObject(text)
	if !ok {
		t.Fatal("expected ExtractJSONObject to find a balanced object")
	}
	if StringField(obj, "name") != "Jane Doe" {
		t.Errorf("unexpected name field: %v", obj["name"])
	}
}

func TestExtractJSONObjectNoBraces(t *testing.T) {
	if _, ok := ExtractJSONObject("no json here"); ok {
		t.Error("expected ExtractJSONObject to fail on non-JSON text")
	}
}

func TestRecoverStringKeyFallback(t *testing.T) {
	text := `garbage "designation": "Senior Engineer" more garbage`
	val, ok := RecoverStringKey(text, "designation")
	if !ok || val != "Senior Engineer" {
		t.Errorf("RecoverStringKey() = (%q, %v), want (\"Senior Engineer\", true)", val, ok)
	}
}
