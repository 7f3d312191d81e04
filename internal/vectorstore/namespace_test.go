package vectorstore

import "testing"

func TestNamespaceDerivation(t *testing.T) {
	cases := map[string]string{
		"Full Stack Development (Python)": "full_stack_development_python",
		"full-stack development (python)": "full_stack_development_python",
		"  DevOps & Platform Engineering ": "devops_platform_engineering",
		"":                                 UncategorizedNamespace,
		"###":                              UncategorizedNamespace,
	}
	for input, want := range cases {
		if got := Namespace(input); got != want {
			t.Errorf("Namespace(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNamespaceIsPureAcrossEquivalentLabels(t *testing.T) {
	a := Namespace("Full Stack Development (Python)")
	b := Namespace("FULL_STACK/DEVELOPMENT--python")
	if a != b {
		t.Errorf("expected equivalent labels to derive the same namespace, got %q and %q", a, b)
	}
}

func TestPlaceholderIDRoundTrip(t *testing.T) {
	ns := "full_stack_development_python"
	id := placeholderID(ns)
	if !isPlaceholderID(id) {
		t.Errorf("expected %q to be recognized as a placeholder id", id)
	}
	if isPlaceholderID(ns) {
		t.Errorf("expected a plain namespace string to not be mistaken for a placeholder id")
	}
}
