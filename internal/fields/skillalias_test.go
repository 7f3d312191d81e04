package fields

import (
	"reflect"
	"testing"
)

func TestNormalizeSkillAliases(t *testing.T) {
	cases := map[string]string{
		"React.js":  "react",
		"ReactJS":   "react",
		"AngularJS": "angular",
		"Java 8":    "java",
		"Node.js":   "node",
		"C#":        "csharp",
		".NET":      "dotnet",
		"Postgres":  "postgresql",
		"Kubernetes": "kubernetes",
	}
	for input, want := range cases {
		if got := NormalizeSkill(input); got != want {
			t.Errorf("NormalizeSkill(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeSkillListDedupesPreservingOrder(t *testing.T) {
	got := NormalizeSkillList([]string{"React.js", "Python", "ReactJS", "Go", "python"})
	want := []string{"react", "python", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeSkillList() = %v, want %v", got, want)
	}
}
