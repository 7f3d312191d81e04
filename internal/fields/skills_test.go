package fields

import (
	"testing"

	"atsresume/internal/core"
)

func TestSkillsExtractorParseReadsJSONArray(t *testing.T) {
	ex := skillsExtractor()
	value, ok := ex.Parse(`{"skills": ["React.js", "Python", "ReactJS"]}`)
	if !ok {
		t.Fatal("expected Parse to succeed")
	}
	if value != "React.js,Python,ReactJS" {
		t.Fatalf("Parse() = %q", value)
	}
}

func TestSkillsExtractorCommitCanonicalizesAndDedupes(t *testing.T) {
	ex := skillsExtractor()
	r := &core.Resume{}
	ex.Commit(r, "React.js,Python,ReactJS,Go", "")
	if r.Skillset == nil {
		t.Fatal("expected Skillset to be set")
	}
	if *r.Skillset != "react,python,go" {
		t.Fatalf("Skillset = %q, want react,python,go", *r.Skillset)
	}
}

func TestSkillsExtractorCommitLeavesFieldNilOnEmpty(t *testing.T) {
	ex := skillsExtractor()
	r := &core.Resume{}
	ex.Commit(r, "", "")
	if r.Skillset != nil {
		t.Fatalf("expected Skillset to stay nil, got %v", *r.Skillset)
	}
}
