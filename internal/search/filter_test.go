package search

import (
	"reflect"
	"testing"

	"atsresume/internal/core"
)

func intPtr(i int) *int { return &i }

func TestCompileFilterS1ExplicitMode(t *testing.T) {
	q := &core.ParsedQuery{
		MustHaveAll:   []string{"python", "django"},
		MinExperience: intPtr(5),
	}
	got := CompileFilter(q)
	want := map[string]interface{}{
		"$and": []map[string]interface{}{
			{"skills": map[string]interface{}{"$in": []string{"python"}}},
			{"skills": map[string]interface{}{"$in": []string{"django"}}},
			{"experience_years": map[string]interface{}{"$gte": 5}},
		},
	}
	if !reflect.DeepEqual(map[string]interface{}(got), want) {
		t.Errorf("CompileFilter() = %+v, want %+v", got, want)
	}
}

func TestCompileFilterSingleSkillNoAnd(t *testing.T) {
	q := &core.ParsedQuery{MustHaveAll: []string{"react.js"}}
	got := CompileFilter(q)
	want := map[string]interface{}{"skills": map[string]interface{}{"$in": []string{"react"}}}
	if !reflect.DeepEqual(map[string]interface{}(got), want) {
		t.Errorf("CompileFilter() = %+v, want %+v", got, want)
	}
}

func TestCompileFilterLocationAlias(t *testing.T) {
	q := &core.ParsedQuery{Location: "NYC"}
	got := CompileFilter(q)
	want := map[string]interface{}{"location": map[string]interface{}{"$eq": "new york"}}
	if !reflect.DeepEqual(map[string]interface{}(got), want) {
		t.Errorf("CompileFilter() = %+v, want %+v", got, want)
	}
}

func TestCompileFilterEmptyReturnsNil(t *testing.T) {
	if got := CompileFilter(&core.ParsedQuery{}); got != nil {
		t.Errorf("CompileFilter() = %+v, want nil", got)
	}
}

func TestCompileFilterOneOfGroupsDisjunction(t *testing.T) {
	q := &core.ParsedQuery{
		MustHaveOneOfGroups: [][]string{{"java"}, {"python", "django"}},
	}
	got := CompileFilter(q)
	want := map[string]interface{}{
		"$or": []map[string]interface{}{
			{"skills": map[string]interface{}{"$in": []string{"java"}}},
			{"$and": []map[string]interface{}{
				{"skills": map[string]interface{}{"$in": []string{"python"}}},
				{"skills": map[string]interface{}{"$in": []string{"django"}}},
			}},
		},
	}
	if !reflect.DeepEqual(map[string]interface{}(got), want) {
		t.Errorf("CompileFilter() = %+v, want %+v", got, want)
	}
}
