package search

import "strings"

// roleFamilyNamespaces is the broad-mode path (a) namespace set: a role
// family keyword hit selects these pre-declared namespaces directly,
// skipping skill-keyword inference.
var roleFamilyNamespaces = map[string][]string{
	"qa": {"full_stack_development_java", "full_stack_development_python",
		"full_stack_development_selenium", "full_stack_development_dotnet",
		"programming_scripting", "web_mobile_development"},
	"software_engineer": {"full_stack_development_java", "full_stack_development_python",
		"full_stack_development_dotnet", "full_stack_development_net",
		"web_mobile_development", "programming_scripting"},
	"developer": {"full_stack_development_java", "full_stack_development_python",
		"full_stack_development_dotnet", "full_stack_development_net",
		"web_mobile_development", "programming_scripting"},
	"data_engineer": {"data_science", "data_analysis_business_intelligence",
		"databases_data_technologies", "programming_scripting",
		"cloud_platforms_aws", "cloud_platforms_azure", "cloud_platforms_gcp"},
	"devops": {"devops_platform_engineering", "cloud_platforms_aws",
		"cloud_platforms_azure", "programming_scripting"},
}

// roleNormalization canonicalizes designation variants onto one family id,
// used for hard role gating and designation scoring: exact-match then
// substring-match against lowercased, whitespace-collapsed text.
var roleNormalization = map[string][]string{
	"qa_automation_engineer": {"qa automation engineer", "automation qa engineer",
		"qa engineer automation", "qa engineer - automation", "automation test engineer",
		"test automation engineer", "software test automation engineer",
		"qa engineer – automation", "sdet", "tester", "qa tester", "test engineer",
		"qa test engineer", "quality assurance tester", "qa engineer",
		"quality assurance engineer"},
	"software_engineer": {"software engineer", "software developer", "application developer"},
	"scrum_master": {"scrum master", "agile scrum master", "certified scrummaster",
		"certified scrum master", "scrummaster", "scrum master/agile coach"},
	"project_manager": {"project manager", "program manager", "project/program manager",
		"technical project manager"},
	"change_manager": {"change manager", "organizational change manager",
		"ocm consultant", "change management consultant"},
}

// normalizeRole returns the canonical family id for text, if any variant
// exact-matches or substring-matches after lowercasing and whitespace
// collapsing.
func normalizeRole(text string) (string, bool) {
	normalized := collapseWhitespace(strings.ToLower(strings.TrimSpace(text)))
	if normalized == "" {
		return "", false
	}
	for family, variants := range roleNormalization {
		for _, variant := range variants {
			if normalized == variant {
				return family, true
			}
		}
	}
	for family, variants := range roleNormalization {
		for _, variant := range variants {
			if strings.Contains(normalized, variant) {
				return family, true
			}
		}
	}
	return "", false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// roleFamilyKeyword detects a broad-mode path (a) hit: text contains one
// of the pre-declared role-family keywords.
func roleFamilyKeyword(text string) (string, bool) {
	normalized := strings.ToLower(text)
	for _, family := range []string{"qa", "software_engineer", "developer", "data_engineer", "devops"} {
		keyword := strings.ReplaceAll(family, "_", " ")
		if strings.Contains(normalized, keyword) {
			return family, true
		}
	}
	return "", false
}
