package fields

import (
	"testing"

	"atsresume/internal/core"
)

func TestExtractEmailsDedupesAcrossWindows(t *testing.T) {
	text := "Contact: jane.doe@example.com\nSent: recruiter@naukri.com\nEmail: jane.doe@example.com"
	got := ExtractEmails(text, nil)
	if got != "jane.doe@example.com" {
		t.Fatalf("ExtractEmails() = %q, want jane.doe@example.com", got)
	}
}

func TestExtractEmailsExcludesForwardingHeaderLines(t *testing.T) {
	text := "From: recruiter@naukri.com\nSubject: Candidate profile\n\nReach the candidate at john@example.com"
	got := ExtractEmails(text, nil)
	if got != "john@example.com" {
		t.Fatalf("ExtractEmails() = %q, want john@example.com", got)
	}
}

func TestExtractEmailsReturnsMaskedSentinelWhenOnlyProxyDomains(t *testing.T) {
	text := "Email: someone@naukri.com"
	got := ExtractEmails(text, nil)
	if got != "masked_email" {
		t.Fatalf("ExtractEmails() = %q, want masked_email", got)
	}
}

func TestExtractEmailsFoldsInLLMAdditionalAddresses(t *testing.T) {
	got := ExtractEmails("no addresses in this text at all", []string{"Found@Example.com"})
	if got != "found@example.com" {
		t.Fatalf("ExtractEmails() = %q, want found@example.com", got)
	}
}

func TestEmailExtractorCommitUsesRegexPipeline(t *testing.T) {
	ex := emailExtractor()
	r := &core.Resume{}
	ex.Commit(r, "", "Email: candidate@example.com")
	if r.Email == nil || *r.Email != "candidate@example.com" {
		t.Fatalf("Email = %v, want candidate@example.com", r.Email)
	}
}
