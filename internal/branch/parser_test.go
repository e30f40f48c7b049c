package branch

import (
	"fmt"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		branch    string
		wantType  string
		wantIssue string
		wantDesc  string
		wantValid bool
	}{
		{"type issue desc", "feature/PROJ-42-login-form", "feature", "PROJ-42", "login form", true},
		{"type issue", "bugfix/PROJ-77", "bugfix", "PROJ-77", "", true},
		{"issue desc", "PROJ-123-fix_the_thing", "", "PROJ-123", "fix the thing", true},
		{"bare issue", "PROJ-5", "", "PROJ-5", "", true},
		{"type issue no hyphen", "hotfix/PROJ99", "hotfix", "PROJ99", "", true},
		{"bare issue no hyphen", "ABC123", "", "ABC123", "", true},
		{"lowercase input", "feat/proj-9-some-desc", "feat", "PROJ-9", "some desc", true},
		{"no issue", "wip-local", "", "", "", false},
		{"main", "main", "", "", "", false},
		{"empty", "", "", "", "", false},
		{"underscore desc", "feature/ABC-1-a_b-c", "feature", "ABC-1", "a b c", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.branch)
			if info.Original != tt.branch {
				t.Errorf("Original = %q, want %q", info.Original, tt.branch)
			}
			if info.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", info.Type, tt.wantType)
			}
			if info.Issue != tt.wantIssue {
				t.Errorf("Issue = %q, want %q", info.Issue, tt.wantIssue)
			}
			if info.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", info.Description, tt.wantDesc)
			}
			if info.ValidIssueFormat != tt.wantValid {
				t.Errorf("ValidIssueFormat = %v, want %v", info.ValidIssueFormat, tt.wantValid)
			}
		})
	}
}

func TestExtractIssue(t *testing.T) {
	if got := ExtractIssue("feature/PROJ-42-login"); got != "PROJ-42" {
		t.Errorf("ExtractIssue = %q, want PROJ-42", got)
	}
	if got := ExtractIssue("random-branch"); got != "" {
		t.Errorf("ExtractIssue = %q, want empty", got)
	}
}

// Round-trip: a branch built from (type, key, desc) parses back to the
// same type and issue.
func TestParseRoundTrip(t *testing.T) {
	types := []string{"feature", "fix", "hotfix", "chore"}
	keys := []string{"PROJ-1", "ABC-42", "LONGKEY-9999"}
	descs := []string{"", "short", "multi word description"}

	for _, typ := range types {
		for _, key := range keys {
			for _, desc := range descs {
				name := Suggest(key, typ, desc)
				t.Run(name, func(t *testing.T) {
					info := Parse(name)
					if info.Issue != key {
						t.Errorf("Parse(%q).Issue = %q, want %q", name, info.Issue, key)
					}
					if info.Type != typ {
						t.Errorf("Parse(%q).Type = %q, want %q", name, info.Type, typ)
					}
					if !info.ValidIssueFormat {
						t.Errorf("Parse(%q).ValidIssueFormat = false", name)
					}
				})
			}
		}
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		issue, typ, desc, want string
	}{
		{"PROJ-1", "feature", "Add login!", "feature/PROJ-1-add-login"},
		{"PROJ-1", "unknown", "", "feature/PROJ-1"},
		{"PROJ-2", "fix", "", "fix/PROJ-2"},
		{"", "feature", "whatever", ""},
	}
	for _, tt := range tests {
		if got := Suggest(tt.issue, tt.typ, tt.desc); got != tt.want {
			t.Errorf("Suggest(%q, %q, %q) = %q, want %q", tt.issue, tt.typ, tt.desc, got, tt.want)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := map[string]string{
		"feature/PROJ-1-x": "feature",
		"feat/PROJ-1":      "feature",
		"fix/PROJ-2":       "bugfix",
		"release/REL-1":    "release",
		"chore/PROJ-3":     "maintenance",
		"test/PROJ-4":      "test",
		"PROJ-5":           "other",
	}
	for name, want := range tests {
		if got := Category(name); got != want {
			t.Errorf("Category(%q) = %q, want %q", name, got, want)
		}
	}
}

func ExampleParse() {
	info := Parse("feature/PROJ-42-login-form")
	fmt.Println(info.Issue, info.Type, info.Description)
	// Output: PROJ-42 feature login form
}
