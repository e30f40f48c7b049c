// Package branch extracts Jira issue keys and structure from git branch names.
package branch

import (
	"regexp"
	"strings"
)

// Info holds the parts extracted from a branch name.
type Info struct {
	Original         string `json:"original"`
	Type             string `json:"type,omitempty"`
	Issue            string `json:"issue,omitempty"`
	Description      string `json:"description,omitempty"`
	ValidIssueFormat bool   `json:"valid_issue_format"`
}

// patterns are tried top-down; the first match wins.
// Matching is case-insensitive; captured issues are upper-cased afterwards.
var patterns = []*regexp.Regexp{
	// type/PROJ-123-description
	regexp.MustCompile(`(?i)^(?P<type>[^/]+)/(?P<issue>[A-Z]+-\d+)-(?P<desc>.+)$`),
	// type/PROJ-123
	regexp.MustCompile(`(?i)^(?P<type>[^/]+)/(?P<issue>[A-Z]+-\d+)$`),
	// PROJ-123-description
	regexp.MustCompile(`(?i)^(?P<issue>[A-Z]+-\d+)-(?P<desc>.+)$`),
	// PROJ-123
	regexp.MustCompile(`(?i)^(?P<issue>[A-Z]+-\d+)$`),
	// type/PROJ123
	regexp.MustCompile(`(?i)^(?P<type>[^/]+)/(?P<issue>[A-Z]+\d+)$`),
	// PROJ123
	regexp.MustCompile(`(?i)^(?P<issue>[A-Z]+\d+)$`),
}

var validIssue = regexp.MustCompile(`^[A-Z]+-?\d+$`)

var descReplacer = strings.NewReplacer("-", " ", "_", " ")

// Parse analyzes a branch name and extracts issue information.
// It never fails; an unrecognized name yields an Info with only Original set.
func Parse(name string) Info {
	info := Info{Original: name}
	if name == "" {
		return info
	}

	for _, pat := range patterns {
		m := pat.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		for i, group := range pat.SubexpNames() {
			switch group {
			case "type":
				info.Type = strings.ToLower(m[i])
			case "issue":
				info.Issue = strings.ToUpper(m[i])
			case "desc":
				info.Description = descReplacer.Replace(m[i])
			}
		}
		info.ValidIssueFormat = validIssue.MatchString(info.Issue)
		break
	}

	return info
}

// ExtractIssue returns the issue key for a branch name, or "" when the
// name carries no well-formed key.
func ExtractIssue(name string) string {
	info := Parse(name)
	if !info.ValidIssueFormat {
		return ""
	}
	return info.Issue
}

// commonTypes are branch type prefixes recognized for categorization.
var commonTypes = map[string]bool{
	"feature": true, "feat": true, "bugfix": true, "fix": true,
	"hotfix": true, "release": true, "chore": true, "docs": true,
	"style": true, "refactor": true, "test": true, "perf": true,
	"build": true, "ci": true,
}

// Category buckets a branch by its type prefix: feature, bugfix, release,
// maintenance, test, or other.
func Category(name string) string {
	info := Parse(name)
	switch info.Type {
	case "feature", "feat":
		return "feature"
	case "bugfix", "fix", "hotfix":
		return "bugfix"
	case "release":
		return "release"
	case "chore", "docs", "style", "refactor":
		return "maintenance"
	case "test":
		return "test"
	default:
		return "other"
	}
}

var slugStrip = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
var slugSpaces = regexp.MustCompile(`\s+`)

// Suggest builds a conventional branch name for an issue key. Unknown types
// fall back to "feature"; the description is slugified with hyphens.
func Suggest(issue, branchType, description string) string {
	if issue == "" {
		return ""
	}
	branchType = strings.ToLower(branchType)
	if !commonTypes[branchType] {
		branchType = "feature"
	}
	if description == "" {
		return branchType + "/" + issue
	}
	slug := slugStrip.ReplaceAllString(description, "")
	slug = slugSpaces.ReplaceAllString(strings.TrimSpace(slug), "-")
	return branchType + "/" + issue + "-" + strings.ToLower(slug)
}
