package plan

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// FallbackProjectName is used when nothing usable can be derived
	FallbackProjectName = "generated-app"

	maxProjectNameLen = 40
	maxBranchNameLen  = 60

	branchPrefix = "build"
)

var (
	versionTokenRe = regexp.MustCompile(`(?i)\bv?\d+(\.\d+)+\b|\bv\d+\b`)
	nonAlnumRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// domainTerms transliterates recurring design-document terms into ASCII
// identifiers before the generic sanitization pass runs.
var domainTerms = []struct {
	term string
	repl string
}{
	{"管理系统", "management-system"},
	{"管理平台", "management-platform"},
	{"小程序", "miniapp"},
	{"商城", "mall"},
	{"系统", "system"},
	{"平台", "platform"},
	{"后台", "admin"},
	{"官网", "website"},
}

// SanitizeProjectName converts a document-derived name into a
// repository-safe identifier: version tokens stripped, domain terms
// transliterated, non-alphanumeric runs collapsed to a single dash,
// lower-cased, forced to start with a letter, and capped in length
// at a word boundary.
func SanitizeProjectName(name string) string {
	s := versionTokenRe.ReplaceAllString(name, " ")

	for _, t := range domainTerms {
		s = strings.ReplaceAll(s, t.term, " "+t.repl+" ")
	}

	s = strings.ToLower(s)
	s = nonAlnumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return FallbackProjectName
	}

	if s[0] < 'a' || s[0] > 'z' {
		s = "app-" + s
	}

	if len(s) > maxProjectNameLen {
		cut := strings.LastIndex(s[:maxProjectNameLen], "-")
		if cut <= 0 {
			cut = maxProjectNameLen
		}
		s = strings.Trim(s[:cut], "-")
	}

	return s
}

// ProjectNameFromRemote extracts a project name from a remote repository
// address: the last path segment with any .git suffix stripped. Returns ""
// when no usable segment exists.
func ProjectNameFromRemote(remoteURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(remoteURL), "/")
	if trimmed == "" {
		return ""
	}

	// Handle both URL and scp-like forms (git@host:org/repo.git).
	idx := strings.LastIndexAny(trimmed, "/:")
	segment := trimmed
	if idx >= 0 {
		segment = trimmed[idx+1:]
	}
	segment = strings.TrimSuffix(segment, ".git")
	if segment == "" {
		return ""
	}

	return SanitizeProjectName(segment)
}

// DeriveProjectName resolves the project name using the fixed precedence:
// explicit argument, remote address, document-derived name, fallback.
func DeriveProjectName(explicit, remoteURL, documentName string) string {
	if strings.TrimSpace(explicit) != "" {
		return SanitizeProjectName(explicit)
	}

	if name := ProjectNameFromRemote(remoteURL); name != "" && name != FallbackProjectName {
		return name
	}

	if strings.TrimSpace(documentName) != "" {
		return SanitizeProjectName(documentName)
	}

	return FallbackProjectName
}

// DeriveBranchName returns the branch for a build: the explicit hint when
// the document names one, otherwise a date-stamped name from the fixed
// template, ASCII-only and bounded in length.
func DeriveBranchName(hint, projectName string, now time.Time) string {
	if strings.TrimSpace(hint) != "" {
		return strings.TrimSpace(hint)
	}

	branch := fmt.Sprintf("%s/%s-%s", branchPrefix, now.Format("20060102"), SanitizeProjectName(projectName))
	if len(branch) > maxBranchNameLen {
		branch = strings.Trim(branch[:maxBranchNameLen], "-")
	}
	return branch
}
