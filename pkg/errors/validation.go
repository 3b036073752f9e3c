package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// workflowTypeRegex matches workflow type identifiers such as "feature" or
// "bug-fix_v2".
var workflowTypeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateWorkflowType checks a workflow type before it is used in a source
// lookup. Types end up in URL paths, file names and cache keys, so anything
// outside a conservative character set is rejected.
func ValidateWorkflowType(name string) error {
	if name == "" {
		return New(ErrCodeInvalidWorkflowType, "workflow type cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidWorkflowType, "workflow type too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidWorkflowType, "workflow type contains invalid characters: %q", "..")
	}
	if !workflowTypeRegex.MatchString(name) {
		return New(ErrCodeInvalidWorkflowType, "invalid workflow type: %q", name)
	}
	return nil
}

// ValidateRef checks a node ref. Refs are free-form labels, so only empty
// values, control characters and excessive length are rejected.
func ValidateRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return New(ErrCodeInvalidWorkflow, "node ref cannot be empty")
	}
	if len(ref) > 256 {
		return New(ErrCodeInvalidWorkflow, "node ref too long (max 256 characters)")
	}
	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidWorkflow, "node ref %q contains control characters", ref)
		}
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateURL ensures a source URL uses http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
