// Package queryanalyzer implements the Query Analyzer: classify a raw
// query string into a QueryType and select the matching HybridConfig preset.
package queryanalyzer

import (
	"path/filepath"
	"strings"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

// QueryType is the closed query classification enum.
type QueryType string

const (
	QueryExactSymbol    QueryType = "ExactSymbol"
	QueryFilePath       QueryType = "FilePath"
	QuerySemanticIntent QueryType = "SemanticIntent"
	QueryCodeContent    QueryType = "CodeContent"
	QueryMixed          QueryType = "Mixed"
)

// recognizedSourceExtensions back rule 1 ("ends with a recognized source extension").
var recognizedSourceExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".rs": true, ".c": true, ".h": true, ".cpp": true, ".cc": true, ".hpp": true,
	".java": true,
}

// codeFragmentMarkers back rule 3.
var codeFragmentMarkers = []string{"fn ", "async ", "func ", "def ", "class ", "=>", "::"}

// Classify applies the classification rules, in order, to a raw query string.
func Classify(query string) QueryType {
	trimmed := strings.TrimSpace(query)

	if strings.ContainsAny(trimmed, "/\\") || recognizedSourceExtensions[strings.ToLower(filepath.Ext(trimmed))] {
		return QueryFilePath
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "how") || strings.HasPrefix(lower, "what") || strings.Contains(lower, "how to") {
		return QuerySemanticIntent
	}

	for _, marker := range codeFragmentMarkers {
		if strings.Contains(lower, marker) {
			return QueryCodeContent
		}
	}

	if !strings.ContainsAny(trimmed, " \t\n") && trimmed != "" {
		return QueryExactSymbol
	}

	return QueryMixed
}

// Preset selects the HybridConfig weights for a QueryType.
func Preset(qt QueryType) model.HybridConfig {
	switch qt {
	case QueryExactSymbol:
		return model.PresetExactMatch()
	case QuerySemanticIntent:
		return model.PresetSemanticFocused()
	case QueryCodeContent, QueryFilePath:
		return model.PresetContentFocused()
	default:
		return model.PresetBalanced()
	}
}
