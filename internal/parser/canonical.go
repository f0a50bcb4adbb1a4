package parser

import (
	"path/filepath"
	"strings"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

// canonicalKind maps the parser's broad per-language SymbolKind vocabulary onto
// the closed model.Kind enumeration. Kinds with no direct analogue
// (field, parameter, namespace, property, module, type) fold onto the closest
// member rather than being dropped, since the enum names exactly ten kinds.
func canonicalKind(k SymbolKind) model.Kind {
	switch k {
	case SymbolKindFunction:
		return model.KindFunction
	case SymbolKindMethod:
		return model.KindMethod
	case SymbolKindClass:
		return model.KindClass
	case SymbolKindStruct:
		return model.KindStruct
	case SymbolKindInterface:
		return model.KindInterface
	case SymbolKindEnum:
		return model.KindEnum
	case SymbolKindConstant:
		return model.KindConstant
	case SymbolKindVariable, SymbolKindField, SymbolKindParameter, SymbolKindProperty:
		return model.KindVariable
	case SymbolKindImport:
		return model.KindImport
	case SymbolKindExport:
		return model.KindExport
	case SymbolKindType, SymbolKindNamespace, SymbolKindModule:
		return model.KindStruct
	default:
		return model.KindVariable
	}
}

// ToModelSymbol converts a parser.Symbol into the canonical model.Symbol,
// canonicalizing the file path to forward slashes.
func ToModelSymbol(s *Symbol) model.Symbol {
	return model.Symbol{
		Name:       s.Name,
		Kind:       canonicalKind(s.Kind),
		Path:       CanonicalPath(s.FilePath),
		StartLine:  max1(s.Line),
		EndLine:    max1(endLineOf(s)),
		Signature:  s.Signature,
		Doc:        s.DocString,
		ParentName: s.Scope,
	}
}

func endLineOf(s *Symbol) int {
	if s.EndLine > 0 {
		return s.EndLine
	}
	return s.Line
}

func max1(line int) int {
	if line < 1 {
		return 1
	}
	return line
}

// CanonicalPath forward-slashes a path, per the orchestrator-boundary rule.
func CanonicalPath(p string) string {
	return filepath.ToSlash(strings.TrimSpace(p))
}

// ToModelSymbols converts and filters a parse result's symbols to canonical form,
// enforcing end >= start by clamping.
func ToModelSymbols(symbols []*Symbol) []model.Symbol {
	out := make([]model.Symbol, 0, len(symbols))
	for _, s := range symbols {
		ms := ToModelSymbol(s)
		if ms.EndLine < ms.StartLine {
			ms.EndLine = ms.StartLine
		}
		out = append(out, ms)
	}
	return out
}
