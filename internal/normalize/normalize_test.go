package normalize

import (
	"reflect"
	"testing"
)

func TestNormalizeDropsStopWordsAndShortTokens(t *testing.T) {
	got := Normalize("The quick connect to a server")
	want := []string{"quick", "connect", "server"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestNormalizeDropsTokensOfLengthTwoOrLess(t *testing.T) {
	got := Normalize("an id of db")
	if len(got) != 0 {
		t.Fatalf("Normalize() = %v, want empty (all tokens are stop words or length <= 2)", got)
	}
}

func TestNormalizeStemsWords(t *testing.T) {
	got := Normalize("connecting connections connected")
	for _, tok := range got {
		if tok != "connect" {
			t.Fatalf("expected all tokens to stem to 'connect', got %v", got)
		}
	}
}

func TestNormalizeSymbolCamelCase(t *testing.T) {
	got := NormalizeSymbol("getUserByID")
	want := []string{"get", "user", "by", "id"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSymbol(getUserByID) = %v, want %v", got, want)
	}
}

func TestNormalizeSymbolSnakeCase(t *testing.T) {
	got := NormalizeSymbol("parse_http_request")
	want := []string{"pars", "http", "request"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSymbol(parse_http_request) = %v, want %v", got, want)
	}
}

func TestNormalizeSymbolAcronymBoundary(t *testing.T) {
	got := NormalizeSymbol("HTTPServer")
	want := []string{"http", "server"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSymbol(HTTPServer) = %v, want %v", got, want)
	}
}

func TestNormalizeSymbolDropsSingleLetterParts(t *testing.T) {
	got := NormalizeSymbol("a_b_longName")
	want := []string{"long", "name"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSymbol(a_b_longName) = %v, want %v", got, want)
	}
}

func TestStemEmptyString(t *testing.T) {
	if got := Stem(""); got != "" {
		t.Fatalf("Stem(\"\") = %q, want empty", got)
	}
}
