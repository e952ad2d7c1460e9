package domain

import "strings"

// Language is a submission language accepted by the platform
type Language string

const (
	LanguageJava   Language = "JAVA"
	LanguagePython Language = "PYTHON"
	LanguageCPP    Language = "CPP"
)

func Languages() []Language {
	return []Language{LanguageJava, LanguagePython, LanguageCPP}
}

// ParseLanguage accepts the wire names and the usual short aliases.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JAVA":
		return LanguageJava, true
	case "PYTHON", "PY":
		return LanguagePython, true
	case "CPP", "C++":
		return LanguageCPP, true
	}
	return "", false
}

// Difficulty of a problem. The catalog serves "easy" lower-cased.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type CodeStub struct {
	ID           string   `json:"_id,omitempty"`
	Language     Language `json:"language"`
	StartSnippet string   `json:"startSnippet"`
	EndSnippet   string   `json:"endSnippet"`
	UserSnippet  string   `json:"userSnippet"`
}

type ProblemAuthor struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Problem represents a problem definition served by the catalog
type Problem struct {
	ID          string        `json:"_id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Difficulty  Difficulty    `json:"difficulty"`
	Category    string        `json:"category,omitempty"`
	TestCases   []TestCase    `json:"testcases"`
	CodeStubs   []CodeStub    `json:"codeStubs"`
	Editorial   string        `json:"editorial,omitempty"`
	CreatedBy   ProblemAuthor `json:"createdBy"`
}

// StubFor returns the starter code for a language.
func (p *Problem) StubFor(lang Language) (CodeStub, bool) {
	for _, stub := range p.CodeStubs {
		if stub.Language == lang {
			return stub, true
		}
	}
	return CodeStub{}, false
}

// ExampleTestCases returns at most n test cases to show alongside the description.
func (p *Problem) ExampleTestCases(n int) []TestCase {
	if n < 0 {
		n = 0
	}
	if n > len(p.TestCases) {
		n = len(p.TestCases)
	}
	return p.TestCases[:n]
}
