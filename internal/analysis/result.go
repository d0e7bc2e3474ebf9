package analysis

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Result is the structured model verdict.
type Result struct {
	MatchScore      float64  `json:"matchScore"`
	Summary         string   `json:"summary"`
	MissingKeywords []string `json:"missingKeywords"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
}

//go:embed result.schema.json
var resultSchemaJSON string

var resultSchema = mustSchema(resultSchemaJSON)

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("analysis: invalid result schema: %v", err))
	}
	return schema
}

// fenceMarker matches a Markdown code fence with an optional language tag.
var fenceMarker = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// StripFences removes every code fence marker and trims the remainder.
func StripFences(text string) string {
	return strings.TrimSpace(fenceMarker.ReplaceAllString(text, ""))
}

// ParseResult strips fences, checks the shape and decodes the result.
func ParseResult(text string) (Result, error) {
	cleaned := StripFences(text)
	if cleaned == "" {
		return Result{}, fmt.Errorf("%w: empty output", ErrParse)
	}

	check, err := resultSchema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if !check.Valid() {
		problems := make([]string, 0, len(check.Errors()))
		for _, desc := range check.Errors() {
			problems = append(problems, desc.String())
		}
		return Result{}, fmt.Errorf("%w: %s", ErrParse, strings.Join(problems, "; "))
	}

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return result, nil
}
