package executor

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/crewforge"
)

//go:embed templates/analysis_prompt.md
var analysisPromptTemplate string

//go:embed templates/strategy_prompt.md
var strategyPromptTemplate string

//go:embed templates/candidate_prompt.md
var candidatePromptTemplate string

//go:embed templates/implementation_prompt.md
var implementationPromptTemplate string

//go:embed templates/evaluation_prompt.md
var evaluationPromptTemplate string

var (
	analysisTmpl       *template.Template
	strategyTmpl       *template.Template
	candidateTmpl      *template.Template
	implementationTmpl *template.Template
	evaluationTmpl     *template.Template
)

func init() {
	analysisTmpl = template.Must(template.New("analysis").Parse(analysisPromptTemplate))
	strategyTmpl = template.Must(template.New("strategy").Parse(strategyPromptTemplate))
	candidateTmpl = template.Must(template.New("candidate").Parse(candidatePromptTemplate))
	implementationTmpl = template.Must(template.New("implementation").Parse(implementationPromptTemplate))
	evaluationTmpl = template.Must(template.New("evaluation").Parse(evaluationPromptTemplate))
}

type analysisTemplateData struct {
	Task string
}

type strategyTemplateData struct {
	Task       string
	Analysis   string
	Refinement string
}

type candidateTemplateData struct {
	Task       string
	Analysis   string
	Algorithm  string
	Index      int
	Total      int
	Refinement string
}

type implementationTemplateData struct {
	Task       string
	Analysis   string
	Planning   string
	Refinement string
}

type evaluationTemplateData struct {
	Task           string
	Analysis       string
	Planning       string
	Implementation string
}

// toJSON renders structured phase inputs into prompts.
func toJSON(v any) string {
	if v == nil {
		return "(none)"
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "(unserializable)"
	}
	return string(raw)
}

// formatRefinement renders evaluation feedback for a refinement re-run, or
// an empty string on a first run.
func formatRefinement(ref *crewforge.Refinement) string {
	if ref == nil {
		return ""
	}

	var b strings.Builder
	if len(ref.Weaknesses) > 0 {
		b.WriteString("Weaknesses found in the previous iteration:\n")
		for _, w := range ref.Weaknesses {
			fmt.Fprintf(&b, "- %s\n", w.Description)
		}
	}
	if len(ref.Recommendations) > 0 {
		b.WriteString("Apply these recommendations:\n")
		for _, r := range ref.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r.Action)
		}
	}
	return b.String()
}
