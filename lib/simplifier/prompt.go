package simplifier

import (
	"strings"
	"text/template"
)

// systemPrompt frames every hosted model call. The numbered rules are the
// contract the verification stage later checks.
const systemPrompt = `You are a medical text simplification expert. Your task is to simplify complex medical discharge summaries and clinical notes into plain language that patients can understand.

CRITICAL RULES:
1. NEVER omit numerical values (dosages, vitals, measurements)
2. NEVER omit medication names
3. NEVER change the meaning of medical instructions
4. Replace medical jargon with simple terms (e.g., "hypertension" → "high blood pressure")
5. Explain abbreviations (e.g., "PO" → "by mouth", "q.d." → "once a day")
6. Keep all numbers EXACTLY as they appear
7. Maintain all safety-critical information

Output ONLY the simplified text, nothing else.`

var userPromptTemplate = template.Must(template.New("prompt").Parse(
	`Simplify this medical text:

{{.Text}}{{if .Critical}}

IMPORTANT: You MUST include these exact values in your simplified text: {{.Critical}}{{end}}{{if .Instruction}}

{{.Instruction}}{{end}}`))

type promptData struct {
	Text        string
	Critical    string
	Instruction string
}

/**
BuildPrompt renders the user prompt sent to the hosted backends. Critical
entities are spelled out verbatim so the model cannot silently drop them, and
any retry instruction from a failed verification is appended last.
**/
func BuildPrompt(req Request) string {
	quoted := make([]string, 0, len(req.Entities))
	for _, e := range req.Entities {
		if e.Critical() {
			quoted = append(quoted, "'"+e.Text+"'")
		}
	}

	var prompt strings.Builder
	_ = userPromptTemplate.Execute(&prompt, promptData{
		Text:        req.Text,
		Critical:    strings.Join(quoted, ", "),
		Instruction: req.Instruction,
	})
	return prompt.String()
}

/**
RetryInstruction phrases the constraint for a second attempt after
verification found missing entities.
**/
func RetryInstruction(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	quoted := make([]string, len(missing))
	for i, term := range missing {
		quoted[i] = "'" + term + "'"
	}
	return "CRITICAL: You MUST include these exact terms: " + strings.Join(quoted, ", ")
}
