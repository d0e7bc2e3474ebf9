package analysis

import (
	"strings"

	"resume-matcher/internal/llm"
)

const systemPrompt = `You are an expert technical recruiter and ATS evaluator.
Compare the candidate's resume against the job description.
Return strictly valid JSON and nothing else, with exactly this shape:
{
  "matchScore": number between 0 and 100,
  "summary": string,
  "missingKeywords": [string],
  "strengths": [string],
  "improvements": [string]
}
Lists may be empty but must always be present.`

// BuildPrompt composes the evaluator request for a resume and job description.
func BuildPrompt(resume, job string) llm.Request {
	var b strings.Builder
	b.WriteString("RESUME:\n")
	b.WriteString(resume)
	b.WriteString("\n\n---\n\nJOB DESCRIPTION:\n")
	b.WriteString(job)
	return llm.Request{System: systemPrompt, User: b.String()}
}
