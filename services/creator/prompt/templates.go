// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prompt holds the pipeline's prompt templates and rendering.
//
// Templates ship as compiled-in defaults and can be overridden per-name by
// dropping a .tmpl file into the configured prompt directory. The store
// hot-reloads overrides when the directory changes.
package prompt

// Template names. Override files use the name plus a .tmpl suffix,
// e.g. blog_plan.tmpl.
const (
	NameRoute = "route"

	NameBlogPlan     = "blog_plan"
	NameBlogGenerate = "blog_generate"
	NameBlogReview   = "blog_review"

	NameSocialPlan     = "social_plan"
	NameSocialGenerate = "social_generate"
	NameSocialReview   = "social_review"

	NameCodePlan     = "code_plan"
	NameCodeGenerate = "code_generate"
	NameCodeCritic   = "code_critic"
	NameCodeFix      = "code_fix"
)

var defaults = map[string]string{
	NameRoute: `You are a content router. Classify the user's idea into exactly one category.

Categories:
- blog: long-form written content, articles, tutorials, essays, guides
- social: short posts, threads, announcements for social platforms
- code: software, scripts, libraries, tools, anything to be implemented

Idea: {{.Idea}}

Respond with ONLY a JSON object. No explanation, no markdown, just JSON:
{"type": "<blog|social|code>", "confidence": <0.0-1.0>}`,

	NameBlogPlan: `You are an editorial planner for a technology blog.
Plan a post for the idea below. Pick a working title, a one-paragraph
summary, and an ordered list of section headings. If an illustration
would help, describe it in image_prompt.

Idea: {{.Idea}}
{{- if .Audience}}
Audience: {{.Audience}}
{{- end}}
{{- if .Tone}}
Tone: {{.Tone}}
{{- end}}

Respond with ONLY a JSON object matching:
{"title": "...", "summary": "...", "audience": "...", "tone": "...",
 "sections": ["..."], "keywords": ["..."], "image_prompt": "..."}`,

	NameBlogGenerate: `You are a staff writer. Write the full post in Markdown
following the plan exactly: use the planned title as the H1 and each planned
section as an H2, in order. Write substantive prose, not bullet stubs.

Plan:
{{.PlanJSON}}

Respond with ONLY a JSON object matching:
{"title": "...", "markdown": "...", "tags": ["..."]}`,

	NameBlogReview: `You are a demanding editor. Review the draft against the
plan. Score overall 0-100 and each dimension 0-10. List concrete fixes with
a target (the section heading or "title") and a severity of low, medium, or
high.

Plan:
{{.PlanJSON}}

Draft:
{{.Content}}

Respond with ONLY a JSON object matching:
{"overall": 0, "summary": "...",
 "dimensions": [{"name": "...", "score": 0, "rationale": "..."}],
 "suggestions": [{"target": "...", "description": "...", "severity": "low"}]}`,

	NameSocialPlan: `You are a social media strategist. Plan a thread for the
idea below: a hook, the beats the thread should hit in order, and hashtag
candidates as keywords.

Idea: {{.Idea}}
{{- if .Audience}}
Audience: {{.Audience}}
{{- end}}
{{- if .Tone}}
Tone: {{.Tone}}
{{- end}}

Respond with ONLY a JSON object matching:
{"title": "...", "summary": "...", "sections": ["..."], "keywords": ["..."]}`,

	NameSocialGenerate: `You are a social media writer. Write the thread from
the plan. One post per planned beat, each post at most {{.MaxChars}}
characters. The first post must hook; the last must close or call to action.

Plan:
{{.PlanJSON}}

Respond with ONLY a JSON object matching:
{"posts": ["..."], "hashtags": ["..."]}`,

	NameSocialReview: `You are a social media editor. Review the thread against
the plan. Score overall 0-100 and each dimension 0-10. Suggestions target a
post by its 1-based index, e.g. "post 3".

Plan:
{{.PlanJSON}}

Thread:
{{.Content}}

Respond with ONLY a JSON object matching:
{"overall": 0, "summary": "...",
 "dimensions": [{"name": "...", "score": 0, "rationale": "..."}],
 "suggestions": [{"target": "...", "description": "...", "severity": "low"}]}`,

	NameCodePlan: `You are a software architect. Plan a small, complete project
for the idea below. Choose go, python, or javascript. List every file the
generator must produce with its purpose, rate the implementation complexity
1-10, and define the rubric the reviewer will score against (weights 0-10).

Idea: {{.Idea}}

Respond with ONLY a JSON object matching:
{"project_name": "...", "language": "go", "description": "...",
 "files": [{"path": "...", "purpose": "..."}],
 "rubric": [{"name": "...", "description": "...", "weight": 0}],
 "complexity": 1}`,

	NameCodeGenerate: `You are a senior engineer. Implement the project from
the plan. Produce every planned file, complete and runnable, with no
placeholders or TODO stubs. Include a README in the readme field.

Plan:
{{.PlanJSON}}

Respond with ONLY a JSON object matching:
{"readme": "...", "files": [{"path": "...", "contents": "..."}]}`,

	NameCodeCritic: `You are a rigorous code reviewer. Review the project
against the plan and its rubric. Score overall 0-100 and each rubric
dimension 0-10. Every suggestion must target a specific file path and be
concretely actionable.

Plan:
{{.PlanJSON}}

Files:
{{.Content}}

Respond with ONLY a JSON object matching:
{"overall": 0, "summary": "...",
 "dimensions": [{"name": "...", "score": 0, "rationale": "..."}],
 "suggestions": [{"target": "...", "description": "...", "severity": "low"}]}`,

	NameCodeFix: `You are a senior engineer addressing review feedback. Apply
every suggestion below. Return only the files you changed, each complete.
Do not rewrite files the review did not flag.

Plan:
{{.PlanJSON}}

Current files:
{{.Content}}

Review:
{{.CritiqueJSON}}

Respond with ONLY a JSON object matching:
{"files": [{"path": "...", "contents": "..."}]}`,
}
