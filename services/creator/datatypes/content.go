// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// MaxPostChars is the per-post character budget for social threads.
const MaxPostChars = 280

// HeroImage is an optional generated illustration attached to a blog post.
type HeroImage struct {
	Provider string `json:"provider"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	AltText  string `json:"alt_text,omitempty"`
}

// BlogPost is the finished output of the blog creator.
type BlogPost struct {
	Title    string     `json:"title" validate:"required,min=3,max=300"`
	Markdown string     `json:"markdown" validate:"required,min=100"`
	Tags     []string   `json:"tags,omitempty"`
	Hero     *HeroImage `json:"hero,omitempty"`
	Critique *Critique  `json:"critique,omitempty"`
}

// SocialThread is the finished output of the social creator: an ordered
// run of posts, each within MaxPostChars.
type SocialThread struct {
	Posts    []string  `json:"posts" validate:"required,min=1,dive,min=1,max=280"`
	Hashtags []string  `json:"hashtags,omitempty"`
	Critique *Critique `json:"critique,omitempty"`
}

// GeneratedFile is one produced source file in a code project.
type GeneratedFile struct {
	Path     string `json:"path" validate:"required"`
	Contents string `json:"contents" validate:"required"`
}

// CodeProject is the finished output of the code sub-pipeline.
type CodeProject struct {
	Name       string          `json:"name" validate:"required"`
	Language   string          `json:"language" validate:"required"`
	Readme     string          `json:"readme,omitempty"`
	Files      []GeneratedFile `json:"files" validate:"required,min=1,dive"`
	Plan       *CodePlan       `json:"plan,omitempty"`
	Critique   *Critique       `json:"critique,omitempty"`
	Iterations int             `json:"iterations"`
}

// File returns the file at path, or nil when the project has none.
func (p *CodeProject) File(path string) *GeneratedFile {
	for i := range p.Files {
		if p.Files[i].Path == path {
			return &p.Files[i]
		}
	}
	return nil
}

// Upsert replaces the file at f.Path or appends it when absent.
func (p *CodeProject) Upsert(f GeneratedFile) {
	for i := range p.Files {
		if p.Files[i].Path == f.Path {
			p.Files[i] = f
			return
		}
	}
	p.Files = append(p.Files, f)
}
