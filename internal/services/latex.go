package services

import _ "embed"

// classicResumeTemplate is the Harvard-style single-column LaTeX resume
// document offered to users for copy-paste.
//
//go:embed assets/resume_template.tex
var classicResumeTemplate string

// ClassicResumeTemplate returns the embedded LaTeX resume template verbatim.
func ClassicResumeTemplate() string {
	return classicResumeTemplate
}
