package scaffold

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/valyala/fasttemplate"

	"github.com/sho7650/forge-install/internal/fsutil"
)

// WorkflowVersion is written into a fresh workflow state file.
const WorkflowVersion = "0.4.0"

const stateTemplate = `---
workflow: forge
version: "{{version}}"
objective: null
phase: null
status: null
started_at: null
last_updated: null
completed_phases: []
next_phase: null
branch: null
issue: null
---

# FORGE Workflow State

This file tracks the current FORGE workflow state.
Use ` + "`/forge:start`" + ` or ` + "`/forge:help`" + ` to begin.
`

const knowledgeTemplate = `# {{title}}

{{description}}

## Overview

<!-- Add high-level information here -->

---

*Last updated: {{date}}*
`

// Knowledge describes one template file in docs/forge/knowledge.
type Knowledge struct {
	File        string
	Title       string
	Description string
}

// KnowledgeFiles are created in this order.
var KnowledgeFiles = []Knowledge{
	{"brief.md", "Project Brief", "High-level project overview, goals, and scope."},
	{"assumptions.md", "Assumptions", "Key assumptions made during planning and development."},
	{"decisions.md", "Decisions", "Architecture and design decisions with rationale."},
	{"constraints.md", "Constraints", "Technical, business, and resource constraints."},
	{"risks.md", "Risks", "Identified risks and mitigation strategies."},
	{"glossary.md", "Glossary", "Domain terms and definitions."},
	{"traceability.md", "Traceability", "Requirements traceability and mapping."},
}

// DocDirs sit next to knowledge under docs/forge.
var DocDirs = []string{"phases", "handoffs", "debate"}

func render(tpl string, values map[string]interface{}) []byte {
	return []byte(fasttemplate.ExecuteString(tpl, "{{", "}}", values))
}

// RenderState returns the initial workflow state document.
func RenderState() []byte {
	return render(stateTemplate, map[string]interface{}{"version": WorkflowVersion})
}

// RenderKnowledge returns the template for k stamped with the date of now.
func RenderKnowledge(k Knowledge, now time.Time) []byte {
	return render(knowledgeTemplate, map[string]interface{}{
		"title":       k.Title,
		"description": k.Description,
		"date":        now.UTC().Format("2006-01-02"),
	})
}

// WriteState creates the workflow state file unless one exists.
func WriteState(path string) (bool, error) {
	created, err := fsutil.CreateExclusive(path, RenderState(), 0o644)
	if err != nil {
		return created, fmt.Errorf("failed to create workflow state: %w", err)
	}
	return created, nil
}

// WriteKnowledge creates dir and every knowledge template that does not
// exist yet. It returns the files it created.
func WriteKnowledge(dir string, now time.Time) ([]string, error) {
	if err := EnsureDirs(dir); err != nil {
		return nil, err
	}

	var created []string
	for _, k := range KnowledgeFiles {
		path := filepath.Join(dir, k.File)
		ok, err := fsutil.CreateExclusive(path, RenderKnowledge(k, now), 0o644)
		if err != nil {
			return created, fmt.Errorf("failed to create %s: %w", k.File, err)
		}
		if ok {
			created = append(created, k.File)
		}
	}
	return created, nil
}
