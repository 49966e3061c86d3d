// Package docprompt builds the LLM prompts used by the documentation
// pipeline: per-file analysis, per-directory summary, and the
// project-level README / reading-guide / API-summary prompts.
package docprompt

import (
	"fmt"
	"strings"
)

// FileAnalysis builds the prompt for a single source file. It asks for a
// structured Markdown writeup plus an in-band knowledge-graph JSON block
// delimited by the graph markers the Graph Fragment Parser looks for.
func FileAnalysis(filePath, codeContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following source file and produce detailed technical documentation.\n\n")
	fmt.Fprintf(&b, "File path: %s\n\n", filePath)
	fmt.Fprintf(&b, "Code:\n```\n%s\n```\n\n", codeContent)
	b.WriteString("Cover, in order:\n")
	b.WriteString("1. Overview — what this file does and why it exists.\n")
	b.WriteString("2. Key components — classes, functions, constants it defines.\n")
	b.WriteString("3. Dependencies — other modules it relies on.\n")
	b.WriteString("4. Core logic — the central algorithm or business rule.\n")
	b.WriteString("5. Usage example, if one is meaningful.\n\n")
	b.WriteString("6. API surface: check carefully whether this file defines any HTTP endpoint, RPC, or ")
	b.WriteString("websocket route (Flask/FastAPI/Express/Django/Spring/Gin/Axum decorators and router calls all count). ")
	b.WriteString("Only list routes that are explicitly present in the code — never guess. Use {param} for dynamic ")
	b.WriteString("path segments.\n\n")
	fmt.Fprintf(&b, "%s\n\n", fileUnderAnalysisNote(filePath))
	b.WriteString("7. Knowledge graph extraction: identify class, function, method, interface, struct, enum, and ")
	b.WriteString("constant nodes, plus contains/imports/calls/inherits/implements edges. Only extract what the code ")
	b.WriteString("plainly contains; never invent a relationship. Append, at the very end of your response, a single ")
	b.WriteString("JSON block matching this shape:\n\n")
	b.WriteString(graphBlockExample(filePath))
	b.WriteString("\nid naming convention: `{type}::{file_path}::{name}` or `{type}::{file_path}::{class}::{method}`. ")
	b.WriteString("line is the source line number where known; omit it otherwise.\n")
	return b.String()
}

// DirectorySummary builds the prompt for a directory rollup from its child
// artifacts' Markdown.
func DirectorySummary(dirName, dirPath, subDocuments string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following directory from its sub-module documentation.\n\n")
	fmt.Fprintf(&b, "Directory name: %s\nDirectory path: %s\n\n", dirName, dirPath)
	fmt.Fprintf(&b, "Sub-module documentation:\n%s\n\n", subDocuments)
	b.WriteString("Cover: the directory's overall responsibility, how its sub-modules relate, its core ")
	b.WriteString("capabilities, and any notable design pattern.\n\n")
	b.WriteString("Knowledge graph extraction: emit module/class/function/interface nodes for the sub-modules and ")
	b.WriteString("contains/imports/calls/depends edges between them, based only on what the sub-module docs ")
	b.WriteString("state. Append the JSON block in the same fenced form as file analysis, with ids of the form ")
	fmt.Fprintf(&b, "`{type}::%s::{name}`.\n", dirPath)
	return b.String()
}

// Readme builds the project README prompt from the concatenation of every
// node's documentation.
func Readme(projectName, projectPath, allDocuments string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a complete, practical README for this project so a new user can get started quickly.\n\n")
	fmt.Fprintf(&b, "Project name: %s\nProject path: %s\n\n", projectName, projectPath)
	fmt.Fprintf(&b, "All module documentation:\n%s\n\n", allDocuments)
	b.WriteString("Required sections: project introduction and main features; quick start (runtime requirements, ")
	b.WriteString("install steps, configuration, how to run); usage (CLI, library import, or API surface as ")
	b.WriteString("applicable); project structure tree; core module descriptions; a configuration reference table; ")
	b.WriteString("an FAQ section inferred from the project's shape. Mark anything you cannot infer from the code ")
	b.WriteString("as `<TBD>` rather than guessing. Use fenced code blocks with a language tag.\n")
	return b.String()
}

// ReadingGuide builds the prompt for the suggested reading order through the
// project's documented files.
func ReadingGuide(projectName, projectStructure, allDocuments string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce a reading-order guide for this project's documentation, aimed at a new contributor.\n\n")
	fmt.Fprintf(&b, "Project name: %s\n\nProject structure:\n%s\n\n", projectName, projectStructure)
	fmt.Fprintf(&b, "All module documentation:\n%s\n\n", allDocuments)
	b.WriteString("You must produce a single connected reading chain covering every important file, arrows ")
	b.WriteString("connecting each step, ordered from foundational to advanced (configuration and models before ")
	b.WriteString("business logic, entry points before core implementation, utilities before the features that use ")
	b.WriteString("them). For each arrow in the chain, explain why that file follows the previous one. Group files ")
	b.WriteString("into a layer overview (entry, config, model, service, utility). Optionally include a shortened ")
	b.WriteString("fast-path through the 4-6 files that matter most. Use Markdown; keep the chain coherent.\n")
	return b.String()
}

// APIExtract builds the first-stage prompt that pulls the API surface out of
// a single file's already-generated documentation.
func APIExtract(filePath, fileDoc string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extract every API endpoint precisely from the following file documentation — do not invent or ")
	b.WriteString("infer anything not explicitly stated.\n\n")
	fmt.Fprintf(&b, "File path: %s\n\nFile documentation:\n%s\n\n", filePath, fileDoc)
	b.WriteString("For every endpoint, state whether it requires authentication: decorators/dependencies such as ")
	b.WriteString("require_auth, require_admin, login_required, or a dependency injecting the current user all mean ")
	b.WriteString("authenticated; an endpoint explicitly described as public, a login endpoint, or a health/static ")
	b.WriteString("route is usually unauthenticated; if the documentation does not say, mark it \"unspecified\".\n\n")
	fmt.Fprintf(&b, "If the file defines endpoints, output a table titled \"Endpoints in %s\" with columns ", filePath)
	b.WriteString("#, Method, Path, Description, Auth. If it defines none, output exactly one line: ")
	b.WriteString("**This file defines no API endpoints.**\n\n")
	b.WriteString("Never fabricate an endpoint, generate example requests/responses, or omit an auth column.\n")
	return b.String()
}

// APISummary builds the second-stage prompt that merges every file's
// extracted endpoints into one project-level API reference.
func APISummary(projectName, apiDetails string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merge the per-file endpoint extractions below into one precise, de-duplicated API reference ")
	b.WriteString("for the project.\n\n")
	fmt.Fprintf(&b, "Project name: %s\n\nPer-file endpoint details:\n%s\n\n", projectName, apiDetails)
	b.WriteString("Every endpoint must appear exactly once; never invent one that isn't in the source material; ")
	b.WriteString("preserve the path, method, and auth requirement exactly as given.\n\n")
	b.WriteString("Output, in order: (1) a full endpoint table (#, module, method, path, description, auth); ")
	b.WriteString("(2) endpoints grouped by category — core business, resource management, auth/user, system ")
	b.WriteString("administration, then miscellaneous (health checks, static routes) — skipping any empty category; ")
	b.WriteString("(3) a summary of which endpoints require authentication and which don't.\n")
	return b.String()
}

func fileUnderAnalysisNote(p string) string {
	return fmt.Sprintf("File under analysis: %s", p)
}

func graphBlockExample(filePath string) string {
	return "<!-- GRAPH_DATA_START -->\n```json\n{\n" +
		fmt.Sprintf("  \"nodes\": [{\"id\": \"class::%s::ClassName\", \"label\": \"ClassName\", \"type\": \"class\", \"line\": 10}],\n", filePath) +
		fmt.Sprintf("  \"edges\": [{\"source\": \"file::%s\", \"target\": \"class::%s::ClassName\", \"type\": \"contains\"}],\n", filePath, filePath) +
		"  \"imports\": [{\"module\": \"os\", \"items\": [\"path\"]}]\n" +
		"}\n```\n<!-- GRAPH_DATA_END -->\n"
}
