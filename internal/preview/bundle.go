// Package preview turns a project's path map into what a live preview runs
// and serves it over HTTP.
package preview

import "cipherstudio-cli/internal/project"

// Template files every preview needs. Missing ones are filled with the starter
// content so a half-built project still runs.
var templateFiles = map[string]string{
	"public/index.html": project.ScaffoldIndexHTML,
	"src/index.js":      project.ScaffoldIndexJS,
	"src/App.js":        project.ScaffoldAppJS,
	"package.json":      project.ScaffoldPackageJSON,
}

// TemplatePaths lists the fallback paths in a stable order.
func TemplatePaths() []string {
	return []string{"public/index.html", "src/index.js", "src/App.js", "package.json"}
}

// Bundle returns a copy of files with template fallbacks added for absent
// paths. Project files always take precedence.
func Bundle(files map[string]string) map[string]string {
	out := make(map[string]string, len(files)+len(templateFiles))
	for path, content := range templateFiles {
		out[path] = content
	}
	for path, content := range files {
		out[path] = content
	}
	return out
}
