// Package editor is the boundary between the project store and whatever
// edits the active file: a session bound to that file, its language tag,
// and a highlighted read-only rendering.
package editor

import "strings"

const (
	LangTypeScript = "typescript"
	LangJavaScript = "javascript"
	LangJSON       = "json"
	LangCSS        = "css"
	LangHTML       = "html"
	LangPlainText  = "plaintext"
)

// Language derives the editor language tag from a file name's suffix.
func Language(name string) string {
	switch {
	case strings.HasSuffix(name, ".ts"), strings.HasSuffix(name, ".tsx"):
		return LangTypeScript
	case strings.HasSuffix(name, ".js"), strings.HasSuffix(name, ".jsx"):
		return LangJavaScript
	case strings.HasSuffix(name, ".json"):
		return LangJSON
	case strings.HasSuffix(name, ".css"):
		return LangCSS
	case strings.HasSuffix(name, ".html"):
		return LangHTML
	default:
		return LangPlainText
	}
}
