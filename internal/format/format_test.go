package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteJSON_KeepsMarkupUnescaped(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": "<div id=\"root\"></div>"}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != `{"data":"<div id=\"root\"></div>"}`+"\n" {
		t.Fatalf("unexpected json: %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, "yaml", false); err == nil {
		t.Fatalf("expected error")
	}
	if Valid("yaml") || !Valid("EDN") || !Valid("") {
		t.Fatalf("unexpected Valid results")
	}
}

func TestWriteEDN_Compact(t *testing.T) {
	type node struct {
		ID       string  `json:"id"`
		ParentID *string `json:"parentId"`
		Size     int     `json:"size"`
	}
	var buf bytes.Buffer
	v := map[string]any{
		"data": map[string]any{
			"node":         node{ID: "src_app", Size: 12},
			"src/App.js":   "line1\nline2",
			"my file.js":   "x",
			"tags":         []string{"a", "b"},
			"ok":           true,
			"ratio":        1.5,
			"package.json": "{}",
		},
	}
	if err := WriteEDN(&buf, v, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:data {"my file.js" "x" :node {:id "src_app" :parentId nil :size 12} :ok true :package.json "{}" :ratio 1.5 :src/App.js "line1\nline2" :tags ["a" "b"]}}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected edn:\nwant %s\ngot  %s", want, got)
	}
}

func TestWriteEDN_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"a": []int{1}, "b": map[string]any{}}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"{",
		"  :a [",
		"    1",
		"  ]",
		"  :b {}",
		"}",
	}, "\n") + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected pretty edn:\nwant %q\ngot  %q", want, got)
	}
}

func TestIsKeyword(t *testing.T) {
	for _, k := range []string{"id", "activeFileId", "src/App.js", "package.json", "a-b?"} {
		if !isKeyword(k) {
			t.Fatalf("expected %q to be a keyword", k)
		}
	}
	for _, k := range []string{"", "1abc", "public/a/b.html", "a b", "/x", "x/"} {
		if isKeyword(k) {
			t.Fatalf("expected %q to be a string key", k)
		}
	}
}
