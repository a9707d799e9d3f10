package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNodeJSON_FolderOmitsContentAndKeepsNullParent(t *testing.T) {
	n := Node{ID: "root", Name: "MyProject", Kind: KindFolder}
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	if strings.Contains(got, "content") {
		t.Fatalf("expected folder json without content, got %s", got)
	}
	if !strings.Contains(got, `"parentId":null`) {
		t.Fatalf("expected explicit null parentId, got %s", got)
	}
	if !strings.Contains(got, `"type":"folder"`) {
		t.Fatalf("expected type=folder, got %s", got)
	}
}

func TestProjectClone_IsDeep(t *testing.T) {
	p := Project{
		ProjectID:    "p1",
		Nodes:        []Node{{ID: "root", Kind: KindFolder}, {ID: "a", Kind: KindFile, ParentID: StrPtr("root")}},
		ActiveFileID: StrPtr("a"),
	}
	c := p.Clone()
	*c.Nodes[1].ParentID = "other"
	c.Nodes[0].Name = "changed"
	*c.ActiveFileID = "b"

	if p.Nodes[1].Parent() != "root" {
		t.Fatalf("clone shares parent pointer")
	}
	if p.Nodes[0].Name != "" {
		t.Fatalf("clone shares node slice")
	}
	if Deref(p.ActiveFileID) != "a" {
		t.Fatalf("clone shares active pointer")
	}
}
