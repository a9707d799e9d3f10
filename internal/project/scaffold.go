package project

import "cipherstudio-cli/internal/model"

// Fixed ids of the starter scaffold. They double as the protected set.
const (
	RootID        = "root"
	PublicID      = "public"
	PublicIndexID = "public_index"
	SrcID         = "src"
	SrcIndexID    = "src_index"
	SrcAppID      = "src_app"
	PackageID     = "pkg"

	DefaultProjectName = "MyProject"

	// New default files are created in this folder when the last file is removed.
	DefaultFolderID    = SrcID
	DefaultNewFileName = "NewFile.js"
)

const (
	ScaffoldIndexHTML = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>CipherStudio App</title>
  </head>
  <body>
    <div id="root"></div>
  </body>
</html>
`
	ScaffoldIndexJS = `import React from 'react'
import { createRoot } from 'react-dom/client'
import App from './App'

createRoot(document.getElementById('root')).render(<App />)
`
	ScaffoldAppJS = `export default function App(){
  return <div style={{padding:16}}><h2>Hello from CipherStudio</h2><p>Edit files to see live updates.</p></div>
}
`
	ScaffoldPackageJSON = `{
  "name": "cipherstudio-project",
  "version": "1.0.0",
  "main": "src/index.js",
  "dependencies": {
    "react": "18.3.1",
    "react-dom": "18.3.1"
  }
}
`
	defaultNewFileContent = "export default function App(){ return <div style={{padding:16}}>New file</div> }\n"
)

var protectedIDs = map[string]bool{
	RootID:        true,
	PublicID:      true,
	PublicIndexID: true,
	SrcID:         true,
	SrcIndexID:    true,
	SrcAppID:      true,
	PackageID:     true,
}

// ProtectedIDs returns the protected id set in scaffold order.
func ProtectedIDs() []string {
	return []string{RootID, PublicID, PublicIndexID, SrcID, SrcIndexID, SrcAppID, PackageID}
}

// Scaffold returns the starter tree for a project that has never been opened.
func Scaffold(projectID string) model.Project {
	parent := model.StrPtr
	nodes := []model.Node{
		{ID: RootID, Name: DefaultProjectName, Kind: model.KindFolder},
		{ID: PublicID, Name: "public", Kind: model.KindFolder, ParentID: parent(RootID)},
		{ID: PublicIndexID, Name: "index.html", Kind: model.KindFile, ParentID: parent(PublicID), Content: ScaffoldIndexHTML},
		{ID: SrcID, Name: "src", Kind: model.KindFolder, ParentID: parent(RootID)},
		{ID: SrcIndexID, Name: "index.js", Kind: model.KindFile, ParentID: parent(SrcID), Content: ScaffoldIndexJS},
		{ID: SrcAppID, Name: "App.js", Kind: model.KindFile, ParentID: parent(SrcID), Content: ScaffoldAppJS},
		{ID: PackageID, Name: "package.json", Kind: model.KindFile, ParentID: parent(RootID), Content: ScaffoldPackageJSON},
	}
	return model.Project{
		ProjectID:      projectID,
		Name:           DefaultProjectName,
		Nodes:          nodes,
		ActiveFileID:   model.StrPtr(SrcAppID),
		SelectedNodeID: model.StrPtr(SrcAppID),
	}
}
