// Package assets provides the FORGE hook scripts, helper scripts and agent
// documents that the installer copies into a workspace. They are embedded
// in the binary so the installer works without a FORGE checkout.
package assets

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed all:forge
var embedded embed.FS

// Locations inside a FORGE tree, embedded or on disk.
const (
	HooksDir       = "hooks"
	ScriptsDir     = "scripts"
	IntegrationDir = "integrations/agent-orchestrator"
)

// Embedded returns the FORGE tree compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "forge")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source returns the on-disk FORGE checkout at root, or the embedded tree
// when root is empty.
func Source(root string) fs.FS {
	if root == "" {
		return Embedded()
	}
	return os.DirFS(root)
}

// Describe names the source for progress output.
func Describe(root string) string {
	if root == "" {
		return "embedded"
	}
	return root
}
