// Package schemas holds the JSON Schemas for persisted engine documents.
package schemas

import "embed"

// Files contains every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS
