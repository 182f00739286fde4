// Package schemas holds the JSON Schemas for the CLI's file inputs and outputs.
package schemas

import _ "embed"

// Selectors validates a bulk-run selectors file.
//
//go:embed selectors.schema.json
var Selectors string

// Summary validates the JSON run summary.
//
//go:embed summary.schema.json
var Summary string
