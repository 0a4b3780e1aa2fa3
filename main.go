// =============================================================================
// Deal Pipeline - Main Entry Point
// =============================================================================
//
// USAGE:
//   dealpipe process   - Validate and transform deal files
//   dealpipe validate  - Validate a deal file without writing anything
//   dealpipe detect    - Print the detected format of files
//   dealpipe version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : readers, validation, transform, writers, config
//   - pkg/       : file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/deal-pipeline/cmd"
)

func main() {
	cmd.Execute()
}
