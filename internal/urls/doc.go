// Package urls provides centralized constants for the documentation URLs
// printed by the command line tools.
//
// Usage:
//
//	import "github.com/muurk/opensprinkler/internal/urls"
//
//	fmt.Printf("API reference: %s\n", urls.APIDocumentation)
package urls
