// Package config handles suite loading for smokespec.
//
// It provides functionality for:
//   - Loading the suite from smokespec.yaml or .smokespec.yaml files
//   - The built-in default suite used when no file is present
//   - Per-method defaults for expected status and required headers
package config
