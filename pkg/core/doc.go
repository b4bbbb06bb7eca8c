// Package core defines the shared language of the Truffle analyzer.
//
// This package contains:
//   - The statement and expression AST produced by pkg/parser
//   - Dialect configuration data (identifier rules, placeholder style)
//   - Severity levels shared by diagnostics and the CLI
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
