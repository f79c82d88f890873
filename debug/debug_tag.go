//go:build debug

package debug

// Debug switches on expensive checks and verbose error context.
const Debug = true
