// internal/version/version.go
package version

// Version is the tool version reported by --version.
const Version = "0.1.0"
