// Package version holds the release version of the synapse binaries.
package version

// Version is overridden at build time with -ldflags "-X".
var Version = "0.3.0-dev"
