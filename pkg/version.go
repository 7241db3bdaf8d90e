// Package sp7tree keeps build information of the sp7tree tool.
package sp7tree

var (
	// Version of sp7tree, set by build flags.
	Version = "v0.1.0"

	// Build timestamp, set by build flags.
	Build = "n/a"
)
