// Package migrations embeds the SQL migrations of the master directory
// database.
package migrations

import "embed"

// Master holds the master directory migrations under "master/"
//
//go:embed master/*.sql
var Master embed.FS

// MasterDir is the directory inside Master holding the migrations
const MasterDir = "master"
