package migrations

import "embed"

// FS holds the schema for every supported database, one sub folder per
// golang-migrate driver name.
//
//go:embed postgres mysql sqllite3
var FS embed.FS
