package migrations

import "embed"

// FS embeds the SQL migrations of the crowdfund schema. golang-migrate
// reads them through the iofs source driver.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
