package storage

import (
	"fmt"

	"carport-configurator/internal/catalog"
)

// Catalog and configuration tables are physically prefixed per product line
// (steel_models, wood_models, ...). TableFor maps a logical name onto the
// prefixed table; shared tables (admin_users) are addressed directly.

func TableFor(line catalog.ProductLine, logical string) string {
	return fmt.Sprintf("%s_%s", line, logical)
}

func catalogTable(line catalog.ProductLine, kind catalog.Kind) string {
	return TableFor(line, string(kind))
}

func configurationTable(line catalog.ProductLine) string {
	return TableFor(line, "configurations")
}
