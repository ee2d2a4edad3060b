package sqlassets

import _ "embed"

// PropertiesSQL holds the listing tables, unique indexes and the create/update procedures.
//
//go:embed schema/properties.sql
var PropertiesSQL string
