package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/zenGate-Global/palmyra-rentals/database"
)

// BootstrapPropertySchema applies the embedded listing DDL: reference tables,
// properties with its title and slug unique indexes, and the create/update
// procedures. Every statement is idempotent so the helper is safe to run on
// each deploy, from the CLI, and from tests.
//
// The script contains plpgsql bodies, so it is sent as one simple-protocol
// Exec instead of being split on semicolons.
func BootstrapPropertySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("bootstrap property schema: pool is required")
	}

	if _, err := pool.Exec(ctx, sqlassets.PropertiesSQL); err != nil {
		return fmt.Errorf("apply property ddl: %w", err)
	}

	return nil
}
