package migrations

import (
	"context"
	"fmt"
	"io/fs"

	persistence "github.com/goliatone/go-persistence-bun"
)

// Apply registers the migrations for dialect on client and runs them.
func Apply(ctx context.Context, client *persistence.Client, dialect string, opts ...Option) error {
	if client == nil {
		return fmt.Errorf("migrations: persistence client is required")
	}
	target := NormalizeDialect(dialect)
	if target == "" {
		return fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	options := append([]Option{WithValidationTargets(target)}, opts...)
	_, err := Register(ctx, func(_ context.Context, registered string, _ string, fsys fs.FS) error {
		if registered != target {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, options...)
	if err != nil {
		return err
	}
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: migrate %s: %w", target, err)
	}
	return nil
}
