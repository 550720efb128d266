package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	kaduu "github.com/goliatone/go-kaduu"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	DefaultSourceLabel = "go-kaduu"

	migrationsDir = "data/sql/migrations"
)

// FilesystemSpec is one dialect's migration tree.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithValidationTargets limits registration to the given dialects. Driver
// names such as sqlite3 or postgresql are accepted.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		next := make([]string, 0, len(targets))
		for _, target := range targets {
			if dialect := NormalizeDialect(target); dialect != "" && !slices.Contains(next, dialect) {
				next = append(next, dialect)
			}
		}
		if len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// WithFilesystems replaces the embedded trees, for hosts that ship extra
// migrations alongside the token schema.
func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		copied := make([]FilesystemSpec, 0, len(filesystems))
		for _, tree := range filesystems {
			dialect := NormalizeDialect(tree.Dialect)
			if dialect == "" || tree.FS == nil {
				continue
			}
			copied = append(copied, FilesystemSpec{Dialect: dialect, Path: tree.Path, FS: tree.FS})
		}
		if len(copied) > 0 {
			r.Filesystems = copied
		}
	}
}

// NormalizeDialect maps driver and dialect names onto DialectPostgres or
// DialectSQLite. Unknown names return "".
func NormalizeDialect(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return DialectSQLite
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres
	default:
		return ""
	}
}

// Filesystems resolves the postgres tree at data/sql/migrations and the
// sqlite tree below it. Each tree must hold paired up/down files.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := kaduu.GetCoreMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, err := fs.Sub(root, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", migrationsDir, err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: migrationsDir, FS: base},
		{Dialect: DialectSQLite, Path: migrationsDir + "/sqlite", FS: sqliteFS},
	}
	for _, tree := range filesystems {
		if err := checkPairs(tree); err != nil {
			return nil, err
		}
	}
	return filesystems, nil
}

func checkPairs(tree FilesystemSpec) error {
	ups, err := fs.Glob(tree.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrations: glob %s %s: %w", tree.Dialect, tree.Path, err)
	}
	if len(ups) == 0 {
		return fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", tree.Dialect, tree.Path)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(tree.FS, down); err != nil {
			return fmt.Errorf("migrations: %s migration %s has no down file", tree.Dialect, up)
		}
	}
	return nil
}

// Register hands every targeted dialect tree to registerFn.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       DefaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems
	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	registered := 0
	for _, tree := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, tree.Dialect) {
			continue
		}
		if err := registerFn(ctx, tree.Dialect, reg.SourceLabel, tree.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", tree.Dialect, tree.Path, err)
		}
		registered++
	}
	if registered == 0 {
		return reg, fmt.Errorf("migrations: no filesystem matches targets %v", reg.ValidationTargets)
	}
	return reg, nil
}
