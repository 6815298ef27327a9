package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	notion "github.com/goliatone/go-notion"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	defaultSourceLabel = "go-notion"
	migrationsDir      = "data/sql/migrations"
	upPattern          = "*.up.sql"
)

// dialectLayouts maps each dialect to its directory below the migrations root.
// Postgres files sit at the root itself.
var dialectLayouts = []struct {
	dialect string
	subdir  string
}{
	{dialect: DialectPostgres, subdir: "."},
	{dialect: DialectSQLite, subdir: "sqlite"},
}

// FilesystemSpec is one dialect's migration tree.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Registration is the resolved plan handed to a RegisterFunc.
type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc installs one dialect's migrations, typically through
// persistence.Client.RegisterDialectMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if label = strings.TrimSpace(label); label != "" {
			r.SourceLabel = label
		}
	}
}

// WithValidationTargets limits registration to the named dialects. Blank
// names are ignored and an all-blank list keeps the defaults.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if normalized := normalizeDialects(targets); len(normalized) > 0 {
			r.ValidationTargets = normalized
		}
	}
}

// WithFilesystems replaces the embedded trees. Entries without a dialect or
// filesystem are skipped.
func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		var kept []FilesystemSpec
		for _, spec := range filesystems {
			spec.Dialect = normalizeDialect(spec.Dialect)
			if spec.Dialect == "" || spec.FS == nil {
				continue
			}
			kept = append(kept, spec)
		}
		if len(kept) > 0 {
			r.Filesystems = kept
		}
	}
}

// Filesystems resolves the per-dialect migration trees from source, falling
// back to the module's embedded migrations. Each tree must hold at least one
// up migration.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	source := notion.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		source = sources[0]
	}

	root, rootPath, err := locateRoot(source)
	if err != nil {
		return nil, err
	}

	out := make([]FilesystemSpec, 0, len(dialectLayouts))
	for _, layout := range dialectLayouts {
		tree := root
		if layout.subdir != "." {
			if tree, err = fs.Sub(root, layout.subdir); err != nil {
				return nil, fmt.Errorf("migrations: open %s tree: %w", layout.dialect, err)
			}
		}
		treePath := path.Join(rootPath, layout.subdir)

		ups, err := fs.Glob(tree, upPattern)
		if err != nil {
			return nil, fmt.Errorf("migrations: scan %s tree %q: %w", layout.dialect, treePath, err)
		}
		if len(ups) == 0 {
			return nil, fmt.Errorf("migrations: %s tree %q contains no %s files", layout.dialect, treePath, upPattern)
		}
		out = append(out, FilesystemSpec{Dialect: layout.dialect, Path: treePath, FS: tree})
	}
	return out, nil
}

// Register resolves the embedded migration trees, applies opts and calls
// registerFn once per tree whose dialect is a validation target.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	if registerFn == nil {
		return reg, errors.New("migrations: register function is required")
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
	if err := reg.validate(); err != nil {
		return reg, err
	}

	targets := normalizeDialects(reg.ValidationTargets)
	for _, spec := range reg.Filesystems {
		if !slices.Contains(targets, spec.Dialect) {
			continue
		}
		if err := registerFn(ctx, spec.Dialect, reg.SourceLabel, spec.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s from %q: %w", spec.Dialect, spec.Path, err)
		}
	}
	return reg, nil
}

func (r Registration) validate() error {
	var problems []error
	if strings.TrimSpace(r.SourceLabel) == "" {
		problems = append(problems, errors.New("migrations: source label is required"))
	}
	if len(r.ValidationTargets) == 0 {
		problems = append(problems, errors.New("migrations: at least one validation target is required"))
	}
	if len(r.Filesystems) == 0 {
		problems = append(problems, errors.New("migrations: no migration filesystems resolved"))
	}
	for _, spec := range r.Filesystems {
		if spec.FS == nil {
			problems = append(problems, fmt.Errorf("migrations: %s filesystem is nil", spec.Dialect))
		}
	}
	return errors.Join(problems...)
}

// locateRoot finds the migrations directory inside source. A source that
// already holds .sql files at its top level is used as-is.
func locateRoot(source fs.FS) (fs.FS, string, error) {
	if _, statErr := fs.Stat(source, migrationsDir); statErr == nil {
		root, err := fs.Sub(source, migrationsDir)
		if err != nil {
			return nil, "", fmt.Errorf("migrations: open %s: %w", migrationsDir, err)
		}
		return root, migrationsDir, nil
	}

	if flat, _ := fs.Glob(source, "*.sql"); len(flat) > 0 {
		return source, ".", nil
	}
	return nil, "", fmt.Errorf("migrations: %s not found in source filesystem", migrationsDir)
}

func normalizeDialect(dialect string) string {
	return strings.ToLower(strings.TrimSpace(dialect))
}

func normalizeDialects(dialects []string) []string {
	var out []string
	for _, dialect := range dialects {
		if dialect = normalizeDialect(dialect); dialect != "" && !slices.Contains(out, dialect) {
			out = append(out, dialect)
		}
	}
	return out
}
