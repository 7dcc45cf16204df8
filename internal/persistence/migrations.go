package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// migrationLockKey is the pg_advisory_lock key held while the schema is
// applied, so replicas starting together do not race on DDL.
const migrationLockKey int64 = 0x7061726b696e67 // "parking"

type migration struct {
	name string
	sql  string
}

// RunMigrations applies the *.sql files of dir in lexical order, each in its
// own transaction, under a session advisory lock. Every migration must be
// idempotent since all of them run on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	migrations, err := loadMigrations(dir)
	if err != nil {
		return err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("lock schema: %w", err)
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockKey); err != nil {
			logger.Warn("unlock schema", zap.Error(err))
		}
	}()

	for _, m := range migrations {
		logger.Info("applying migration", zap.String("file", m.name))
		err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, m.sql)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}

	logger.Info("schema up to date", zap.Int("migrations", len(migrations)))
	return nil
}

// loadMigrations reads the non-empty *.sql files of dir sorted by name. A
// directory without any is an error: the service cannot run on an empty schema.
func loadMigrations(dir string) ([]migration, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(paths)

	migrations := make([]migration, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}
		migrations = append(migrations, migration{name: filepath.Base(path), sql: string(content)})
	}
	if len(migrations) == 0 {
		return nil, fmt.Errorf("no migrations found in %q", dir)
	}
	return migrations, nil
}
