package clickhouse

import (
	"context"
	"fmt"

	"dexboard/internal/storage/migrations"
)

// Bootstrap ensures the database from the DSN exists, applies the embedded
// migrations and returns a connection to the target database.
func Bootstrap(ctx context.Context, dsn string) (*Conn, error) {
	dbName, err := migrations.DatabaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	adminConn, err := NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	if err := adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		adminConn.Close()
		return nil, fmt.Errorf("create database %s: %w", dbName, err)
	}
	if err := adminConn.Close(); err != nil {
		return nil, fmt.Errorf("close admin connection: %w", err)
	}

	conn, err := NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
