package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/spf13/viper"

	"arbo/logger"
	"arbo/types"
)

type ClickhouseDB struct {
	conn driver.Conn
}

func NewClickhouse() Database {
	opts := &clickhouse.Options{
		Addr: []string{viper.GetString("CLICKHOUSE_ADDR")},
		Auth: clickhouse.Auth{
			Database: viper.GetString("CLICKHOUSE_DATABASE"),
			Username: viper.GetString("CLICKHOUSE_USERNAME"),
			Password: viper.GetString("CLICKHOUSE_PASSWORD"),
		},
		DialTimeout:  5 * time.Second,
		Compression:  &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		MaxOpenConns: 10,
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		slog.Error("Failed to connect to ClickHouse", "error", err)
	}

	return &ClickhouseDB{conn: conn}
}

// Database interface implementation
func (d *ClickhouseDB) Close() error {
	return d.conn.Close()
}

func (d *ClickhouseDB) EnsureDatabaseExists() error {
	query := `CREATE DATABASE IF NOT EXISTS arbo`
	if err := d.conn.Exec(context.Background(), query); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}
	logger.GlobalLogger.Info("Database ensured to exist", "database", "arbo")
	return nil
}

func (d *ClickhouseDB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS arbo.executions
		(
			timestamp DateTime,
			mode String,
			baseMint String,
			intermediateMint String,
			dex1 String,
			dex2 String,
			initialAmount UInt64,
			finalAmount UInt64,
			profitBps Int64,
			profitUsd Float64,
			rawSize UInt32,
			signature String,
			outcome String,
			detail String
		)
		ENGINE = MergeTree
		ORDER BY timestamp
		SETTINGS index_granularity = 8192`,

		`CREATE TABLE IF NOT EXISTS arbo.skips
		(
			timestamp DateTime,
			reason String,
			count UInt64
		)
		ENGINE = MergeTree
		ORDER BY (timestamp, reason)
		SETTINGS index_granularity = 8192`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return err
		}
		logger.GlobalLogger.Info("Check or create table in DB", "query", q)
	}
	return nil
}

func (d *ClickhouseDB) DropTables() error {
	for _, t := range []string{"executions", "skips"} {
		q := fmt.Sprintf("DROP TABLE IF EXISTS arbo.%s", t)
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", t, err)
		}
	}
	return nil
}

func (d *ClickhouseDB) InsertExecutions(rows []*types.ExecutionRecord) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(context.Background(), "INSERT INTO arbo.executions")
	if err != nil {
		return err
	}
	for _, rec := range rows {
		if err := batch.AppendStruct(rec); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (d *ClickhouseDB) InsertSkips(rows []*types.SkipRecord) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(context.Background(), "INSERT INTO arbo.skips")
	if err != nil {
		return err
	}
	for _, rec := range rows {
		if err := batch.AppendStruct(rec); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (d *ClickhouseDB) QueryRecentExecutions(limit uint) ([]*types.ExecutionRecord, error) {
	rows, err := d.conn.Query(context.Background(),
		fmt.Sprintf(`SELECT timestamp, mode, baseMint, intermediateMint, dex1, dex2,
			initialAmount, finalAmount, profitBps, profitUsd, rawSize, signature, outcome, detail
			FROM arbo.executions ORDER BY timestamp DESC LIMIT %d`, limit))
	if err != nil {
		return nil, fmt.Errorf("query recent executions failed: %w", err)
	}
	defer rows.Close()

	var out []*types.ExecutionRecord
	for rows.Next() {
		rec := &types.ExecutionRecord{}
		if err := rows.Scan(&rec.Timestamp, &rec.Mode, &rec.BaseMint, &rec.IntermediateMint,
			&rec.Dex1, &rec.Dex2, &rec.InitialAmount, &rec.FinalAmount, &rec.ProfitBps,
			&rec.ProfitUSD, &rec.RawSize, &rec.Signature, &rec.Outcome, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan execution failed: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *ClickhouseDB) QuerySkipTotals() (map[string]uint64, error) {
	rows, err := d.conn.Query(context.Background(),
		`SELECT reason, sum(count) FROM arbo.skips GROUP BY reason`)
	if err != nil {
		return nil, fmt.Errorf("query skip totals failed: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]uint64)
	for rows.Next() {
		var reason string
		var count uint64
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("scan skip total failed: %w", err)
		}
		totals[reason] = count
	}
	return totals, rows.Err()
}
