package db

import (
	"arbo/types"
)

type Database interface {
	Close() error
	EnsureDatabaseExists() error
	CreateTables() error
	DropTables() error

	InsertExecutions(rows []*types.ExecutionRecord) error
	InsertSkips(rows []*types.SkipRecord) error

	QueryRecentExecutions(limit uint) ([]*types.ExecutionRecord, error)
	QuerySkipTotals() (map[string]uint64, error)
}
