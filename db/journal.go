package db

import (
	"time"

	"arbo/logger"
	"arbo/types"
)

// Journal is the best-effort persistence adapter for the trade path. Writes
// happen on their own goroutine and failures only log; the hot path never
// waits on ClickHouse.
type Journal struct {
	db Database
}

func NewJournal(database Database) *Journal {
	return &Journal{db: database}
}

func (j *Journal) RecordExecution(rec *types.ExecutionRecord) {
	go func() {
		if err := j.db.InsertExecutions([]*types.ExecutionRecord{rec}); err != nil {
			logger.GlobalLogger.Warn("Failed to journal execution", "err", err)
		}
	}()
}

func (j *Journal) RecordSkips(stats *types.ScanStats) {
	if len(stats.Skips) == 0 {
		return
	}
	now := time.Now()
	rows := make([]*types.SkipRecord, 0, len(stats.Skips))
	for reason, count := range stats.Skips {
		rows = append(rows, &types.SkipRecord{
			Timestamp: now,
			Reason:    string(reason),
			Count:     uint64(count),
		})
	}
	go func() {
		if err := j.db.InsertSkips(rows); err != nil {
			logger.GlobalLogger.Warn("Failed to journal skip tallies", "err", err)
		}
	}()
}
