package storage

import (
	"context"
	"os"

	"CallWaitingAI/pkg/outbound"

	"github.com/sirupsen/logrus"
)

const (
	TableLeads    = "leads"
	TableCallLogs = "call_logs"
)

// Record is the wire shape sent to the storage backend. Values are copied
// into it before the call; nothing is shared after the call returns.
type Record map[string]interface{}

type IStorage interface {
	// Upsert writes rec into table, merging with an existing row that has
	// the same value for the key column.
	Upsert(ctx context.Context, table, key string, rec Record) (Record, error)
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// UpdateWhere patches all rows matching the equality predicate and
	// returns how many rows were affected.
	UpdateWhere(ctx context.Context, table string, where map[string]interface{}, patch Record) (int64, error)
}

// New picks the configured backend: Supabase REST when SUPABASE_URL and
// SUPABASE_KEY are set, direct Postgres when DB_HOST is set, otherwise
// outbound.ErrNotConfigured so handlers degrade to logged no-ops.
func New(log *logrus.Logger) (IStorage, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	if supabaseURL != "" && supabaseKey != "" {
		log.Info("Storage backed by Supabase REST")
		return newSupabase(supabaseURL, supabaseKey, log), nil
	}

	if os.Getenv("DB_HOST") != "" {
		log.Info("Storage backed by Postgres")
		return newPostgres(log)
	}

	return nil, outbound.ErrNotConfigured
}
