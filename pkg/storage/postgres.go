package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"CallWaitingAI/pkg/outbound"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type postgresStorage struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// FormatDSN builds the Postgres connection string from the environment. It
// is shared with the WhatsApp notifier's device store.
func FormatDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		sslMode(),
	)
}

func sslMode() string {
	if mode := os.Getenv("DB_SSL_MODE"); mode != "" {
		return mode
	}
	return "disable"
}

func newPostgres(log *logrus.Logger) (IStorage, error) {
	db, err := sqlx.Connect("postgres", FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return &postgresStorage{db: db, log: log}, nil
}

func (p *postgresStorage) Upsert(ctx context.Context, table, key string, rec Record) (Record, error) {
	const op = "postgres.upsert"

	if table != TableLeads || key != "session_id" {
		return nil, outbound.NewMalformed(op, fmt.Errorf("unsupported upsert target %s/%s", table, key))
	}

	if err := p.exec(ctx, op, queryUpsertLead, leadArgs(rec)); err != nil {
		return nil, err
	}

	return rec, nil
}

func (p *postgresStorage) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	const op = "postgres.insert"

	var query string
	var args map[string]interface{}

	switch table {
	case TableLeads:
		query = queryInsertLead
		args = leadArgs(rec)
	case TableCallLogs:
		query = queryInsertCallLog
		args = callLogArgs(rec)
	default:
		return nil, outbound.NewMalformed(op, fmt.Errorf("unsupported table %s", table))
	}

	if err := p.exec(ctx, op, query, args); err != nil {
		return nil, err
	}

	return rec, nil
}

func (p *postgresStorage) UpdateWhere(ctx context.Context, table string, where map[string]interface{}, patch Record) (int64, error) {
	const op = "postgres.update"

	sessionID, ok := where["session_id"]
	if table != TableLeads || !ok {
		return 0, outbound.NewMalformed(op, fmt.Errorf("unsupported update target %s", table))
	}

	argsKV := map[string]interface{}{
		"session_id":   sessionID,
		"booking_date": nullableStrVal(patch, "booking_date"),
		"booking_time": nullableStrVal(patch, "booking_time"),
		"status":       strVal(patch, "status"),
	}

	query, args, err := sqlx.Named(queryUpdateLeadBySession, argsKV)
	if err != nil {
		return 0, outbound.NewMalformed(op, err)
	}
	query = p.db.Rebind(query)

	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"error": err.Error(),
			"table": table,
		}).Error("Database error on update")
		return 0, outbound.Classify(op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, outbound.NewMalformed(op, err)
	}

	return affected, nil
}

func (p *postgresStorage) exec(ctx context.Context, op, namedQuery string, argsKV map[string]interface{}) error {
	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		return outbound.NewMalformed(op, err)
	}
	query = p.db.Rebind(query)

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		p.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Database error on exec")
		return outbound.Classify(op, err)
	}

	return nil
}

func leadArgs(rec Record) map[string]interface{} {
	return map[string]interface{}{
		"session_id":       strVal(rec, "session_id"),
		"name":             strVal(rec, "name"),
		"phone_number":     strVal(rec, "phone_number"),
		"email":            strVal(rec, "email"),
		"service_interest": strVal(rec, "service_interest"),
		"booking_date":     nullableStrVal(rec, "booking_date"),
		"booking_time":     nullableStrVal(rec, "booking_time"),
		"status":           strVal(rec, "status"),
		"source_channel":   strVal(rec, "source_channel"),
		"metadata":         metadataJSON(rec),
		"created_at":       timeVal(rec, "created_at"),
	}
}

func callLogArgs(rec Record) map[string]interface{} {
	return map[string]interface{}{
		"session_id":      strVal(rec, "session_id"),
		"channel":         strVal(rec, "channel"),
		"user_input":      strVal(rec, "user_input"),
		"detected_intent": strVal(rec, "detected_intent"),
		"confidence":      floatVal(rec, "confidence"),
		"bot_response":    strVal(rec, "bot_response"),
		"language":        strVal(rec, "language"),
		"metadata":        metadataJSON(rec),
		"timestamp":       timeVal(rec, "timestamp"),
	}
}

// nullableStrVal binds NULL instead of the empty string, for columns like
// booking_date where "" is not a valid value.
func nullableStrVal(rec Record, key string) interface{} {
	if v, ok := rec[key].(string); ok && v != "" {
		return v
	}
	return nil
}

func strVal(rec Record, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func floatVal(rec Record, key string) float64 {
	if v, ok := rec[key].(float64); ok {
		return v
	}
	return 0
}

func timeVal(rec Record, key string) time.Time {
	switch v := rec[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func metadataJSON(rec Record) string {
	meta, ok := rec["metadata"]
	if !ok || meta == nil {
		return "{}"
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}

	return string(raw)
}
