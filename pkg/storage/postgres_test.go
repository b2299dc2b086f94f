package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLeadArgs_UnsetBookingFieldsBindNull(t *testing.T) {
	args := leadArgs(Record{
		"session_id": "s1",
		"name":       "Ada",
		"status":     "new",
		"created_at": time.Now().UTC(),
	})

	assert.Nil(t, args["booking_date"], "missing booking date must bind NULL, not \"\"")
	assert.Nil(t, args["booking_time"])
	assert.Equal(t, "Ada", args["name"])
	assert.Equal(t, "new", args["status"])
}

func TestLeadArgs_SetBookingFieldsKept(t *testing.T) {
	args := leadArgs(Record{
		"booking_date": "2026-09-01",
		"booking_time": "14:00",
	})

	assert.Equal(t, "2026-09-01", args["booking_date"])
	assert.Equal(t, "14:00", args["booking_time"])
}

func TestMetadataJSON(t *testing.T) {
	assert.Equal(t, "{}", metadataJSON(Record{}))
	assert.JSONEq(t, `{"intent":"greet"}`,
		metadataJSON(Record{"metadata": map[string]interface{}{"intent": "greet"}}))
}
