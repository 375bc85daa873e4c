package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mg "colecta_engine/internal/config/connections/mongo"
)

const EventsCollection = "engine_audit_events"

// Trail appends one document per engine mutation (allocation, reversal,
// reconciliation, disbursement). Best-effort by contract: callers log a
// failed Record and move on, the business write has already committed.
type Trail struct {
	m *mg.Mongo
}

func NewTrail(m *mg.Mongo) *Trail {
	return &Trail{m: m}
}

func (t *Trail) Record(ctx context.Context, action string, fields map[string]any) error {
	if t == nil || t.m == nil || t.m.Database == nil {
		return mongo.ErrClientDisconnected
	}

	doc := bson.D{
		{Key: "action", Value: action},
		{Key: "recorded_at", Value: time.Now().UTC()},
	}
	for k, v := range fields {
		doc = append(doc, bson.E{Key: k, Value: v})
	}

	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := t.m.Database.Collection(EventsCollection).InsertOne(writeCtx, doc, options.InsertOne())
	return err
}
