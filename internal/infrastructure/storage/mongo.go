package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"DisasterWatch/internal/domain"
	"DisasterWatch/internal/ports"
)

const (
	incidentsCollection = "incidents"
	alertsCollection    = "alerts"
)

// EnsureIndexes creates the indexes the pipeline relies on. The unique index
// on content_id is what closes the cross-feed fingerprint race at the store
// boundary.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(incidentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "content_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "published_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create incident indexes: %w", err)
	}

	_, err = db.Collection(alertsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create alert indexes: %w", err)
	}

	return nil
}

// IncidentRepository persists incidents into MongoDB.
type IncidentRepository struct {
	col *mongo.Collection
}

var _ ports.IncidentRepository = (*IncidentRepository)(nil)

// NewIncidentRepository wires the incidents collection.
func NewIncidentRepository(db *mongo.Database) *IncidentRepository {
	return &IncidentRepository{col: db.Collection(incidentsCollection)}
}

// ExistsByFingerprint reports whether an incident with this fingerprint was
// already ingested.
func (r *IncidentRepository) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"content_id": fingerprint}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count by fingerprint: %w", err)
	}
	return count > 0, nil
}

// Insert stores a new incident, translating the unique-index violation into
// ports.ErrDuplicateFingerprint.
func (r *IncidentRepository) Insert(ctx context.Context, incident domain.Incident) error {
	_, err := r.col.InsertOne(ctx, incident)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrDuplicateFingerprint
		}
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

// AttachAlert records the one-time alert linkage on an incident.
func (r *IncidentRepository) AttachAlert(ctx context.Context, incidentID, alertID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"id": incidentID},
		bson.M{"$set": bson.M{"alert_generated": true, "alert_id": alertID}},
	)
	if err != nil {
		return fmt.Errorf("update incident alert fields: %w", err)
	}
	if res.MatchedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Get returns one incident by identifier.
func (r *IncidentRepository) Get(ctx context.Context, id string) (domain.Incident, error) {
	var incident domain.Incident
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&incident)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Incident{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Incident{}, fmt.Errorf("find incident: %w", err)
	}
	return incident, nil
}

// List returns incidents newest-first with optional filters.
func (r *IncidentRepository) List(ctx context.Context, filter ports.IncidentFilter) ([]domain.Incident, error) {
	query := bson.M{}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
	}
	if filter.IncidentType != "" {
		query["incident_type"] = filter.IncidentType
	}
	if filter.Location != "" {
		query["locations.name"] = bson.M{"$regex": filter.Location, "$options": "i"}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetSkip(filter.Offset).
		SetLimit(filter.Limit)

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find incidents: %w", err)
	}

	var incidents []domain.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}
	return incidents, nil
}

// ListLocated returns the newest incidents that carry at least one location,
// for map projections.
func (r *IncidentRepository) ListLocated(ctx context.Context, limit int64) ([]domain.Incident, error) {
	query := bson.M{"locations": bson.M{"$exists": true, "$ne": bson.A{}}}
	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find located incidents: %w", err)
	}

	var incidents []domain.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}
	return incidents, nil
}

// Summary aggregates incident statistics. Alert counts are filled in by the
// caller from the alert repository.
func (r *IncidentRepository) Summary(ctx context.Context) (domain.AnalyticsSummary, error) {
	todayStart := time.Now().UTC().Truncate(24 * time.Hour)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"total_incidents": bson.M{"$sum": 1},
			"critical_incidents": bson.M{
				"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$severity", "critical"}}, 1, 0}},
			},
			"avg_urgency": bson.M{"$avg": "$urgency_score"},
			"today_incidents": bson.M{
				"$sum": bson.M{"$cond": bson.A{bson.M{"$gte": bson.A{"$published_at", todayStart}}, 1, 0}},
			},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.AnalyticsSummary{}, fmt.Errorf("aggregate summary: %w", err)
	}

	var rows []struct {
		TotalIncidents    int64   `bson:"total_incidents"`
		CriticalIncidents int64   `bson:"critical_incidents"`
		AvgUrgency        float64 `bson:"avg_urgency"`
		TodayIncidents    int64   `bson:"today_incidents"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return domain.AnalyticsSummary{}, fmt.Errorf("decode summary: %w", err)
	}

	summary := domain.AnalyticsSummary{}
	if len(rows) > 0 {
		summary.TotalIncidents = rows[0].TotalIncidents
		summary.CriticalIncidents = rows[0].CriticalIncidents
		summary.AvgUrgencyScore = rows[0].AvgUrgency
		summary.IncidentsToday = rows[0].TodayIncidents
	}
	return summary, nil
}

// TopLocations groups incidents by mentioned location name.
func (r *IncidentRepository) TopLocations(ctx context.Context, limit int64) ([]domain.LocationSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$locations"}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$locations.name",
			"incident_count": bson.M{"$sum": 1},
			"critical_count": bson.M{
				"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$severity", "critical"}}, 1, 0}},
			},
			"avg_urgency": bson.M{"$avg": "$urgency_score"},
		}}},
		{{Key: "$sort", Value: bson.M{"incident_count": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate locations: %w", err)
	}

	var rows []struct {
		Name          string  `bson:"_id"`
		IncidentCount int64   `bson:"incident_count"`
		CriticalCount int64   `bson:"critical_count"`
		AvgUrgency    float64 `bson:"avg_urgency"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}

	summaries := make([]domain.LocationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.LocationSummary{
			LocationName:    row.Name,
			IncidentCount:   row.IncidentCount,
			CriticalCount:   row.CriticalCount,
			AvgUrgencyScore: row.AvgUrgency,
		})
	}
	return summaries, nil
}

// AlertRepository persists generated alerts into MongoDB.
type AlertRepository struct {
	col *mongo.Collection
}

var _ ports.AlertRepository = (*AlertRepository)(nil)

// NewAlertRepository wires the alerts collection.
func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{col: db.Collection(alertsCollection)}
}

// Insert stores a new alert record.
func (r *AlertRepository) Insert(ctx context.Context, alert domain.Alert) error {
	if _, err := r.col.InsertOne(ctx, alert); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// List returns alerts newest-first.
func (r *AlertRepository) List(ctx context.Context, limit, offset int64) ([]domain.Alert, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find alerts: %w", err)
	}

	var alerts []domain.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	return alerts, nil
}

// CountActive counts alerts currently considered live (sent or sending).
func (r *AlertRepository) CountActive(ctx context.Context) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"status": bson.M{"$in": bson.A{"sent", "sending"}}})
	if err != nil {
		return 0, fmt.Errorf("count active alerts: %w", err)
	}
	return count, nil
}
