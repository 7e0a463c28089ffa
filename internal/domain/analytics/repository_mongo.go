package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

const sessionCollection = "analytics_sessions"

// sessionDocument is the BSON shape of a Session. IDs are stored as
// strings so documents stay readable in the shell.
type sessionDocument struct {
	ID           string     `bson:"_id"`
	ResumeID     string     `bson:"resumeId"`
	OwnerID      string     `bson:"ownerId"`
	SessionID    string     `bson:"sessionId"`
	Events       []Event    `bson:"events"`
	Device       DeviceInfo `bson:"deviceInfo"`
	Location     Location   `bson:"location"`
	Referrer     Referrer   `bson:"referrer"`
	TimeSpent    float64    `bson:"timeSpent"`
	LastActivity time.Time  `bson:"lastActivity"`
	CreatedAt    time.Time  `bson:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt"`
}

func toDocument(s *Session) sessionDocument {
	return sessionDocument{
		ID:           s.ID.String(),
		ResumeID:     s.ResumeID.String(),
		OwnerID:      s.OwnerID.String(),
		SessionID:    s.SessionID,
		Events:       []Event(s.Events),
		Device:       s.Device,
		Location:     s.Location,
		Referrer:     s.Referrer,
		TimeSpent:    s.TimeSpent,
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (d sessionDocument) toSession() Session {
	return Session{
		ID:           uuid.MustParse(d.ID),
		ResumeID:     uuid.MustParse(d.ResumeID),
		OwnerID:      uuid.MustParse(d.OwnerID),
		SessionID:    d.SessionID,
		Events:       datatypes.JSONSlice[Event](d.Events),
		Device:       d.Device,
		Location:     d.Location,
		Referrer:     d.Referrer,
		TimeSpent:    d.TimeSpent,
		LastActivity: d.LastActivity,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type mongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoRepository stores sessions in the analytics_sessions collection
// and makes sure its indexes exist.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (Repository, error) {
	coll := db.Collection(sessionCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "resumeId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
		{Keys: bson.D{{Key: "resumeId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics indexes: %w", err)
	}
	return &mongoRepository{coll: coll, now: time.Now}, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (r *mongoRepository) Create(ctx context.Context, session *Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := r.now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, toDocument(session))
	if mongo.IsDuplicateKeyError(err) {
		return ErrSessionExists
	}
	return err
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Session, error) {
	var doc sessionDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err
	}
	s := doc.toSession()
	return &s, nil
}

func (r *mongoRepository) Find(ctx context.Context, resumeID uuid.UUID, sessionID string) (*Session, error) {
	s, err := r.findOne(ctx, bson.M{"resumeId": resumeID.String(), "sessionId": sessionID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return s, err
}

func (r *mongoRepository) FindBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	s, err := r.findOne(ctx, bson.M{"sessionId": sessionID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

func (r *mongoRepository) Update(ctx context.Context, session *Session) error {
	session.UpdatedAt = r.now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": session.ID.String()}, toDocument(session))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *mongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Session, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []sessionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	sessions := make([]Session, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, d.toSession())
	}
	return sessions, nil
}

func (r *mongoRepository) ListByResume(ctx context.Context, resumeID uuid.UUID) ([]Session, error) {
	return r.find(ctx,
		bson.M{"resumeId": resumeID.String()},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
}

func (r *mongoRepository) ListRecent(ctx context.Context, resumeIDs []uuid.UUID, since time.Time, limit int) ([]Session, error) {
	if len(resumeIDs) == 0 {
		return []Session{}, nil
	}
	return r.find(ctx,
		bson.M{"resumeId": bson.M{"$in": idStrings(resumeIDs)}, "createdAt": bson.M{"$gte": since}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit)),
	)
}

func (r *mongoRepository) CountByResumes(ctx context.Context, resumeIDs []uuid.UUID) (int64, error) {
	if len(resumeIDs) == 0 {
		return 0, nil
	}
	return r.coll.CountDocuments(ctx, bson.M{"resumeId": bson.M{"$in": idStrings(resumeIDs)}})
}

func (r *mongoRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (r *mongoRepository) DailyStats(ctx context.Context, resumeIDs []uuid.UUID, since time.Time) ([]DailyStat, error) {
	if len(resumeIDs) == 0 {
		return []DailyStat{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"resumeId":  bson.M{"$in": idStrings(resumeIDs)},
			"createdAt": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"sessions": bson.M{"$sum": 1},
			"visitors": bson.M{"$addToSet": "$sessionId"},
		}}},
		{{Key: "$project", Value: bson.M{
			"date":           "$_id",
			"sessions":       1,
			"uniqueVisitors": bson.M{"$size": "$visitors"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
	}

	var rows []struct {
		Date           string `bson:"date"`
		Sessions       int64  `bson:"sessions"`
		UniqueVisitors int64  `bson:"uniqueVisitors"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	stats := make([]DailyStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, DailyStat{Date: row.Date, Sessions: row.Sessions, UniqueVisitors: row.UniqueVisitors})
	}
	return stats, nil
}

func (r *mongoRepository) GeoStats(ctx context.Context, resumeID uuid.UUID, limit int) ([]GeoStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resumeId": resumeID.String()}}},
		{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"country": "$location.country", "city": "$location.city"},
			"count":        bson.M{"$sum": 1},
			"avgTimeSpent": bson.M{"$avg": "$timeSpent"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	var rows []struct {
		ID struct {
			Country string `bson:"country"`
			City    string `bson:"city"`
		} `bson:"_id"`
		Count        int64   `bson:"count"`
		AvgTimeSpent float64 `bson:"avgTimeSpent"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	stats := make([]GeoStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, GeoStat{Country: row.ID.Country, City: row.ID.City, Count: row.Count, AvgTimeSpent: row.AvgTimeSpent})
	}
	return stats, nil
}

func (r *mongoRepository) DeviceStats(ctx context.Context, resumeID uuid.UUID) ([]DeviceStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resumeId": resumeID.String()}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$deviceInfo.type",
			"count":        bson.M{"$sum": 1},
			"avgTimeSpent": bson.M{"$avg": "$timeSpent"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	var rows []struct {
		ID           DeviceType `bson:"_id"`
		Count        int64      `bson:"count"`
		AvgTimeSpent float64    `bson:"avgTimeSpent"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	stats := make([]DeviceStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, DeviceStat{Type: row.ID, Count: row.Count, AvgTimeSpent: row.AvgTimeSpent})
	}
	return stats, nil
}

func (r *mongoRepository) ReferrerStats(ctx context.Context, resumeID uuid.UUID) ([]ReferrerStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resumeId": resumeID.String()}}},
		{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"source": "$referrer.source", "campaign": "$referrer.campaign"},
			"count":        bson.M{"$sum": 1},
			"avgTimeSpent": bson.M{"$avg": "$timeSpent"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	var rows []struct {
		ID struct {
			Source   string `bson:"source"`
			Campaign string `bson:"campaign"`
		} `bson:"_id"`
		Count        int64   `bson:"count"`
		AvgTimeSpent float64 `bson:"avgTimeSpent"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	stats := make([]ReferrerStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, ReferrerStat{Source: row.ID.Source, Campaign: row.ID.Campaign, Count: row.Count, AvgTimeSpent: row.AvgTimeSpent})
	}
	return stats, nil
}

func (r *mongoRepository) HourlyStats(ctx context.Context, resumeID uuid.UUID) ([]HourStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resumeId": resumeID.String()}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$hour": "$createdAt"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	var rows []struct {
		ID    int   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	stats := make([]HourStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, HourStat{Hour: row.ID, Count: row.Count})
	}
	return stats, nil
}

func (r *mongoRepository) TimeSpentStats(ctx context.Context, resumeID uuid.UUID) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resumeId": resumeID.String()}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$timeSpent"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Avg, rows[0].Count, nil
}

func (r *mongoRepository) DeleteByResumes(ctx context.Context, resumeIDs []uuid.UUID) error {
	if len(resumeIDs) == 0 {
		return nil
	}
	_, err := r.coll.DeleteMany(ctx, bson.M{"resumeId": bson.M{"$in": idStrings(resumeIDs)}})
	return err
}

func (r *mongoRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
