package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMongoTest(t *testing.T) *mtest.T {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	t.Cleanup(mt.Close)
	return mt
}

func mongoRepo(mt *mtest.T) *mongoRepository {
	return &mongoRepository{coll: mt.Coll, now: time.Now}
}

func TestMongoRepository_Indexes(t *testing.T) {
	mt := newMongoTest(t)

	mt.Run("created", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo, err := NewMongoRepository(context.Background(), mt.DB)
		require.NoError(mt, err)
		assert.NotNil(mt, repo)
	})

	mt.Run("failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 8000, Message: "no"}))
		_, err := NewMongoRepository(context.Background(), mt.DB)
		assert.Error(mt, err)
	})
}

func TestMongoRepository_CreateDuplicate(t *testing.T) {
	mt := newMongoTest(t)

	mt.Run("duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := mongoRepo(mt).Create(context.Background(), &Session{ResumeID: uuid.New(), OwnerID: uuid.New(), SessionID: "abc123"})
		assert.ErrorIs(mt, err, ErrSessionExists)
	})
}

func TestMongoRepository_Lookups(t *testing.T) {
	mt := newMongoTest(t)
	ns := "test." + sessionCollection

	mt.Run("found", func(mt *mtest.T) {
		s := &Session{ID: uuid.New(), ResumeID: uuid.New(), OwnerID: uuid.New(), SessionID: "abc123", TimeSpent: 12}
		raw, err := bson.Marshal(toDocument(s))
		require.NoError(mt, err)
		var doc bson.D
		require.NoError(mt, bson.Unmarshal(raw, &doc))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, doc))

		got, err := mongoRepo(mt).Find(context.Background(), s.ResumeID, "abc123")
		require.NoError(mt, err)
		require.NotNil(mt, got)
		assert.Equal(mt, s.ID, got.ID)
		assert.Equal(mt, 12.0, got.TimeSpent)
	})

	mt.Run("missing session", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err := mongoRepo(mt).FindBySessionID(context.Background(), "ghost")
		assert.ErrorIs(mt, err, ErrSessionNotFound)
	})

	mt.Run("update of missing session", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := mongoRepo(mt).Update(context.Background(), &Session{ID: uuid.New(), ResumeID: uuid.New(), OwnerID: uuid.New()})
		assert.ErrorIs(mt, err, ErrSessionNotFound)
	})
}

func TestMongoRepository_Aggregates(t *testing.T) {
	mt := newMongoTest(t)
	ns := "test." + sessionCollection

	mt.Run("daily", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "date", Value: "2024-05-01"}, {Key: "sessions", Value: 5}, {Key: "uniqueVisitors", Value: 3}},
			bson.D{{Key: "date", Value: "2024-05-02"}, {Key: "sessions", Value: 1}, {Key: "uniqueVisitors", Value: 1}},
		))

		stats, err := mongoRepo(mt).DailyStats(context.Background(), []uuid.UUID{uuid.New()}, time.Now().AddDate(0, 0, -30))
		require.NoError(mt, err)
		assert.Equal(mt, []DailyStat{
			{Date: "2024-05-01", Sessions: 5, UniqueVisitors: 3},
			{Date: "2024-05-02", Sessions: 1, UniqueVisitors: 1},
		}, stats)
	})

	mt.Run("geo", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: bson.D{{Key: "country", Value: "India"}, {Key: "city", Value: "Pune"}}},
				{Key: "count", Value: 4},
				{Key: "avgTimeSpent", Value: 20.5},
			},
		))

		stats, err := mongoRepo(mt).GeoStats(context.Background(), uuid.New(), 10)
		require.NoError(mt, err)
		assert.Equal(mt, []GeoStat{{Country: "India", City: "Pune", Count: 4, AvgTimeSpent: 20.5}}, stats)
	})

	mt.Run("hours", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 9}, {Key: "count", Value: 2}},
			bson.D{{Key: "_id", Value: 21}, {Key: "count", Value: 7}},
		))

		stats, err := mongoRepo(mt).HourlyStats(context.Background(), uuid.New())
		require.NoError(mt, err)
		assert.Equal(mt, []HourStat{{Hour: 9, Count: 2}, {Hour: 21, Count: 7}}, stats)
	})

	mt.Run("time spent without sessions", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		avg, count, err := mongoRepo(mt).TimeSpentStats(context.Background(), uuid.New())
		require.NoError(mt, err)
		assert.Zero(mt, avg)
		assert.Zero(mt, count)
	})
}
