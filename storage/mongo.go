package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	forexScanner "github.com/malusev998/forex-scanner"
)

type mongoStorage struct {
	ctx        context.Context
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStorage(config MongoDBConfig) (forexScanner.Storage, error) {
	ctx := config.Cxt

	if ctx == nil {
		ctx = context.Background()
	}

	client, err := mongo.NewClient(options.Client().ApplyURI(config.ConnectionString))

	if err != nil {
		return nil, err
	}

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	st := &mongoStorage{
		ctx:        ctx,
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}

	if config.Migrate {
		if err := st.Migrate(); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func quoteDocument(quote forexScanner.Quote, createdAt time.Time) bson.M {
	return bson.M{
		"pair":          quote.Pair,
		"rate":          quote.Rate.String(),
		"bid":           optionalDecimalString(quote.Bid),
		"ask":           optionalDecimalString(quote.Ask),
		"lastRefreshed": quote.LastRefreshed,
		"createdAt":     createdAt,
	}
}

func (m *mongoStorage) Store(quotes []forexScanner.Quote) ([]forexScanner.QuoteWithID, error) {
	createdAt := time.Now()
	documents := make([]interface{}, 0, len(quotes))

	for _, quote := range quotes {
		documents = append(documents, quoteDocument(quote, createdAt))
	}

	result, err := m.collection.InsertMany(m.ctx, documents)

	if err != nil {
		return nil, err
	}

	stored := make([]forexScanner.QuoteWithID, 0, len(quotes))

	for i, quote := range quotes {
		stored = append(stored, forexScanner.QuoteWithID{
			Quote:     quote,
			ID:        result.InsertedIDs[i],
			CreatedAt: createdAt,
		})
	}

	return stored, nil
}

func (m *mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

func (m *mongoStorage) Migrate() error {
	_, err := m.collection.Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "pair", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	})

	return err
}

func (m *mongoStorage) Drop() error {
	return m.collection.Drop(m.ctx)
}

func (m *mongoStorage) Close() error {
	return m.client.Disconnect(m.ctx)
}
