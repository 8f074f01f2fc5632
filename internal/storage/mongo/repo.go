package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"truview/internal/domain"
)

const collection = "reviews"

type reviewDoc struct {
	ID                string            `bson:"_id"`
	Title             string            `bson:"title,omitempty"`
	Description       string            `bson:"description"`
	OriginalLanguage  *string           `bson:"originalLanguage"`
	Translations      map[string]string `bson:"translations,omitempty"`
	TitleTranslations map[string]string `bson:"titleTranslations,omitempty"`
	CreatedAt         time.Time         `bson:"createdAt"`
}

var reviewProjection = bson.M{
	"title":             1,
	"description":       1,
	"originalLanguage":  1,
	"translations":      1,
	"titleTranslations": 1,
	"createdAt":         1,
}

type Repo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials uri and pings the server before returning.
func Connect(ctx context.Context, uri, db string) (*Repo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client, db), nil
}

func New(client *mongo.Client, db string) *Repo {
	return &Repo{client: client, coll: client.Database(db).Collection(collection)}
}

func (r *Repo) Close(ctx context.Context) error { return r.client.Disconnect(ctx) }

// EnsureIndexes backs ListUntranslated.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "originalLanguage", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("untranslated"),
	})
	return err
}

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) error {
	doc := reviewDoc{
		ID:                rv.ID,
		Title:             rv.Title,
		Description:       rv.Description,
		Translations:      rv.Translations,
		TitleTranslations: rv.TitleTranslations,
		CreatedAt:         rv.CreatedAt.UTC(),
	}
	if rv.OriginalLanguage != "" {
		lang := rv.OriginalLanguage
		doc.OriginalLanguage = &lang
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *Repo) FindReview(ctx context.Context, id string) (domain.Review, error) {
	var doc reviewDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(reviewProjection)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Review{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Review{}, err
	}
	rv := domain.Review{
		ID:                doc.ID,
		Title:             doc.Title,
		Description:       doc.Description,
		Translations:      doc.Translations,
		TitleTranslations: doc.TitleTranslations,
		CreatedAt:         doc.CreatedAt,
	}
	if doc.OriginalLanguage != nil {
		rv.OriginalLanguage = *doc.OriginalLanguage
	}
	return rv, nil
}

// UpdateReview is a single-document $set; an unmatched id is not an error.
func (r *Repo) UpdateReview(ctx context.Context, id string, u domain.ReviewUpdate) error {
	fields := u.Fields()
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (r *Repo) ListUntranslated(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	// matches both null and missing
	cur, err := r.coll.Find(ctx, bson.M{"originalLanguage": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.ID)
	}
	return out, cur.Err()
}
