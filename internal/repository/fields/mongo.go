package fields

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventia-dev/fieldset/pkg/fielddef"
)

// MongoRepo is the Mongo implementation of Store. The original deployment
// kept definitions in a MongoDB collection; this backend preserves that
// document shape.
type MongoRepo struct {
	Client   *mongo.Client
	Database string
}

type mongoField struct {
	ID          string          `bson:"id"`
	EntityType  string          `bson:"entity_type"`
	Name        string          `bson:"name"`
	FieldType   string          `bson:"field_type"`
	Options     []string        `bson:"options,omitempty"`
	Required    bool            `bson:"required"`
	Category    string          `bson:"category,omitempty"`
	Placeholder string          `bson:"placeholder,omitempty"`
	HelpText    string          `bson:"help_text,omitempty"`
	Validation  *fielddef.Rules `bson:"validation,omitempty"`
	IsActive    bool            `bson:"is_active"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

func (r *MongoRepo) coll() *mongo.Collection {
	return r.Client.Database(r.Database).Collection("custom_fields")
}

func toDoc(fd fielddef.FieldDefinition) mongoField {
	return mongoField{
		ID:          fd.ID,
		EntityType:  string(fd.EntityType),
		Name:        fd.Name,
		FieldType:   string(fd.FieldType),
		Options:     fd.Options,
		Required:    fd.Required,
		Category:    fd.Category,
		Placeholder: fd.Placeholder,
		HelpText:    fd.HelpText,
		Validation:  fd.Validation,
		IsActive:    fd.IsActive,
		UpdatedAt:   time.Now().UTC(),
	}
}

func fromDoc(m mongoField) fielddef.FieldDefinition {
	return fielddef.FieldDefinition{
		ID:          m.ID,
		EntityType:  fielddef.EntityType(m.EntityType),
		Name:        m.Name,
		FieldType:   fielddef.FieldType(m.FieldType),
		Options:     m.Options,
		Required:    m.Required,
		Category:    m.Category,
		Placeholder: m.Placeholder,
		HelpText:    m.HelpText,
		Validation:  m.Validation,
		IsActive:    m.IsActive,
	}
}

func (r *MongoRepo) List(ctx context.Context, entity fielddef.EntityType) ([]fielddef.FieldDefinition, error) {
	filter := bson.M{}
	if entity != "" {
		filter["entity_type"] = string(entity)
	}
	cur, err := r.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []fielddef.FieldDefinition
	for cur.Next(ctx) {
		var m mongoField
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, fromDoc(m))
	}
	return out, cur.Err()
}

func (r *MongoRepo) Get(ctx context.Context, id string) (fielddef.FieldDefinition, error) {
	var m mongoField
	err := r.coll().FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return fielddef.FieldDefinition{}, ErrNotFound
	}
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	return fromDoc(m), nil
}

func (r *MongoRepo) Create(ctx context.Context, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	taken, err := r.nameTaken(ctx, fd.EntityType, fd.Name, "")
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if taken {
		return fielddef.FieldDefinition{}, ErrDuplicate
	}
	fd.ID = uuid.NewString()
	fd.IsActive = true
	if _, err := r.coll().InsertOne(ctx, toDoc(fd)); err != nil {
		return fielddef.FieldDefinition{}, err
	}
	return fd, nil
}

func (r *MongoRepo) Update(ctx context.Context, id string, fd fielddef.FieldDefinition) (fielddef.FieldDefinition, error) {
	taken, err := r.nameTaken(ctx, fd.EntityType, fd.Name, id)
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if taken {
		return fielddef.FieldDefinition{}, ErrDuplicate
	}
	fd.ID = id
	res, err := r.coll().ReplaceOne(ctx, bson.M{"id": id}, toDoc(fd))
	if err != nil {
		return fielddef.FieldDefinition{}, err
	}
	if res.MatchedCount == 0 {
		return fielddef.FieldDefinition{}, ErrNotFound
	}
	return fd, nil
}

func (r *MongoRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.coll().UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) PurgeInactive(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll().DeleteMany(ctx, bson.M{"is_active": false, "updated_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoRepo) CountActiveByEntity(ctx context.Context) (map[string]int, error) {
	cur, err := r.coll().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"is_active": true}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$entity_type", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	counts := make(map[string]int)
	for cur.Next(ctx) {
		var row struct {
			Entity string `bson:"_id"`
			N      int    `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Entity] = row.N
	}
	return counts, cur.Err()
}

func (r *MongoRepo) nameTaken(ctx context.Context, entity fielddef.EntityType, name, excludeID string) (bool, error) {
	filter := bson.M{"entity_type": string(entity), "name": name, "is_active": true}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll().CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
