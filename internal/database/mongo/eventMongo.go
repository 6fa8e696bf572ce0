package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/anna199/TeachTogether/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type eventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) EventRepository {
	return &eventRepository{collection: db.Collection(EventsCollection)}
}

var byDateTime = bson.D{{Key: "dateTime", Value: 1}}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	if event.ID.IsZero() {
		event.ID = bson.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrEventNotFound
	}

	var event entity.Event
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", id, err)
	}
	return &event, nil
}

// Update applies set with $set semantics and bumps lastUpdated.
func (r *eventRepository) Update(ctx context.Context, id string, set map[string]any) (*entity.Event, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrEventNotFound
	}

	fields := bson.M{}
	for k, v := range set {
		fields[k] = v
	}
	fields["lastUpdated"] = time.Now().UTC()

	var event entity.Event
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	return &event, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return entity.ErrEventNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return entity.ErrEventNotFound
	}
	return nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{"status": entity.EventStatusUpcoming})
}

func (r *eventRepository) Search(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	return r.find(ctx, BuildSearchFilter(filter))
}

func (r *eventRepository) find(ctx context.Context, filter bson.M) ([]*entity.Event, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(byDateTime))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*entity.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// BuildSearchFilter turns the optional search parameters into a query.
// Text parameters match as case-insensitive literal substrings; the age
// bounds select events whose suggested range overlaps the requested one.
func BuildSearchFilter(f entity.EventFilter) bson.M {
	query := bson.M{"status": entity.EventStatusUpcoming}

	if f.Subject != "" {
		query["subject"] = containsFold(f.Subject)
	}
	if f.City != "" {
		query["location.city"] = containsFold(f.City)
	}
	if f.State != "" {
		query["location.state"] = containsFold(f.State)
	}

	if f.MinAge != nil {
		query["suggestedAgeRange.max"] = bson.M{"$gte": *f.MinAge}
	}
	if f.MaxAge != nil {
		query["suggestedAgeRange.min"] = bson.M{"$lte": *f.MaxAge}
	}

	if f.StartDate != nil || f.EndDate != nil {
		dateRange := bson.M{}
		if f.StartDate != nil {
			dateRange["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			dateRange["$lte"] = *f.EndDate
		}
		query["dateTime"] = dateRange
	}
	return query
}

func containsFold(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// AddParticipant appends the participant only while currentEnrollment is
// below maxCapacity, and recomputes currentEnrollment from the array in the
// same write.
func (r *eventRepository) AddParticipant(ctx context.Context, id string, participant entity.Participant) (*entity.Event, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrEventNotFound
	}

	filter := bson.M{
		"_id":   oid,
		"$expr": bson.M{"$lt": bson.A{"$currentEnrollment", "$maxCapacity"}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "participants", Value: bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$participants", bson.A{}}},
				bson.A{bson.M{"$literal": participant}},
			}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "currentEnrollment", Value: bson.M{"$size": "$participants"}},
			{Key: "lastUpdated", Value: time.Now().UTC()},
		}}},
	}

	event, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if exists, existsErr := r.exists(ctx, oid); existsErr != nil {
			return nil, existsErr
		} else if !exists {
			return nil, entity.ErrEventNotFound
		}
		return nil, entity.ErrEventFull
	}
	if err != nil {
		return nil, fmt.Errorf("register participant for event %s: %w", id, err)
	}
	return event, nil
}

// RemoveParticipant removes the first participant whose parentEmail equals
// parentEmail exactly, and recomputes currentEnrollment in the same write.
func (r *eventRepository) RemoveParticipant(ctx context.Context, id string, parentEmail string) (*entity.Event, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, entity.ErrEventNotFound
	}

	filter := bson.M{
		"_id":                      oid,
		"participants.parentEmail": parentEmail,
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "_cancelIdx", Value: bson.M{"$indexOfArray": bson.A{
				"$participants.parentEmail",
				bson.M{"$literal": parentEmail},
			}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "participants", Value: bson.M{"$map": bson.M{
				"input": bson.M{"$filter": bson.M{
					"input": bson.M{"$range": bson.A{0, bson.M{"$size": "$participants"}}},
					"as":    "i",
					"cond":  bson.M{"$ne": bson.A{"$$i", "$_cancelIdx"}},
				}},
				"as": "i",
				"in": bson.M{"$arrayElemAt": bson.A{"$participants", "$$i"}},
			}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "currentEnrollment", Value: bson.M{"$size": "$participants"}},
			{Key: "lastUpdated", Value: time.Now().UTC()},
		}}},
		{{Key: "$unset", Value: "_cancelIdx"}},
	}

	event, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if exists, existsErr := r.exists(ctx, oid); existsErr != nil {
			return nil, existsErr
		} else if !exists {
			return nil, entity.ErrEventNotFound
		}
		return nil, entity.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cancel registration for event %s: %w", id, err)
	}
	return event, nil
}

func (r *eventRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update mongo.Pipeline) (*entity.Event, error) {
	var event entity.Event
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) exists(ctx context.Context, oid bson.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check event %s: %w", oid.Hex(), err)
	}
	return n > 0, nil
}

func (r *eventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dateTime", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "location.city", Value: 1}, {Key: "location.state", Value: 1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}}},
		{Keys: bson.D{{Key: "suggestedAgeRange.min", Value: 1}, {Key: "suggestedAgeRange.max", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}
	return nil
}
