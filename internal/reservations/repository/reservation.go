package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "stowaway/internal/reservations/errors"
	"stowaway/pkg/config"
	mongotx "stowaway/pkg/db/mongo"
	"stowaway/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	Update(ctx context.Context, reservation *model.Reservation) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByOwner(ctx context.Context, userID string) ([]*model.Reservation, error)
	FindAll(ctx context.Context) ([]*model.Reservation, error)
	FindByUnit(ctx context.Context, unitID string) ([]*model.Reservation, error)
	DeleteByUnit(ctx context.Context, unitID string) (int64, error)
	CountByUnit(ctx context.Context, unitID string) (int64, error)
	HasOverlap(ctx context.Context, unitID string, start, end time.Time, excludeID string) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := *reservation
	doc.ID = ""
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

// Update rewrites the mutable fields. user_id and created_at never change.
func (r *mongoReservationRepository) Update(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(reservation.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, reservation.ID)
	}

	update := bson.M{
		"$set": bson.M{
			"unit_id":   reservation.UnitID,
			"start_utc": reservation.StartUTC,
			"end_utc":   reservation.EndUTC,
			"notes":     reservation.Notes,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindByOwner(ctx context.Context, userID string) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{"user_id": userID}, -1)
}

func (r *mongoReservationRepository) FindAll(ctx context.Context) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{}, -1)
}

func (r *mongoReservationRepository) FindByUnit(ctx context.Context, unitID string) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{"unit_id": unitID}, 1)
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, order int) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "start_utc", Value: order},
		{Key: "_id", Value: order},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) DeleteByUnit(ctx context.Context, unitID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"unit_id": unitID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete unit reservations: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoReservationRepository) CountByUnit(ctx context.Context, unitID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"unit_id": unitID})
	if err != nil {
		return 0, fmt.Errorf("failed to count unit reservations: %w", err)
	}
	return count, nil
}

// HasOverlap reports whether any reservation on unitID intersects [start, end).
// excludeID, when set, is left out so an edit does not collide with itself.
func (r *mongoReservationRepository) HasOverlap(ctx context.Context, unitID string, start, end time.Time, excludeID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter, err := overlapFilter(unitID, start, end, excludeID)
	if err != nil {
		return false, err
	}

	err = r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check reservation overlap: %w", err)
	}
	return true, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// overlapFilter matches reservations on unitID whose [start_utc, end_utc)
// intersects [start, end), the query form of model.Overlaps.
func overlapFilter(unitID string, start, end time.Time, excludeID string) (bson.M, error) {
	filter := bson.M{
		"unit_id":   unitID,
		"start_utc": bson.M{"$lt": end},
		"end_utc":   bson.M{"$gt": start},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}
	return filter, nil
}
