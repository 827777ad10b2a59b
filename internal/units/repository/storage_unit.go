package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	unitserrors "stowaway/internal/units/errors"
	"stowaway/pkg/config"
	mongotx "stowaway/pkg/db/mongo"
	"stowaway/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Storage_units"
)

type StorageUnitRepository interface {
	Create(ctx context.Context, unit *model.StorageUnit) error
	FindByID(ctx context.Context, id string) (*model.StorageUnit, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.StorageUnit, error)
	FindAll(ctx context.Context) ([]*model.StorageUnit, error)
	FindActive(ctx context.Context) ([]*model.StorageUnit, error)
	Update(ctx context.Context, id string, unit *model.StorageUnit) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoStorageUnitRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoStorageUnitRepository(cfg *config.Config) StorageUnitRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStorageUnitRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoStorageUnitRepository) Create(ctx context.Context, unit *model.StorageUnit) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	doc := *unit
	doc.ID = ""
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create storage unit: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		unit.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStorageUnitRepository) FindByID(ctx context.Context, id string) (*model.StorageUnit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	var unit model.StorageUnit
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&unit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, unitserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find storage unit: %w", err)
	}

	return &unit, nil
}

// FindByIDs returns the units keyed by id. Malformed and unknown ids are skipped.
func (r *mongoStorageUnitRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.StorageUnit, error) {
	result := make(map[string]*model.StorageUnit, len(ids))

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return result, nil
	}

	units, err := r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	for _, unit := range units {
		result[unit.ID] = unit
	}
	return result, nil
}

func (r *mongoStorageUnitRepository) FindAll(ctx context.Context) ([]*model.StorageUnit, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoStorageUnitRepository) FindActive(ctx context.Context) ([]*model.StorageUnit, error) {
	return r.find(ctx, bson.M{"is_active": true})
}

func (r *mongoStorageUnitRepository) find(ctx context.Context, filter bson.M) ([]*model.StorageUnit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "monthly_price", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find storage units: %w", err)
	}
	defer cursor.Close(ctx)

	var units []*model.StorageUnit
	if err = cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode storage units: %w", err)
	}

	return units, nil
}

func (r *mongoStorageUnitRepository) Update(ctx context.Context, id string, unit *model.StorageUnit) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":          unit.Name,
			"size":          unit.Size,
			"monthly_price": unit.MonthlyPrice,
			"is_active":     unit.IsActive,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update storage unit: %w", err)
	}
	if result.MatchedCount == 0 {
		return unitserrors.ErrNotFound
	}

	return nil
}

func (r *mongoStorageUnitRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete storage unit: %w", err)
	}
	if result.DeletedCount == 0 {
		return unitserrors.ErrNotFound
	}

	return nil
}

func (r *mongoStorageUnitRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count storage units: %w", err)
	}
	return count, nil
}

func (r *mongoStorageUnitRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
