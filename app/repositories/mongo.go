package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/pkg/metrics"
)

// Collection names, fixed by the existing storefront database.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	OrdersCollection   = "orders"
)

// NewMongoStore wires every repository to its collection in db.
func NewMongoStore(db *mongo.Database) Store {
	store := Store{
		Users:    &mongoUsers{col: db.Collection(UsersCollection)},
		Products: &mongoProducts{col: db.Collection(ProductsCollection)},
		Orders:   &mongoOrders{col: db.Collection(OrdersCollection)},
	}
	return store.WithPing(func(ctx context.Context) error {
		return db.Client().Ping(ctx, readpref.Primary())
	})
}

func insertResult(res *mongo.InsertOneResult) models.InsertResult {
	return models.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}
}

func updateResult(res *mongo.UpdateResult) models.UpdateResult {
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}
}

func deleteResult(res *mongo.DeleteResult) models.DeleteResult {
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}
}

func wrapInsertErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ── users ────────────────────────────────────────────────────────────────────

type mongoUsers struct {
	col *mongo.Collection
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

func (r *mongoUsers) Create(ctx context.Context, user models.User) (models.InsertResult, error) {
	defer metrics.ObserveDBQuery("insert", time.Now())

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return models.InsertResult{}, wrapInsertErr("users: insert", err)
	}
	return insertResult(res), nil
}

func (r *mongoUsers) SetRole(ctx context.Context, email, role string) (models.UpdateResult, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res, err := r.col.UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: role}}}},
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("users: set role: %w", err)
	}
	return updateResult(res), nil
}

// ── products ─────────────────────────────────────────────────────────────────

type mongoProducts struct {
	col *mongo.Collection
}

func (r *mongoProducts) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("products: find: %w", err)
	}

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products: decode: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (r *mongoProducts) FindByID(ctx context.Context, id interface{}) (models.Product, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	var product models.Product
	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("products: find by id: %w", err)
	}
	return product, nil
}

func (r *mongoProducts) Create(ctx context.Context, product models.Product) (models.InsertResult, error) {
	defer metrics.ObserveDBQuery("insert", time.Now())

	res, err := r.col.InsertOne(ctx, product)
	if err != nil {
		return models.InsertResult{}, wrapInsertErr("products: insert", err)
	}
	return insertResult(res), nil
}

func (r *mongoProducts) Delete(ctx context.Context, id interface{}) (models.DeleteResult, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("products: delete: %w", err)
	}
	return deleteResult(res), nil
}

// ── orders ───────────────────────────────────────────────────────────────────

type mongoOrders struct {
	col *mongo.Collection
}

func (r *mongoOrders) find(ctx context.Context, filter bson.D) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("find", time.Now())

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders: find: %w", err)
	}

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (r *mongoOrders) All(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.D{})
}

func (r *mongoOrders) FindByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return r.find(ctx, bson.D{{Key: "userEmail", Value: email}})
}

func (r *mongoOrders) Exists(ctx context.Context, id interface{}) (bool, error) {
	defer metrics.ObserveDBQuery("count", time.Now())

	n, err := r.col.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, fmt.Errorf("orders: count: %w", err)
	}
	return n > 0, nil
}

func (r *mongoOrders) Create(ctx context.Context, order models.Order) (models.InsertResult, error) {
	defer metrics.ObserveDBQuery("insert", time.Now())

	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return models.InsertResult{}, wrapInsertErr("orders: insert", err)
	}
	return insertResult(res), nil
}

func (r *mongoOrders) UpdateStatus(ctx context.Context, id interface{}, status string) (models.UpdateResult, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res, err := r.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("orders: update status: %w", err)
	}
	return updateResult(res), nil
}

func (r *mongoOrders) DeleteByID(ctx context.Context, id interface{}) (models.DeleteResult, error) {
	return r.delete(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *mongoOrders) DeleteOwned(ctx context.Context, id interface{}, owner string) (models.DeleteResult, error) {
	return r.delete(ctx, bson.D{{Key: "_id", Value: id}, {Key: "userEmail", Value: owner}})
}

func (r *mongoOrders) delete(ctx context.Context, filter bson.D) (models.DeleteResult, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("orders: delete: %w", err)
	}
	return deleteResult(res), nil
}
