package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/cubeshop/app/repositories"
)

func init() {
	Register("20260101000000_users_email_unique", usersEmailUnique)
	Register("20260101000001_orders_user_email", ordersUserEmail)
}

// usersEmailUnique backs the one-user-per-email invariant. It fails when the
// collection already holds duplicates; those must be cleaned up by hand.
func usersEmailUnique(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(repositories.UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func ordersUserEmail(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(repositories.OrdersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userEmail", Value: 1}},
		Options: options.Index().SetName("user_email"),
	})
	return err
}
