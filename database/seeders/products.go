package seeders

import (
	"context"

	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/repositories"
)

func init() {
	Register("products", SeedProducts)
}

var demoProducts = []models.Fields{
	{"name": "3x3 Speed Cube", "price": 12.5, "img": "https://i.ibb.co/3x3.png"},
	{"name": "2x2 Pocket Cube", "price": 8.0, "img": "https://i.ibb.co/2x2.png"},
	{"name": "Megaminx", "price": 21.0, "img": "https://i.ibb.co/megaminx.png"},
}

// SeedProducts fills an empty catalogue with a few demo cubes. A catalogue
// that already has products is left alone.
func SeedProducts(ctx context.Context, store repositories.Store) error {
	existing, err := store.Products.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, fields := range demoProducts {
		if _, err := store.Products.Create(ctx, models.Product{Extra: fields}); err != nil {
			return err
		}
	}
	return nil
}
