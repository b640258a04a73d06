package services_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/nushka/internal/database"
	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/services"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func createProduct(t *testing.T, db *gorm.DB, slug, name string, price float64) *models.Product {
	t.Helper()

	product := &models.Product{
		Slug:     slug,
		Name:     name,
		Price:    price,
		Category: models.CategoryCleanser,
		Stock:    50,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestCartService_AddToCartMergesByProduct(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "gentle-herb-cleanser", "Gentle Herb Cleanser", 1899)
	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)
	require.NotNil(t, cart.GuestToken)
	assert.NotEmpty(t, *cart.GuestToken)

	const adds = 4
	for i := 0; i < adds; i++ {
		cart, err = carts.AddToCart(cart.ID, product)
		require.NoError(t, err)
	}

	require.Len(t, cart.Items, 1)
	assert.Equal(t, adds, cart.Items[0].Quantity)
	assert.Equal(t, float64(adds)*product.Price, cart.Total)
	assert.Equal(t, adds, cart.ItemCount)
}

func TestCartService_TotalsAcrossProducts(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	cleanser := createProduct(t, db, "gentle-herb-cleanser", "Gentle Herb Cleanser", 1899)
	moisturizer := createProduct(t, db, "hydrating-rose-moisturizer", "Hydrating Rose Moisturizer", 1699)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)

	cart, err = carts.AddToCart(cart.ID, cleanser)
	require.NoError(t, err)
	cart, err = carts.AddToCart(cart.ID, cleanser)
	require.NoError(t, err)
	cart, err = carts.AddToCart(cart.ID, moisturizer)
	require.NoError(t, err)

	assert.Equal(t, 5497.0, cart.Total)
	assert.Equal(t, 3, cart.ItemCount)

	// Above the free-shipping threshold.
	summary := carts.Summary(cart)
	assert.Equal(t, 5497.0, summary.Subtotal)
	assert.Equal(t, 0.0, summary.Shipping)
	assert.Equal(t, 5497.0, summary.Total)
}

func TestCartService_ShippingFeeBelowThreshold(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	toner := createProduct(t, db, "balancing-herbal-toner", "Balancing Herbal Toner", 1299)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)

	cart, err = carts.AddToCart(cart.ID, toner)
	require.NoError(t, err)

	summary := carts.Summary(cart)
	assert.Equal(t, 1299.0, summary.Subtotal)
	assert.Equal(t, float64(services.ShippingFee), summary.Shipping)
	assert.Equal(t, 1299.0+services.ShippingFee, summary.Total)
}

func TestCartService_UpdateQuantityZeroRemoves(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "purifying-clay-mask", "Purifying Clay Mask", 1399)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)
	cart, err = carts.AddToCart(cart.ID, product)
	require.NoError(t, err)

	cart, err = carts.UpdateQuantity(cart.ID, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
	assert.Equal(t, 0, cart.ItemCount)

	// Removing has the same effect as setting zero.
	cart, err = carts.AddToCart(cart.ID, product)
	require.NoError(t, err)
	cart, err = carts.RemoveFromCart(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_UpdateQuantityClampsStoredValue(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "nourishing-face-oil", "Nourishing Face Oil", 2199)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)
	cart, err = carts.AddToCart(cart.ID, product)
	require.NoError(t, err)

	cart, err = carts.UpdateQuantity(cart.ID, product.ID, 5)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 5*product.Price, cart.Total)

	cart, err = carts.UpdateQuantity(cart.ID, product.ID, -3)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_OneCartPerUser(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	alice := models.User{Email: "alice@example.com", DisplayName: "Alice"}
	require.NoError(t, db.Create(&alice).Error)
	bob := models.User{Email: "bob@example.com", DisplayName: "Bob"}
	require.NoError(t, db.Create(&bob).Error)

	aliceCart, err := carts.GetOrCreate(&alice.ID, "")
	require.NoError(t, err)
	assert.Nil(t, aliceCart.GuestToken)

	// The second user's cart must not collide with the first.
	bobCart, err := carts.GetOrCreate(&bob.ID, "")
	require.NoError(t, err)
	assert.Nil(t, bobCart.GuestToken)
	assert.NotEqual(t, aliceCart.ID, bobCart.ID)

	again, err := carts.GetOrCreate(&alice.ID, "")
	require.NoError(t, err)
	assert.Equal(t, aliceCart.ID, again.ID)
}

func TestCartService_UpdateQuantityUnknownProduct(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "gentle-herb-cleanser", "Gentle Herb Cleanser", 1899)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)
	cart, err = carts.AddToCart(cart.ID, product)
	require.NoError(t, err)

	_, err = carts.UpdateQuantity(cart.ID, uuid.New(), 2)
	assert.ErrorIs(t, err, services.ErrItemNotFound)

	unchanged, err := carts.GetOrCreate(nil, *cart.GuestToken)
	require.NoError(t, err)
	require.Len(t, unchanged.Items, 1)
	assert.Equal(t, 1, unchanged.Items[0].Quantity)
}

func TestCartService_WishlistSetSemantics(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "radiance-vitamin-c-serum", "Radiance Vitamin C Serum", 2499)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)

	cart, err = carts.AddToWishlist(cart.ID, product)
	require.NoError(t, err)
	require.Len(t, cart.Wishlist, 1)

	// Adding again must not grow the list.
	cart, err = carts.AddToWishlist(cart.ID, product)
	require.NoError(t, err)
	assert.Len(t, cart.Wishlist, 1)

	present, err := carts.IsInWishlist(cart.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, present)

	cart, err = carts.RemoveFromWishlist(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Wishlist)

	present, err = carts.IsInWishlist(cart.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestCartService_SnapshotVersionGuard(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "gentle-herb-cleanser", "Gentle Herb Cleanser", 1899)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)

	cart, err = carts.AddToCart(cart.ID, product)
	require.NoError(t, err)

	snapshot := []models.CartItem{{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    2,
	}}

	// A stale version must be rejected and leave the cart untouched.
	_, err = carts.ReplaceSnapshot(cart.ID, cart.Version-1, snapshot, nil)
	assert.ErrorIs(t, err, services.ErrStaleSnapshot)

	unchanged, err := carts.GetOrCreate(nil, *cart.GuestToken)
	require.NoError(t, err)
	require.Len(t, unchanged.Items, 1)
	assert.Equal(t, 1, unchanged.Items[0].Quantity)

	// Echoing the current version applies the snapshot and bumps it.
	updated, err := carts.ReplaceSnapshot(cart.ID, cart.Version, snapshot, nil)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 2, updated.Items[0].Quantity)
	assert.Greater(t, updated.Version, cart.Version)
}

func TestCartService_SnapshotDeduplicatesWishlist(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "radiance-vitamin-c-serum", "Radiance Vitamin C Serum", 2499)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)

	// A product listed twice collapses to one wishlist entry.
	wishlist := []models.WishlistItem{
		{ProductID: product.ID, ProductName: product.Name, UnitPrice: product.Price},
		{ProductID: product.ID, ProductName: product.Name, UnitPrice: product.Price},
	}
	updated, err := carts.ReplaceSnapshot(cart.ID, cart.Version, nil, wishlist)
	require.NoError(t, err)
	assert.Len(t, updated.Wishlist, 1)
}

func TestCartService_MergeGuestCartOnSignIn(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	cleanser := createProduct(t, db, "gentle-herb-cleanser", "Gentle Herb Cleanser", 1899)
	moisturizer := createProduct(t, db, "hydrating-rose-moisturizer", "Hydrating Rose Moisturizer", 1699)

	user := models.User{Email: "merge@example.com", DisplayName: "Merge Tester"}
	require.NoError(t, db.Create(&user).Error)

	// Guest cart: 2x cleanser, cleanser wishlisted.
	guestCart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)
	guestToken := *guestCart.GuestToken
	_, err = carts.AddToCart(guestCart.ID, cleanser)
	require.NoError(t, err)
	_, err = carts.AddToCart(guestCart.ID, cleanser)
	require.NoError(t, err)
	_, err = carts.AddToWishlist(guestCart.ID, cleanser)
	require.NoError(t, err)

	// User cart: 1x cleanser, 1x moisturizer.
	userCart, err := carts.GetOrCreate(&user.ID, "")
	require.NoError(t, err)
	_, err = carts.AddToCart(userCart.ID, cleanser)
	require.NoError(t, err)
	_, err = carts.AddToCart(userCart.ID, moisturizer)
	require.NoError(t, err)

	merged, err := carts.MergeGuestCart(guestToken, user.ID)
	require.NoError(t, err)

	quantities := map[uuid.UUID]int{}
	for _, item := range merged.Items {
		quantities[item.ProductID] = item.Quantity
	}
	assert.Equal(t, 3, quantities[cleanser.ID])
	assert.Equal(t, 1, quantities[moisturizer.ID])
	assert.Equal(t, 3*1899.0+1699.0, merged.Total)
	assert.Len(t, merged.Wishlist, 1)

	// The guest cart is gone afterwards.
	var count int64
	require.NoError(t, db.Model(&models.Cart{}).
		Where("guest_token = ? AND user_id IS NULL", guestToken).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestCartService_MergeWithoutGuestCartIsNoop(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)

	product := createProduct(t, db, "purifying-clay-mask", "Purifying Clay Mask", 1399)

	user := models.User{Email: "solo@example.com", DisplayName: "Solo"}
	require.NoError(t, db.Create(&user).Error)

	userCart, err := carts.GetOrCreate(&user.ID, "")
	require.NoError(t, err)
	_, err = carts.AddToCart(userCart.ID, product)
	require.NoError(t, err)

	merged, err := carts.MergeGuestCart("no-such-token", user.ID)
	require.NoError(t, err)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, 1, merged.Items[0].Quantity)
}
