package services_test

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/services"
)

var orderNumberPattern = regexp.MustCompile(`^NUSHKA\d{9}$`)

func TestGenerateOrderNumber(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		number := services.GenerateOrderNumber()
		assert.Regexp(t, orderNumberPattern, number)
		seen[number] = struct{}{}
	}

	// 6 timestamp digits + 3 random digits leave plenty of room, so a
	// tight loop should still produce mostly distinct numbers.
	assert.Greater(t, len(seen), 900)
}

func checkoutAddress() services.ShippingAddress {
	return services.ShippingAddress{
		FirstName: "Priya",
		LastName:  "Sharma",
		Email:     "priya@example.com",
		Phone:     "+919876543210",
		Address:   "42 Green Park",
		City:      "New Delhi",
		State:     "Delhi",
		Pincode:   "110016",
	}
}

func fillCart(t *testing.T, carts *services.CartService, db *gorm.DB) *models.Cart {
	t.Helper()

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
	return cart
}

func TestOrderService_CreateOrderSnapshotsAndClearsCart(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart := fillCart(t, carts, db)

	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 5497.0, order.Subtotal)
	assert.Equal(t, 0.0, order.ShippingFee)
	assert.Equal(t, 5497.0, order.TotalAmount)

	// The cart empties in the same transaction.
	emptied, err := carts.GetOrCreate(nil, *cart.GuestToken)
	require.NoError(t, err)
	assert.Empty(t, emptied.Items)
	assert.Equal(t, 0.0, emptied.Total)
	assert.Greater(t, emptied.Version, cart.Version)

	// Status history starts with the placement entry.
	var history []models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.OrderStatusPending, history[0].Status)
}

func TestOrderService_CreateOrderPaidStartsConfirmed(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart := fillCart(t, carts, db)

	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "upi",
		PaymentID:       "pay_123",
		PaymentStatus:   models.PaymentStatusPaid,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}

func TestOrderService_CreateOrderEmptyCart(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)

	_, err = orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestOrderService_CreateOrderAddsShippingBelowThreshold(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	toner := createProduct(t, db, "balancing-herbal-toner", "Balancing Herbal Toner", 1299)
	cart, err := carts.GetOrCreate(nil, "")
	require.NoError(t, err)
	cart, err = carts.AddToCart(cart.ID, toner)
	require.NoError(t, err)

	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	assert.Equal(t, 1299.0, order.Subtotal)
	assert.Equal(t, float64(services.ShippingFee), order.ShippingFee)
	assert.Equal(t, 1299.0+services.ShippingFee, order.TotalAmount)
}

func TestOrderService_UpdateStatusLifecycle(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart := fillCart(t, carts, db)
	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	for _, status := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		order, err = orders.UpdateStatus(order.ID, status, "")
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}

	// Delivered is terminal.
	_, err = orders.UpdateStatus(order.ID, models.OrderStatusCancelled, "")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	// Every transition is recorded, including the placement entry.
	var count int64
	require.NoError(t, db.Model(&models.OrderStatusHistory{}).
		Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestOrderService_CancelAfterShippedRejected(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart := fillCart(t, carts, db)
	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	// Cancellation is fine while still pending.
	cancelled, err := orders.UpdateStatus(order.ID, models.OrderStatusCancelled, "customer request")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	// And terminal afterwards.
	_, err = orders.UpdateStatus(order.ID, models.OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestOrderService_UpdateStatusUnknownOrder(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	_, err := orders.UpdateStatus(uuid.New(), models.OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_ProcessPayment(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart := fillCart(t, carts, db)
	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "upi",
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)

	paid, err := orders.ProcessPayment(order.ID, services.PaymentResult{
		PaymentID: "pay_456",
		Status:    "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, paid.Status)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "pay_456", stored.PaymentID)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
}

func TestOrderService_ProcessPaymentFailure(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart := fillCart(t, carts, db)
	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "priya@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "upi",
	})
	require.NoError(t, err)

	failed, err := orders.ProcessPayment(order.ID, services.PaymentResult{
		PaymentID: "pay_789",
		Status:    "failed",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, failed.Status)
}

func TestOrderService_TrackOrder(t *testing.T) {
	db := setupDB(t)
	carts := services.NewCartService(db)
	orders := services.NewOrderService(db, carts, nil, nil)

	cart := fillCart(t, carts, db)
	order, err := orders.CreateOrder(services.CreateOrderInput{
		GuestEmail:      "guest@example.com",
		CartID:          cart.ID,
		ShippingAddress: checkoutAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	// Both the guest email and the shipping email resolve the order.
	tracked, err := orders.TrackOrder(order.OrderNumber, "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, order.ID, tracked.ID)
	assert.NotEmpty(t, tracked.Items)

	tracked, err = orders.TrackOrder(order.OrderNumber, "priya@example.com")
	require.NoError(t, err)
	assert.Equal(t, order.ID, tracked.ID)

	_, err = orders.TrackOrder(order.OrderNumber, "stranger@example.com")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	_, err = orders.TrackOrder("NUSHKA000000000", "guest@example.com")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}
