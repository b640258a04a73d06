package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/models"
)

// Free shipping kicks in at the subtotal threshold; below it a flat fee
// applies.
const (
	FreeShippingThreshold = 1999
	ShippingFee           = 99
)

// ErrStaleSnapshot is returned when a snapshot write carries a version
// that no longer matches the stored cart.
var ErrStaleSnapshot = errors.New("cart snapshot is stale")

// ErrItemNotFound is returned when a quantity update targets a product
// that has no line in the cart.
var ErrItemNotFound = errors.New("item not in cart")

// CartService owns all cart and wishlist mutations. Every mutation
// recomputes the cart total and item count and bumps the version
// counter inside a single transaction.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs a CartService.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartSummary is the checkout-facing breakdown of a cart.
type CartSummary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// SnapshotItem is one line of a full-cart snapshot write.
type SnapshotItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// GetOrCreate resolves the cart for a signed-in user or a guest token.
// A guest request without a token gets a fresh cart with a generated
// token the client is expected to hold on to.
func (s *CartService) GetOrCreate(userID *uuid.UUID, guestToken string) (*models.Cart, error) {
	var cart models.Cart

	query := s.db.Preload("Items").Preload("Wishlist")
	var err error
	switch {
	case userID != nil:
		err = query.Where("user_id = ?", *userID).First(&cart).Error
	case guestToken != "":
		err = query.Where("guest_token = ?", guestToken).First(&cart).Error
	default:
		err = gorm.ErrRecordNotFound
	}

	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if userID == nil {
		if guestToken == "" {
			guestToken = uuid.New().String()
		}
		cart.GuestToken = &guestToken
	}

	if err := s.db.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart merges by product id: an existing line gains quantity+1,
// otherwise a new line is inserted with quantity 1 and the product's
// current price as its snapshot.
func (s *CartService) AddToCart(cartID uuid.UUID, product *models.Product) (*models.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", cartID, product.ID).First(&item).Error
		switch {
		case err == nil:
			item.Quantity++
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				CartID:      cartID,
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    1,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return s.recompute(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return s.load(cartID)
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the
// line, so stored quantities are always positive.
func (s *CartService) UpdateQuantity(cartID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if quantity <= 0 {
			if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).
				Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		} else {
			res := tx.Model(&models.CartItem{}).
				Where("cart_id = ? AND product_id = ?", cartID, productID).
				Update("quantity", quantity)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrItemNotFound
			}
		}

		return s.recompute(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return s.load(cartID)
}

// RemoveFromCart deletes a line regardless of quantity.
func (s *CartService) RemoveFromCart(cartID, productID uuid.UUID) (*models.Cart, error) {
	return s.UpdateQuantity(cartID, productID, 0)
}

// ClearCart empties all lines. The wishlist is untouched.
func (s *CartService) ClearCart(cartID uuid.UUID) (*models.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return s.recompute(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return s.load(cartID)
}

// AddToWishlist inserts a product reference with set semantics: adding
// a product already present is a no-op.
func (s *CartService) AddToWishlist(cartID uuid.UUID, product *models.Product) (*models.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.WishlistItem
		err := tx.Where("cart_id = ? AND product_id = ?", cartID, product.ID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry := models.WishlistItem{
			CartID:      cartID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return s.recompute(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return s.load(cartID)
}

// RemoveFromWishlist drops a product reference if present.
func (s *CartService) RemoveFromWishlist(cartID, productID uuid.UUID) (*models.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).
			Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		return s.recompute(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return s.load(cartID)
}

// IsInWishlist reports wishlist membership for a product.
func (s *CartService) IsInWishlist(cartID, productID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.WishlistItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Count(&count).Error
	return count > 0, err
}

// ReplaceSnapshot overwrites the whole cart with a client snapshot,
// guarded by the version counter: the client must echo the version it
// last read, otherwise the write is rejected as stale.
func (s *CartService) ReplaceSnapshot(cartID uuid.UUID, clientVersion int64, items []models.CartItem, wishlist []models.WishlistItem) (*models.Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.First(&cart, "id = ?", cartID).Error; err != nil {
			return err
		}
		if cart.Version != clientVersion {
			return ErrStaleSnapshot
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}

		for i := range items {
			if items[i].Quantity <= 0 {
				continue
			}
			items[i].CartID = cartID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		seen := make(map[uuid.UUID]struct{}, len(wishlist))
		for i := range wishlist {
			if _, ok := seen[wishlist[i].ProductID]; ok {
				continue
			}
			seen[wishlist[i].ProductID] = struct{}{}
			wishlist[i].CartID = cartID
			if err := tx.Create(&wishlist[i]).Error; err != nil {
				return err
			}
		}

		return s.recompute(tx, cartID)
	})
	if err != nil {
		return nil, err
	}

	return s.load(cartID)
}

// MergeGuestCart folds a guest cart into the user's cart on sign-in:
// quantities sum per product id, wishlists union, and the guest cart is
// deleted. Guest contents are never silently discarded.
func (s *CartService) MergeGuestCart(guestToken string, userID uuid.UUID) (*models.Cart, error) {
	userCart, err := s.GetOrCreate(&userID, "")
	if err != nil {
		return nil, err
	}

	if guestToken == "" {
		return userCart, nil
	}

	var guestCart models.Cart
	err = s.db.Preload("Items").Preload("Wishlist").
		Where("guest_token = ? AND user_id IS NULL", guestToken).
		First(&guestCart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userCart, nil
	}
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, guestItem := range guestCart.Items {
			var item models.CartItem
			err := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, guestItem.ProductID).First(&item).Error
			switch {
			case err == nil:
				item.Quantity += guestItem.Quantity
				if err := tx.Save(&item).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				merged := models.CartItem{
					CartID:      userCart.ID,
					ProductID:   guestItem.ProductID,
					ProductName: guestItem.ProductName,
					UnitPrice:   guestItem.UnitPrice,
					Quantity:    guestItem.Quantity,
				}
				if err := tx.Create(&merged).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		for _, guestEntry := range guestCart.Wishlist {
			var existing models.WishlistItem
			err := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, guestEntry.ProductID).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			entry := models.WishlistItem{
				CartID:      userCart.ID,
				ProductID:   guestEntry.ProductID,
				ProductName: guestEntry.ProductName,
				UnitPrice:   guestEntry.UnitPrice,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", guestCart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", guestCart.ID).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Cart{}, "id = ?", guestCart.ID).Error; err != nil {
			return err
		}

		return s.recompute(tx, userCart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.load(userCart.ID)
}

// Summary computes the checkout breakdown. Shipping is free above the
// threshold.
func (s *CartService) Summary(cart *models.Cart) CartSummary {
	shipping := 0.0
	if cart.Total > 0 && cart.Total < FreeShippingThreshold {
		shipping = ShippingFee
	}

	return CartSummary{
		Subtotal: cart.Total,
		Shipping: shipping,
		Total:    cart.Total + shipping,
	}
}

func (s *CartService) load(cartID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items").Preload("Wishlist").First(&cart, "id = ?", cartID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// recompute refreshes total and item count from the full line list and
// bumps the version counter.
func (s *CartService) recompute(tx *gorm.DB, cartID uuid.UUID) error {
	var items []models.CartItem
	if err := tx.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return err
	}

	var total float64
	var count int
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
		count += item.Quantity
	}

	return tx.Model(&models.Cart{}).Where("id = ?", cartID).Updates(map[string]interface{}{
		"total":      total,
		"item_count": count,
		"version":    gorm.Expr("version + 1"),
	}).Error
}
