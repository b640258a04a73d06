package models

import (
	"github.com/google/uuid"
)

// Cart holds the current cart and wishlist for a user or a guest.
// Exactly one of UserID/GuestToken identifies the owner; the other is
// NULL so the unique indexes never collide across carts. Version is a
// monotonic write counter; snapshot writes carrying an older version
// are rejected instead of silently overwriting newer state.
type Cart struct {
	BaseModel
	UserID     *uuid.UUID     `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	GuestToken *string        `gorm:"uniqueIndex" json:"guest_token,omitempty"`
	Version    int64          `json:"version"`
	Total      float64        `json:"total"`
	ItemCount  int            `json:"item_count"`
	Items      []CartItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Wishlist   []WishlistItem `gorm:"constraint:OnDelete:CASCADE" json:"wishlist"`
}

// CartItem is a cart line with a unit-price snapshot taken when the
// product was first added. Quantity is always >= 1; an update to zero
// removes the row.
type CartItem struct {
	BaseModel
	CartID      uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
}

// WishlistItem is a saved product reference. A product appears at most
// once per cart.
type WishlistItem struct {
	BaseModel
	CartID      uuid.UUID `gorm:"type:uuid;index:idx_wishlist_cart_product,unique" json:"cart_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index:idx_wishlist_cart_product,unique" json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   float64   `json:"unit_price"`
}
