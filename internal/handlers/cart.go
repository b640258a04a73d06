package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/middleware"
	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/services"
	"github.com/example/nushka/internal/utils"
)

// CartHandler manages cart and wishlist endpoints for both guests and
// signed-in users.
type CartHandler struct {
	db    *gorm.DB
	carts *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, carts *services.CartService) *CartHandler {
	return &CartHandler{db: db, carts: carts}
}

// resolveCart picks the cart for the current request: the user's when
// authenticated, the guest-token one otherwise. A guest without a token
// gets a fresh cart whose token is returned in the payload.
func (h *CartHandler) resolveCart(c *fiber.Ctx) (*models.Cart, error) {
	if userID, ok := middleware.GetCurrentUserID(c); ok {
		return h.carts.GetOrCreate(&userID, "")
	}
	return h.carts.GetOrCreate(nil, middleware.GetGuestToken(c))
}

func (h *CartHandler) cartResponse(cart *models.Cart) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    cart,
		"summary": h.carts.Summary(cart),
	}
}

// GetCart returns the current cart with its checkout summary.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}
	return c.JSON(h.cartResponse(cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// AddItem puts one unit of a product in the cart, merging with an
// existing line.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	product, err := h.lookupProduct(req.ProductID)
	if err != nil {
		return err
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	cart, err = h.carts.AddToCart(cart.ID, product)
	if err != nil {
		return err
	}

	return c.JSON(h.cartResponse(cart))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem sets a line's quantity; zero or less removes the line.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	cart, err = h.carts.UpdateQuantity(cart.ID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "item not in cart")
		}
		return err
	}

	return c.JSON(h.cartResponse(cart))
}

// RemoveItem deletes a cart line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	cart, err = h.carts.RemoveFromCart(cart.ID, productID)
	if err != nil {
		return err
	}

	return c.JSON(h.cartResponse(cart))
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	cart, err = h.carts.ClearCart(cart.ID)
	if err != nil {
		return err
	}

	return c.JSON(h.cartResponse(cart))
}

type snapshotRequest struct {
	Version  int64                   `json:"version"`
	Items    []services.SnapshotItem `json:"items"`
	Wishlist []string                `json:"wishlist"`
}

// SyncCart replaces the whole cart with a client snapshot. The client
// must echo the version it last read; a mismatch means a newer write
// landed first and the snapshot is rejected.
func (h *CartHandler) SyncCart(c *fiber.Ctx) error {
	var req snapshotRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	items := make([]models.CartItem, 0, len(req.Items))
	for _, snap := range req.Items {
		product, err := h.lookupProduct(snap.ProductID.String())
		if err != nil {
			return err
		}
		items = append(items, models.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    snap.Quantity,
		})
	}

	wishlist := make([]models.WishlistItem, 0, len(req.Wishlist))
	for _, raw := range req.Wishlist {
		product, err := h.lookupProduct(raw)
		if err != nil {
			return err
		}
		wishlist = append(wishlist, models.WishlistItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
		})
	}

	cart, err = h.carts.ReplaceSnapshot(cart.ID, req.Version, items, wishlist)
	if err != nil {
		if errors.Is(err, services.ErrStaleSnapshot) {
			return fiber.NewError(fiber.StatusConflict, "cart was modified elsewhere, reload and retry")
		}
		return err
	}

	return c.JSON(h.cartResponse(cart))
}

// AddWishlistItem saves a product to the wishlist (set semantics).
func (h *CartHandler) AddWishlistItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	product, err := h.lookupProduct(req.ProductID)
	if err != nil {
		return err
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	cart, err = h.carts.AddToWishlist(cart.ID, product)
	if err != nil {
		return err
	}

	return c.JSON(h.cartResponse(cart))
}

// RemoveWishlistItem drops a product from the wishlist.
func (h *CartHandler) RemoveWishlistItem(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	cart, err = h.carts.RemoveFromWishlist(cart.ID, productID)
	if err != nil {
		return err
	}

	return c.JSON(h.cartResponse(cart))
}

func (h *CartHandler) lookupProduct(raw string) (*models.Product, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}
