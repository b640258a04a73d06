package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/utils"
)

// ProductHandler manages catalog endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns the catalog with optional category, featured and
// search filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct returns one product by UUID or slug.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Slug          string   `json:"slug" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	OriginalPrice float64  `json:"original_price"`
	Description   string   `json:"description"`
	Benefits      []string `json:"benefits"`
	Ingredients   []string `json:"ingredients"`
	Usage         string   `json:"usage"`
	Images        []string `json:"images"`
	Category      string   `json:"category" validate:"required,oneof=cleanser moisturizer serum mask oil toner"`
	SkinConcerns  []string `json:"skin_concerns"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Featured      bool     `json:"featured"`
}

// CreateProduct adds a catalog item (admin only).
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	product := models.Product{
		Slug:          req.Slug,
		Name:          req.Name,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Description:   req.Description,
		Benefits:      req.Benefits,
		Ingredients:   req.Ingredients,
		Usage:         req.Usage,
		Images:        req.Images,
		Category:      req.Category,
		SkinConcerns:  req.SkinConcerns,
		Stock:         req.Stock,
		Featured:      req.Featured,
	}

	if err := h.db.Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "product slug already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct modifies a catalog item (admin only).
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	product.Slug = req.Slug
	product.Name = req.Name
	product.Price = req.Price
	product.OriginalPrice = req.OriginalPrice
	product.Description = req.Description
	product.Benefits = req.Benefits
	product.Ingredients = req.Ingredients
	product.Usage = req.Usage
	product.Images = req.Images
	product.Category = req.Category
	product.SkinConcerns = req.SkinConcerns
	product.Stock = req.Stock
	product.Featured = req.Featured

	if err := h.db.Save(product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a catalog item (admin only).
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Delete(product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}

// findProduct resolves a path parameter as UUID first, slug second.
func (h *ProductHandler) findProduct(param string) (*models.Product, error) {
	var product models.Product
	if id, err := uuid.Parse(param); err == nil {
		if err := h.db.First(&product, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &product, nil
	}

	if err := h.db.First(&product, "slug = ?", param).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
