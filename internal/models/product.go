package models

// Product categories available in the catalog.
const (
	CategoryCleanser    = "cleanser"
	CategoryMoisturizer = "moisturizer"
	CategorySerum       = "serum"
	CategoryMask        = "mask"
	CategoryOil         = "oil"
	CategoryToner       = "toner"
)

// Product represents a catalog item.
type Product struct {
	BaseModel
	Slug          string   `gorm:"uniqueIndex" json:"slug"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"original_price,omitempty"`
	Description   string   `json:"description"`
	Benefits      []string `gorm:"serializer:json" json:"benefits"`
	Ingredients   []string `gorm:"serializer:json" json:"ingredients"`
	Usage         string   `json:"usage"`
	Images        []string `gorm:"serializer:json" json:"images"`
	Category      string   `gorm:"index" json:"category"`
	SkinConcerns  []string `gorm:"serializer:json" json:"skin_concerns"`
	Stock         int      `json:"stock"`
	Featured      bool     `json:"featured"`
}
