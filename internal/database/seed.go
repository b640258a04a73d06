package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/example/nushka/internal/models"
)

// SeedProducts inserts the base catalog when the products table is empty.
func SeedProducts(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{
			Slug:          "gentle-herb-cleanser",
			Name:          "Gentle Herb Cleanser",
			Price:         1899,
			OriginalPrice: 2299,
			Description:   "A gentle, herb-infused cleanser that purifies while maintaining skin's natural moisture barrier.",
			Benefits:      []string{"Deep cleansing without stripping", "Maintains natural pH balance", "Reduces inflammation", "Suitable for all skin types"},
			Ingredients:   []string{"Neem extract", "Turmeric", "Rose water", "Aloe vera", "Coconut oil"},
			Usage:         "Apply to damp skin, massage gently in circular motions, rinse with lukewarm water. Use morning and evening.",
			Images:        []string{"https://images.pexels.com/photos/7755476/pexels-photo-7755476.jpeg"},
			Category:      models.CategoryCleanser,
			SkinConcerns:  []string{"Acne", "Sensitivity", "Dullness"},
			Stock:         50,
			Featured:      true,
		},
		{
			Slug:         "radiance-vitamin-c-serum",
			Name:         "Radiance Vitamin C Serum",
			Price:        2499,
			Description:  "A potent vitamin C serum that brightens skin tone and provides antioxidant protection.",
			Benefits:     []string{"Brightens complexion", "Reduces dark spots", "Antioxidant protection", "Stimulates collagen production"},
			Ingredients:  []string{"Vitamin C (L-Ascorbic acid)", "Hyaluronic acid", "Vitamin E", "Ferulic acid", "Rose hip oil"},
			Usage:        "Apply 2-3 drops to clean skin in the morning. Follow with moisturizer and SPF.",
			Images:       []string{"https://images.pexels.com/photos/7755443/pexels-photo-7755443.jpeg"},
			Category:     models.CategorySerum,
			SkinConcerns: []string{"Dark spots", "Dullness", "Anti-aging"},
			Stock:        50,
			Featured:     true,
		},
		{
			Slug:         "hydrating-rose-moisturizer",
			Name:         "Hydrating Rose Moisturizer",
			Price:        1699,
			Description:  "A luxurious rose-infused moisturizer that deeply hydrates and softens skin.",
			Benefits:     []string{"Deep hydration", "Improves skin texture", "Calming rose fragrance", "Non-greasy formula"},
			Ingredients:  []string{"Rose water", "Shea butter", "Jojoba oil", "Hyaluronic acid", "Ceramides"},
			Usage:        "Apply to clean skin morning and evening. Massage gently until absorbed.",
			Images:       []string{"https://images.pexels.com/photos/7755471/pexels-photo-7755471.jpeg"},
			Category:     models.CategoryMoisturizer,
			SkinConcerns: []string{"Dryness", "Sensitivity", "Aging"},
			Stock:        50,
		},
		{
			Slug:         "purifying-clay-mask",
			Name:         "Purifying Clay Mask",
			Price:        1399,
			Description:  "A detoxifying clay mask that draws out impurities and minimizes pores.",
			Benefits:     []string{"Deep pore cleansing", "Controls excess oil", "Minimizes pores", "Improves skin texture"},
			Ingredients:  []string{"Bentonite clay", "Kaolin clay", "Charcoal", "Tea tree oil", "Witch hazel"},
			Usage:        "Apply thin layer to clean skin, avoid eye area. Leave for 10-15 minutes, rinse with warm water.",
			Images:       []string{"https://images.pexels.com/photos/7755456/pexels-photo-7755456.jpeg"},
			Category:     models.CategoryMask,
			SkinConcerns: []string{"Acne", "Large pores", "Oily skin"},
			Stock:        50,
		},
		{
			Slug:         "nourishing-face-oil",
			Name:         "Nourishing Face Oil",
			Price:        2199,
			Description:  "A blend of precious oils that deeply nourishes and restores skin's natural glow.",
			Benefits:     []string{"Intense nourishment", "Restores radiance", "Anti-aging properties", "Improves elasticity"},
			Ingredients:  []string{"Rosehip oil", "Argan oil", "Marula oil", "Squalane", "Vitamin E"},
			Usage:        "Warm 3-4 drops between palms, press gently into skin. Use in the evening after serum.",
			Images:       []string{"https://images.pexels.com/photos/7755508/pexels-photo-7755508.jpeg"},
			Category:     models.CategoryOil,
			SkinConcerns: []string{"Dryness", "Dullness", "Aging"},
			Stock:        50,
		},
		{
			Slug:         "balancing-herbal-toner",
			Name:         "Balancing Herbal Toner",
			Price:        1299,
			Description:  "An alcohol-free herbal toner that balances and preps skin for the next steps.",
			Benefits:     []string{"Balances pH", "Tightens pores", "Refreshes skin", "Preps for serums"},
			Ingredients:  []string{"Witch hazel", "Rose water", "Green tea", "Cucumber extract", "Glycerin"},
			Usage:        "After cleansing, apply with a cotton pad or spritz onto face. Follow with serum.",
			Images:       []string{"https://images.pexels.com/photos/7755464/pexels-photo-7755464.jpeg"},
			Category:     models.CategoryToner,
			SkinConcerns: []string{"Oily skin", "Large pores", "Dullness"},
			Stock:        50,
		},
	}

	if err := conn.Create(&products).Error; err != nil {
		return err
	}

	log.Printf("[Database] Seeded %d catalog products", len(products))
	return nil
}
