package main

import (
	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	categories := []models.Category{
		{Slug: "topicals", Name: "Topical Preparations", Description: "Creams, gels and ointments compounded to order", SortOrder: 1},
		{Slug: "capsules", Name: "Capsules", Description: "Custom-strength compounded capsules", SortOrder: 2},
		{Slug: "troches", Name: "Troches & Lozenges", Description: "Buccal and sublingual dosage forms", SortOrder: 3},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"topicals", "capsules", "troches"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	products := []models.Product{
		{
			CategoryID:           categoryIDs["topicals"],
			Slug:                 "ketoprofen-10-cream",
			Name:                 "Ketoprofen 10% Cream",
			Description:          "Compounded anti-inflammatory cream for localized pain relief.",
			DosageForm:           "cream",
			Strength:             "10%",
			RequiresPrescription: true,
			Price:                models.NewMoneyFromDecimal(decimal.NewFromFloat(42.50)),
			StockTotal:           50,
			IsActive:             true,
			SortOrder:            1,
		},
		{
			CategoryID:           categoryIDs["capsules"],
			Slug:                 "ldn-4-5-capsules",
			Name:                 "Low Dose Naltrexone 4.5mg Capsules",
			Description:          "Thirty-day supply of compounded LDN capsules.",
			DosageForm:           "capsule",
			Strength:             "4.5mg",
			RequiresPrescription: true,
			Price:                models.NewMoneyFromDecimal(decimal.NewFromFloat(38.00)),
			StockTotal:           0,
			IsActive:             true,
			SortOrder:            2,
		},
		{
			CategoryID:           categoryIDs["troches"],
			Slug:                 "melatonin-5-troche",
			Name:                 "Melatonin 5mg Troches",
			Description:          "Sublingual melatonin troches, pack of 30.",
			DosageForm:           "troche",
			Strength:             "5mg",
			RequiresPrescription: false,
			Price:                models.NewMoneyFromDecimal(decimal.NewFromFloat(19.95)),
			StockTotal:           120,
			IsActive:             true,
			SortOrder:            3,
		},
	}

	for _, product := range products {
		if product.CategoryID == 0 {
			stdLog.Printf("Skipping %s: category missing", product.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	stdLog.Printf("Seed finished")
}
