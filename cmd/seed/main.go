package main

import (
	"fmt"

	"github.com/hornada/hornada/internal/config"
	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/models"

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

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to bootstrap default admin: %v", err)
	}

	branches := []models.Branch{
		{
			Slug:      "centro",
			Name:      "Sucursal Centro",
			Address:   "Av. San Martin 1200, Centro",
			Phone:     "+54 11 4000 1200",
			Schedule:  "Lun-Sab 07:00-20:00, Dom 08:00-13:00",
			IsActive:  true,
			SortOrder: 300,
		},
		{
			Slug:      "norte",
			Name:      "Sucursal Norte",
			Address:   "Calle Belgrano 450, Barrio Norte",
			Phone:     "+54 11 4000 0450",
			Schedule:  "Lun-Sab 07:30-20:30",
			IsActive:  true,
			SortOrder: 200,
		},
		{
			Slug:      "oeste",
			Name:      "Sucursal Oeste",
			Address:   "Av. Rivadavia 8900, Liniers",
			Phone:     "+54 11 4000 8900",
			Schedule:  "Lun-Dom 08:00-21:00",
			IsActive:  false,
			SortOrder: 100,
		},
	}

	for _, branch := range branches {
		var existing models.Branch
		if err := models.DB.Where("slug = ?", branch.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&branch).Error; err != nil {
				stdLog.Printf("Failed to create branch %s: %v", branch.Slug, err)
			} else {
				stdLog.Printf("Created branch: %s", branch.Slug)
			}
		} else {
			stdLog.Printf("Branch already exists: %s", branch.Slug)
		}
	}

	branchIDs := map[string]uint{}
	var branchList []models.Branch
	if err := models.DB.Where("slug IN ?", []string{"centro", "norte", "oeste"}).Find(&branchList).Error; err != nil {
		stdLog.Printf("Failed to load branches: %v", err)
	}
	for _, branch := range branchList {
		branchIDs[branch.Slug] = branch.ID
	}
	centroID := branchIDs["centro"]
	norteID := branchIDs["norte"]

	products := []models.Product{
		{
			BranchID:    centroID,
			Slug:        "medialunas-docena",
			Name:        "Medialunas x12",
			Description: "Docena de medialunas de manteca, horneadas cada manana.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(5200)),
			Image:       "https://images.unsplash.com/photo-1555507036-ab1f4038808a?w=800",
			Stock:       40,
			Tags:        models.StringArray([]string{"facturas", "clasicos"}),
			IsActive:    true,
			SortOrder:   300,
		},
		{
			BranchID:    centroID,
			Slug:        "pan-de-campo",
			Name:        "Pan de Campo",
			Description: "Hogaza rustica de masa madre, 900g.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(3800)),
			Image:       "https://images.unsplash.com/photo-1509440159596-0249088772ff?w=800",
			Stock:       25,
			Tags:        models.StringArray([]string{"panes", "masa-madre"}),
			IsActive:    true,
			SortOrder:   280,
		},
		{
			BranchID:    centroID,
			Slug:        "chipa-500",
			Name:        "Chipa 500g",
			Description: "Chipa de queso recien horneado, bolsa de 500g.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(4500)),
			Image:       "https://images.unsplash.com/photo-1605090930904-02f38e6560f4?w=800",
			Stock:       18,
			Tags:        models.StringArray([]string{"chipa", "sin-tacc"}),
			IsActive:    true,
			SortOrder:   260,
		},
		{
			BranchID:    centroID,
			Slug:        "torta-rogel",
			Name:        "Torta Rogel",
			Description: "Capas finas con dulce de leche y merengue italiano.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(16500)),
			Image:       "https://images.unsplash.com/photo-1542826438-bd32f43d626f?w=800",
			Stock:       6,
			Tags:        models.StringArray([]string{"tortas", "dulce-de-leche"}),
			IsActive:    true,
			SortOrder:   240,
		},
		{
			BranchID:    norteID,
			Slug:        "medialunas-docena-norte",
			Name:        "Medialunas x12",
			Description: "Docena de medialunas de manteca, horneadas cada manana.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(5400)),
			Image:       "https://images.unsplash.com/photo-1555507036-ab1f4038808a?w=800",
			Stock:       30,
			Tags:        models.StringArray([]string{"facturas", "clasicos"}),
			IsActive:    true,
			SortOrder:   300,
		},
		{
			BranchID:    norteID,
			Slug:        "budin-limon",
			Name:        "Budin de Limon",
			Description: "Budin humedo de limon con glaseado.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(6200)),
			Image:       "https://images.unsplash.com/photo-1586444248902-2f64eddc13df?w=800",
			Stock:       0,
			Tags:        models.StringArray([]string{"budines"}),
			IsActive:    true,
			SortOrder:   220,
		},
	}

	for _, prod := range products {
		if prod.BranchID == 0 {
			stdLog.Printf("Skip product %s: branch_id missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.BranchID = prod.BranchID
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.Image = prod.Image
			existing.Stock = prod.Stock
			existing.Tags = prod.Tags
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	productIDs := map[string]uint{}
	var productList []models.Product
	if err := models.DB.Find(&productList).Error; err != nil {
		stdLog.Printf("Failed to load products: %v", err)
	}
	for _, prod := range productList {
		productIDs[prod.Slug] = prod.ID
	}

	offers := []struct {
		Offer models.Offer
		Items []models.OfferItem
	}{
		{
			Offer: models.Offer{
				BranchID:    centroID,
				Slug:        "desayuno-completo",
				Name:        "Desayuno Completo",
				Description: "Media docena de medialunas mas un pan de campo.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(8500)),
				Image:       "https://images.unsplash.com/photo-1525351484163-7529414344d8?w=800",
				IsActive:    true,
				SortOrder:   200,
			},
			Items: []models.OfferItem{
				{ProductID: productIDs["medialunas-docena"], PerBundle: 1, SortOrder: 2},
				{ProductID: productIDs["pan-de-campo"], PerBundle: 1, SortOrder: 1},
			},
		},
		{
			Offer: models.Offer{
				BranchID:    centroID,
				Slug:        "merienda-familiar",
				Name:        "Merienda Familiar",
				Description: "Torta rogel mas dos bolsas de chipa.",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(23900)),
				Image:       "https://images.unsplash.com/photo-1517433670267-08bbd4be890f?w=800",
				IsActive:    true,
				SortOrder:   180,
			},
			Items: []models.OfferItem{
				{ProductID: productIDs["torta-rogel"], PerBundle: 1, SortOrder: 2},
				{ProductID: productIDs["chipa-500"], PerBundle: 2, SortOrder: 1},
			},
		},
	}

	for _, plan := range offers {
		valid := true
		for _, item := range plan.Items {
			if item.ProductID == 0 {
				valid = false
				break
			}
		}
		if !valid {
			stdLog.Printf("Skip offer %s: constituent product missing", plan.Offer.Slug)
			continue
		}

		var existing models.Offer
		if err := models.DB.Where("slug = ?", plan.Offer.Slug).First(&existing).Error; err != nil {
			offer := plan.Offer
			offer.Items = plan.Items
			if err := models.DB.Create(&offer).Error; err != nil {
				stdLog.Printf("Failed to create offer %s: %v", offer.Slug, err)
			} else {
				stdLog.Printf("Created offer: %s", offer.Slug)
			}
		} else {
			stdLog.Printf("Offer already exists: %s", plan.Offer.Slug)
		}
	}

	configData := map[string]interface{}{
		"site_name":                        "Hornada",
		constants.SettingFieldSiteCurrency: constants.SiteCurrencyDefault,
		"contact": map[string]string{
			"phone":    "+54 11 4000 1200",
			"whatsapp": "https://wa.me/541140001200",
		},
	}

	var setting models.Setting
	if err := models.DB.Where("key = ?", constants.SettingKeySiteConfig).First(&setting).Error; err != nil {
		setting = models.Setting{
			Key:       constants.SettingKeySiteConfig,
			ValueJSON: models.JSON(configData),
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Printf("Failed to create setting: %v", err)
		} else {
			stdLog.Println("Created site config")
		}
	} else {
		setting.ValueJSON = models.JSON(configData)
		if err := models.DB.Save(&setting).Error; err != nil {
			stdLog.Printf("Failed to update setting: %v", err)
		} else {
			stdLog.Println("Updated site config")
		}
	}

	fmt.Println("\nSeed data ready:")
	fmt.Println("- 3 branches (2 active)")
	fmt.Println("- 6 products across branches")
	fmt.Println("- 2 offers with constituents")
	fmt.Println("- site configuration")
}
