// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/customer"
	"github.com/your-org/pos-backend/internal/domain/order"
	"github.com/your-org/pos-backend/internal/domain/staff"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order: catalog and customers before orders
	models := []interface{}{
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Variant{},
		&catalog.Modifier{},

		&customer.StoredProfile{},
		&staff.Staff{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Order indexes - the kitchen board filters on status constantly
		"CREATE INDEX IF NOT EXISTS idx_orders_status_placed ON orders(status, placed_at)",
		"CREATE INDEX IF NOT EXISTS idx_orders_service_type ON orders(service_type)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedMenu(); err != nil {
		return fmt.Errorf("failed to seed menu: %w", err)
	}

	if err := m.seedStaff(); err != nil {
		return fmt.Errorf("failed to seed staff: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedMenu creates the starter menu for development
func (m *Migration) seedMenu() error {
	log.Println("🍕 Seeding menu...")

	var productCount int64
	m.db.Model(&catalog.Product{}).Count(&productCount)
	if productCount > 0 {
		log.Println("⏭️ Menu already exists")
		return nil
	}

	pizzas := catalog.Category{Name: "Pizzas", SortOrder: 1, IsActive: true}
	drinks := catalog.Category{Name: "Bebidas", SortOrder: 2, IsActive: true}
	for _, c := range []*catalog.Category{&pizzas, &drinks} {
		if err := m.db.Create(c).Error; err != nil {
			return err
		}
	}

	menu := []catalog.Product{
		{
			Name: "Hawaiana", Description: "Jamón y piña", CategoryID: pizzas.ID, Combinable: true, IsActive: true,
			Variants: []catalog.Variant{
				{Size: "chica", Price: 9900, IsActive: true},
				{Size: "mediana", Price: 14000, IsActive: true},
				{Size: "grande", Price: 18900, IsActive: true},
			},
		},
		{
			Name: "Pepperoni", Description: "Pepperoni y queso extra", CategoryID: pizzas.ID, Combinable: true, IsActive: true,
			Variants: []catalog.Variant{
				{Size: "chica", Price: 10900, IsActive: true},
				{Size: "mediana", Price: 15000, IsActive: true},
				{Size: "grande", Price: 19900, IsActive: true},
			},
		},
		{
			Name: "Mexicana", Description: "Chorizo, jalapeño y frijol", CategoryID: pizzas.ID, Combinable: true, IsActive: true,
			Variants: []catalog.Variant{
				{Size: "chica", Price: 11900, IsActive: true},
				{Size: "mediana", Price: 16000, IsActive: true},
				{Size: "grande", Price: 20900, IsActive: true},
			},
		},
		{
			Name: "Refresco 600ml", CategoryID: drinks.ID, IsActive: true,
			Variants: []catalog.Variant{
				{Size: "600ml", Price: 2500, IsActive: true},
			},
		},
	}
	for i := range menu {
		if err := m.db.Create(&menu[i]).Error; err != nil {
			return err
		}
		log.Printf("✅ Created product: %s", menu[i].Name)
	}

	modifiers := []catalog.Modifier{
		{Name: "Orilla rellena", Price: 3500, IsActive: true},
		{Name: "Queso extra", Price: 2000, IsActive: true},
		{Name: "Champiñones", Price: 1500, IsActive: true},
	}
	for i := range modifiers {
		if err := m.db.Create(&modifiers[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// seedStaff creates default register accounts for development
func (m *Migration) seedStaff() error {
	log.Println("👤 Seeding staff...")

	var existing staff.Staff
	result := m.db.Where("name = ?", "Gerente").First(&existing)
	if result.Error == nil {
		log.Printf("⏭️ Staff already exists with ID: %d", existing.ID)
		return nil
	}

	accounts := []struct {
		name string
		pin  string
		role staff.Role
	}{
		{"Gerente", "1984", staff.RoleManager},
		{"Caja", "2460", staff.RoleCashier},
		{"Cocina", "3571", staff.RoleKitchen},
	}

	for _, a := range accounts {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.pin), 10)
		if err != nil {
			return fmt.Errorf("failed to hash pin: %w", err)
		}

		member := staff.Staff{
			Name:     a.name,
			PINHash:  string(hashed),
			Role:     a.role,
			IsActive: true,
		}
		if err := m.db.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create staff %s: %w", a.name, err)
		}
		log.Printf("✅ Created staff: %s (pin: %s)", a.name, a.pin)
	}

	return nil
}
