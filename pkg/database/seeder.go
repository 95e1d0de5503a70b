package database

import (
	"errors"
	"log"

	"buyback-pos/config"
	"buyback-pos/internal/models"
	"buyback-pos/internal/utils"

	"gorm.io/gorm"
)

// Migrate creates the operator tables.
func Migrate(db *gorm.DB) error {
	log.Println("Running migrations...")
	if err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.LoginHistory{},
		&models.AuditEntry{},
	); err != nil {
		return err
	}
	log.Println("Migrations completed successfully.")
	return nil
}

func SeedRolesAndAdmin(db *gorm.DB, defaults config.DefaultsConfig) error {
	// Seed Roles
	roles := []string{models.RoleAdmin, models.RoleManager, models.RoleInventory, models.RoleBiller}
	for _, r := range roles {
		var role models.Role
		if err := db.FirstOrCreate(&role, models.Role{Name: r}).Error; err != nil {
			log.Printf("Failed to seed role %s: %v", r, err)
		}
	}

	// Seed Admin User
	var adminRole models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var adminUser models.User
	err := db.Where("employee_id = ?", defaults.AdminEmployeeID).First(&adminUser).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if defaults.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, admin user not seeded.")
		return nil
	}

	hashedPassword, err := utils.HashPassword(defaults.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		EmployeeID:   defaults.AdminEmployeeID,
		Username:     "Shop Admin",
		PasswordHash: hashedPassword,
		RoleID:       adminRole.ID,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return err
	}
	log.Println("Admin user seeded successfully.")
	return nil
}
