package playground

import (
	"gorm.io/gorm"

	"github.com/BarberLink/BL-Backend/internal/db"
)

// ActiveStyles returns the curated hairstyle catalog in display order.
func ActiveStyles() ([]Style, error) {
	var styles []Style
	err := db.DB.Where("is_active = ?", true).Order("sort_order, id").Find(&styles).Error
	return styles, err
}

// ActiveBeardStyles returns the curated beard catalog in display order.
func ActiveBeardStyles() ([]BeardStyle, error) {
	var styles []BeardStyle
	err := db.DB.Where("is_active = ?", true).Order("sort_order, id").Find(&styles).Error
	return styles, err
}

// ActiveColorOptions returns active colors applicable to the given scope
// (scope-specific plus "both"-scoped), in display order.
func ActiveColorOptions(scope string) ([]ColorOption, error) {
	var colors []ColorOption
	err := activeColorQuery(db.DB, scope).Order("sort_order, id").Find(&colors).Error
	return colors, err
}

func activeColorQuery(tx *gorm.DB, scope string) *gorm.DB {
	return tx.Model(&ColorOption{}).
		Where("is_active = ?", true).
		Where("scope = ? OR scope = ?", scope, ColorScopeBoth)
}

// findActiveStyle resolves a curated style id against the active catalog.
func findActiveStyle(id uint) *Style {
	var style Style
	if err := db.DB.First(&style, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil
	}
	return &style
}

func findActiveBeardStyle(id uint) *BeardStyle {
	var style BeardStyle
	if err := db.DB.First(&style, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil
	}
	return &style
}

// findActiveColor resolves a color id against the active catalog for a scope.
func findActiveColor(id uint, scope string) *ColorOption {
	var color ColorOption
	err := activeColorQuery(db.DB, scope).Where("id = ?", id).First(&color).Error
	if err != nil {
		return nil
	}
	return &color
}
