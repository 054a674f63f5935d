package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/playground"
)

// Seeds the playground catalog (styles, beard styles, color options) from a
// YAML fixture. Existing entries are matched by name and updated in place so
// the seeder is safe to re-run.

var catalogPath = flag.String("catalog", "seed/catalog.yaml", "Path to the catalog fixture")

type catalogFixture struct {
	Styles []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		ImagePath   string `yaml:"image_path"`
		SortOrder   int    `yaml:"sort_order"`
	} `yaml:"styles"`
	BeardStyles []struct {
		Name      string `yaml:"name"`
		ImagePath string `yaml:"image_path"`
		SortOrder int    `yaml:"sort_order"`
	} `yaml:"beard_styles"`
	ColorOptions []struct {
		Name      string `yaml:"name"`
		HexCode   string `yaml:"hex_code"`
		Scope     string `yaml:"scope"`
		SortOrder int    `yaml:"sort_order"`
	} `yaml:"color_options"`
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	raw, err := os.ReadFile(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to read catalog fixture: %v", err)
	}

	var fixture catalogFixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		log.Fatalf("Failed to parse catalog fixture: %v", err)
	}

	db.Connect()
	playground.Init()

	for _, entry := range fixture.Styles {
		style := playground.Style{
			Name:        entry.Name,
			Description: entry.Description,
			ImagePath:   entry.ImagePath,
			IsActive:    true,
			SortOrder:   entry.SortOrder,
		}
		var existing playground.Style
		if err := db.DB.First(&existing, "name = ?", entry.Name).Error; err == nil {
			style.ID = existing.ID
		}
		if err := db.DB.Save(&style).Error; err != nil {
			log.Fatalf("Failed to seed style %q: %v", entry.Name, err)
		}
	}

	for _, entry := range fixture.BeardStyles {
		style := playground.BeardStyle{
			Name:      entry.Name,
			ImagePath: entry.ImagePath,
			IsActive:  true,
			SortOrder: entry.SortOrder,
		}
		var existing playground.BeardStyle
		if err := db.DB.First(&existing, "name = ?", entry.Name).Error; err == nil {
			style.ID = existing.ID
		}
		if err := db.DB.Save(&style).Error; err != nil {
			log.Fatalf("Failed to seed beard style %q: %v", entry.Name, err)
		}
	}

	for _, entry := range fixture.ColorOptions {
		scope := entry.Scope
		if scope == "" {
			scope = playground.ColorScopeBoth
		}
		option := playground.ColorOption{
			Name:      entry.Name,
			HexCode:   entry.HexCode,
			Scope:     scope,
			IsActive:  true,
			SortOrder: entry.SortOrder,
		}
		var existing playground.ColorOption
		if err := db.DB.First(&existing, "name = ?", entry.Name).Error; err == nil {
			option.ID = existing.ID
		}
		if err := db.DB.Save(&option).Error; err != nil {
			log.Fatalf("Failed to seed color option %q: %v", entry.Name, err)
		}
	}

	fmt.Printf("Seeded %d styles, %d beard styles, %d color options\n",
		len(fixture.Styles), len(fixture.BeardStyles), len(fixture.ColorOptions))
}
