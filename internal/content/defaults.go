package content

import (
	"github.com/maisonnoor/boutique-backend/pkg/db/models"
	"github.com/maisonnoor/boutique-backend/pkg/enums"
	"github.com/maisonnoor/boutique-backend/pkg/i18n"
)

// defaultContent is the bundled homepage document used to seed the singleton
// row the first time anything reads it. Editors overwrite it section by
// section from the console.
func defaultContent() models.HomepageContent {
	return models.HomepageContent{
		ID: models.HomepageContentID,
		Hero: models.HeroBanner{
			Title: i18n.Text{
				En: "The Art of Fragrance",
				Ar: "فن العطور",
			},
			Subtitle: i18n.Text{
				En: "Discover rare compositions from the world's great houses",
				Ar: "اكتشف تركيبات نادرة من أعرق دور العطور",
			},
			Image:    "/media/content/hero-default.jpg",
			CTALabel: i18n.Text{En: "Shop the collection", Ar: "تسوق المجموعة"},
			CTALink:  "/products",
		},
		FeaturedBrands: models.BrandTiles{
			{
				Name:  i18n.Text{En: "Maison Noor", Ar: "ميزون نور"},
				Image: "/media/content/brand-maison-noor.jpg",
				Link:  "/products?brand=Maison+Noor",
			},
			{
				Name:  i18n.Text{En: "Atelier Zahra", Ar: "أتيليه زهرة"},
				Image: "/media/content/brand-atelier-zahra.jpg",
				Link:  "/products?brand=Atelier+Zahra",
			},
		},
		Offers:        models.EmbeddedOffers{},
		MarqueeBrands: models.MarqueeBrands{},
		Settings: models.ContentSettings{
			DarkMode:        false,
			DefaultLanguage: enums.LanguageEnglish,
		},
	}
}
