// Package diplomas holds the diploma entity, its PostgreSQL repository, and
// the service orchestrating authentication, file storage, and persistence.
package diplomas

import "time"

// Category is the closed classification tag on a diploma.
type Category string

const (
	CategoryFitness  Category = "fitness"
	CategoryMedical  Category = "medical"
	CategoryMilitary Category = "military"
	CategoryTech     Category = "tech"
	CategoryBusiness Category = "business"
)

// Categories lists the valid values in their public display order; list
// queries rank by position in this set.
var Categories = []Category{
	CategoryFitness,
	CategoryMedical,
	CategoryMilitary,
	CategoryTech,
	CategoryBusiness,
}

// ValidCategory reports whether v is a member of the closed enumeration.
func ValidCategory(v string) bool {
	for _, c := range Categories {
		if string(c) == v {
			return true
		}
	}
	return false
}

// Diploma is one certification record. Titles and institutions carry an
// optional French variant; Year is free text (ranges and "Classified" are
// legitimate values). PdfURL is nil when no file was attached.
type Diploma struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	TitleFr       *string   `json:"title_fr"`
	Institution   string    `json:"institution"`
	InstitutionFr *string   `json:"institution_fr"`
	Year          string    `json:"year"`
	Category      Category  `json:"category"`
	PdfURL        *string   `json:"pdf_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput carries the fields of a new diploma. Business validation
// (required fields, category membership) happens in the service before the
// repository sees it.
type CreateInput struct {
	Title         string
	TitleFr       *string
	Institution   string
	InstitutionFr *string
	Year          string
	Category      string
	PdfURL        *string
}

// UpdateInput is a partial update: nil fields keep their stored values.
type UpdateInput struct {
	Title         *string
	TitleFr       *string
	Institution   *string
	InstitutionFr *string
	Year          *string
	Category      *string
	PdfURL        *string
}
