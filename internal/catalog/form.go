package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var imageURLPattern = regexp.MustCompile(`^https?://.+`)

// Form is the product editor payload. Price is a pointer so a missing
// price can be told apart from a free product.
type Form struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
}

type ValidationError struct {
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("product form: %s", strings.Join(parts, "; "))
}

func (f Form) Validate() error {
	var ve ValidationError

	required := []struct {
		name  string
		value string
	}{
		{"title", f.Title},
		{"description", f.Description},
		{"category", f.Category},
		{"image", f.Image},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			ve.Missing = append(ve.Missing, r.name)
		}
	}
	if f.Price == nil {
		ve.Missing = append(ve.Missing, "price")
	} else if *f.Price < 0 {
		ve.Invalid = append(ve.Invalid, "price")
	}
	if f.Image != "" && !imageURLPattern.MatchString(f.Image) {
		ve.Invalid = append(ve.Invalid, "image")
	}

	if len(ve.Missing) == 0 && len(ve.Invalid) == 0 {
		return nil
	}
	return &ve
}

// Draft converts a validated form into a creation payload with a zero
// rating.
func (f Form) Draft() Draft {
	d := Draft{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Image:       f.Image,
	}
	if f.Price != nil {
		d.Price = *f.Price
	}
	return d
}

// Patch converts a validated form into an update payload carrying every
// form field.
func (f Form) Patch() Patch {
	title, description, category, image := f.Title, f.Description, f.Category, f.Image
	return Patch{
		Title:       &title,
		Price:       f.Price,
		Description: &description,
		Category:    &category,
		Image:       &image,
	}
}
