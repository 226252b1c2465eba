package catalog

// Product is a catalog item as served by the upstream API. Values are
// replaced wholesale, never patched in place.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Draft is a product that has not been assigned an id yet. Rating stays at
// its zero value until the server echoes a real one.
type Draft struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

// Patch carries the fields of an update. Nil fields are left out of the
// request body.
type Patch struct {
	Title       *string  `json:"title,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Rating      *Rating  `json:"rating,omitempty"`
}

func (d Draft) Product(id int) Product {
	return Product{
		ID:          id,
		Title:       d.Title,
		Price:       d.Price,
		Description: d.Description,
		Category:    d.Category,
		Image:       d.Image,
		Rating:      d.Rating,
	}
}

// Apply returns p with every non-nil field of the patch copied over it.
func (pt Patch) Apply(p Product) Product {
	if pt.Title != nil {
		p.Title = *pt.Title
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Image != nil {
		p.Image = *pt.Image
	}
	if pt.Rating != nil {
		p.Rating = *pt.Rating
	}
	return p
}
