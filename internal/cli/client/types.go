package client

// Book represents a catalog entry
type Book struct {
	ID          int64   `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Author      string  `json:"author" yaml:"author"`
	Year        int     `json:"year,omitempty" yaml:"year,omitempty"`
	Genres      string  `json:"genres,omitempty" yaml:"genres,omitempty"` // comma-separated
	CoverURL    string  `json:"coverUrl,omitempty" yaml:"coverUrl,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	AvgRating   float64 `json:"avgRating,omitempty" yaml:"avgRating,omitempty"`
	ReviewCount int64   `json:"reviewCount" yaml:"reviewCount"`
}

// BookPage is one page of a catalog search
type BookPage struct {
	Content       []Book `json:"content" yaml:"content"`
	TotalPages    int    `json:"totalPages" yaml:"totalPages"`
	TotalElements int64  `json:"totalElements" yaml:"totalElements"`
	Number        int    `json:"number" yaml:"number"`
	Size          int    `json:"size,omitempty" yaml:"size,omitempty"`
}

// HasNext reports whether a later page exists
func (p *BookPage) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// BookFilter narrows a catalog search. Zero-valued filters are omitted.
type BookFilter struct {
	Title  string
	Author string
	Genre  string
	Year   int `validate:"omitempty,min=1,max=9999"`
	Page   int `validate:"min=0"`
	Size   int `validate:"min=1,max=100"`
}

// DefaultPageSize matches the web client's grid
const DefaultPageSize = 12

// Review is a user's rating and text for a book. CreatedAt is passed through
// as the server formats it.
type Review struct {
	ID        int64   `json:"id" yaml:"id"`
	Rating    float64 `json:"rating" yaml:"rating"`
	Text      string  `json:"text" yaml:"text"`
	UserName  string  `json:"userName,omitempty" yaml:"userName,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Book      *Book   `json:"book,omitempty" yaml:"book,omitempty"`
}

// ReviewInput is the body of a create-or-update review call
type ReviewInput struct {
	Text   string `json:"text" validate:"max=5000"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// Favourite links the current user to a book
type Favourite struct {
	ID        int64  `json:"id" yaml:"id"`
	Book      Book   `json:"book" yaml:"book"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// AIRecommendation is a suggested title that may not be in the catalog
type AIRecommendation struct {
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
}

// ImportResult is the answer of a catalog import
type ImportResult struct {
	Imported int `json:"imported" yaml:"imported"`
}
