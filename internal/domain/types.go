package domain

import "time"

type ListingType string

const (
	TypeSale ListingType = "sale"
	TypeRent ListingType = "rent"
)

func (t ListingType) Valid() bool {
	return t == TypeSale || t == TypeRent
}

type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusSold      ListingStatus = "sold"
	StatusRented    ListingStatus = "rented"
)

func (s ListingStatus) Valid() bool {
	return s == StatusAvailable || s == StatusSold || s == StatusRented
}

// Listing is one property record in the catalog. Everything but Status and
// Featured is immutable after creation.
type Listing struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Location    string        `json:"location"`
	Description string        `json:"description"`
	Price       string        `json:"price"`
	Beds        int           `json:"beds"`
	Baths       int           `json:"baths"`
	Sqft        int           `json:"sqft"`
	Image       string        `json:"image"`
	Images      []string      `json:"images"`
	Type        ListingType   `json:"type"`
	Status      ListingStatus `json:"status"`
	Featured    bool          `json:"featured"`
	Category    string        `json:"category"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Category groups listings by name. Listings reference categories by name,
// not ID, so deleting a category leaves referencing listings untouched.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Position int    `json:"-"`
}

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultHeroImage is the homepage banner shown until an admin replaces it.
const DefaultHeroImage = "https://images.unsplash.com/photo-1600585154340-be6161a56a0c?auto=format&fit=crop&q=100&w=1600"

// MaxListingImages caps the photo carousel per listing.
const MaxListingImages = 5
