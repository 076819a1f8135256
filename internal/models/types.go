package models

import "time"

// Category is a closed enumeration of listing categories. Values outside
// this set are treated as CategoryUnknown by the impact calculator.
type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryElectronics Category = "electronics"
	CategoryFurniture   Category = "furniture"
	CategoryBooks       Category = "books"
	CategorySports      Category = "sports"
	CategoryAccessories Category = "accessories"
	CategoryHome        Category = "home"
	CategoryToys        Category = "toys"
	CategoryUnknown     Category = "unknown"
)

// Condition describes the wear state of a listed item.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
)

// ProductStatus is the lifecycle state of a listing. A product starts
// available and moves to sold at most once, only through a purchase.
// Reserved is a defined state but the purchase protocol never produces it.
type ProductStatus string

const (
	StatusAvailable ProductStatus = "available"
	StatusReserved  ProductStatus = "reserved"
	StatusSold      ProductStatus = "sold"
)

// EcoImpact is the estimated environmental savings attributed to a listing
// or a completed purchase. All fields are non-negative.
type EcoImpact struct {
	CO2Saved    float64 `json:"co2Saved"`    // kg
	WaterSaved  float64 `json:"waterSaved"`  // liters
	EnergySaved float64 `json:"energySaved"` // kWh
}

// Add returns the field-wise sum of two impacts.
func (e EcoImpact) Add(other EcoImpact) EcoImpact {
	return EcoImpact{
		CO2Saved:    e.CO2Saved + other.CO2Saved,
		WaterSaved:  e.WaterSaved + other.WaterSaved,
		EnergySaved: e.EnergySaved + other.EnergySaved,
	}
}

// Product is a second-hand listing in the catalog.
type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	Condition   Condition     `json:"condition"`
	Price       float64       `json:"price"`
	Image       string        `json:"image"`
	SellerID    string        `json:"sellerId"`
	SellerName  string        `json:"sellerName"`
	EcoImpact   EcoImpact     `json:"ecoImpact"`
	CreatedAt   time.Time     `json:"createdAt"`
	Status      ProductStatus `json:"status"`
}

// ProductDraft is the input to a listing submission. ID, timestamp, status
// and impact are assigned by the catalog on insert.
type ProductDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Condition   Condition `json:"condition"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
}

// Transaction is the immutable record of a completed purchase. It carries
// its own copy of the impact data so it stays valid even if the product is
// later removed by an external process.
type Transaction struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"productId"`
	BuyerID            string    `json:"buyerId"`
	SellerID           string    `json:"sellerId"`
	EcoCertificateHash string    `json:"ecoCertificateHash"`
	CompletedAt        time.Time `json:"completedAt"`
	EcoImpact          EcoImpact `json:"ecoImpact"`
}

// UserAccount holds the gamification state of a user. EcoPoints and every
// field of TotalImpact are monotonically non-decreasing; Badges are unique
// labels in insertion order and are never revoked.
type UserAccount struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	EcoPoints   int       `json:"ecoPoints"`
	Badges      []string  `json:"badges"`
	TotalImpact EcoImpact `json:"totalImpact"`
}

// HasBadge reports whether the account already holds the given badge.
func (u *UserAccount) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// Level is the progression state derived from eco points. It is never
// stored; see the rewards engine for the derivation.
type Level struct {
	Level               int `json:"level"`
	ProgressToNextLevel int `json:"progressToNextLevel"`
	PointsToNextLevel   int `json:"pointsToNextLevel"`
}

// SortKey selects the ordering of a catalog query result.
type SortKey string

const (
	SortNewest        SortKey = "newest"
	SortPriceAsc      SortKey = "price-asc"
	SortPriceDesc     SortKey = "price-desc"
	SortEcoImpactDesc SortKey = "eco-impact-desc"
)

// CatalogQuery is the filter and ordering for a marketplace search.
// Category and Condition match exactly; empty or "all" matches everything.
// MaxPrice <= 0 means no upper bound. Only available products are returned.
type CatalogQuery struct {
	Search    string
	Category  Category
	Condition Condition
	MinPrice  float64
	MaxPrice  float64
	Sort      SortKey
}

// UserSnapshot is the read-only view of a user consumed by the leaderboard.
type UserSnapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	EcoPoints   int       `json:"ecoPoints"`
	Badges      []string  `json:"badges"`
	TotalImpact EcoImpact `json:"totalImpact"`
}

// RankedUser is a snapshot with its dense leaderboard rank (1..N).
type RankedUser struct {
	UserSnapshot
	Rank int `json:"rank"`
}
