package model

import "time"

// Content types
const (
	TypePDF   = "pdf"
	TypeVideo = "video"
)

// Package types for class-level plans
const (
	PackagePDFs   = "pdfs"
	PackageVideos = "videos"
	PackageBundle = "bundle"
)

// Single-item plan types
const (
	PlanSinglePDF   = "single-pdf"
	PlanSingleVideo = "single-video"
	PlanHardCopy    = "hardcopy"
)

// Fallback prices when a catalog record carries no price
const (
	DefaultPDFPrice   = 199
	DefaultVideoPrice = 299
)

// DefaultPreviewPages is how many pages of an unpurchased PDF are visible
const DefaultPreviewPages = 5

// ContentItem is a catalog record (PDF material or video course).
// The backend emits the identity under "_id"; some older records use
// "contentId" instead. Key() normalizes the two.
type ContentItem struct {
	ID           string `json:"_id"`
	ContentID    string `json:"contentId,omitempty"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Subject      string `json:"subject"`
	ClassID      string `json:"classId"`
	Board        string `json:"board,omitempty"`
	Price        int    `json:"price"`
	IsFree       bool   `json:"isFree"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	FileURL      string `json:"fileUrl,omitempty"`
	PreviewPages int    `json:"previewPages,omitempty"`
	Pages        int    `json:"pages,omitempty"`
	Chapters     int    `json:"chapters,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Lessons      int    `json:"lessons,omitempty"`
	Instructor   string `json:"instructor,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Key returns the canonical identity of the item.
func (c ContentItem) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.ContentID
}

// UserProfile is the account profile as returned by the backend.
// Treated as a value: replaced wholesale on update, never patched.
type UserProfile struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	ClassID string `json:"classId,omitempty"`
	Board   string `json:"board,omitempty"`
}

// Plan is the in-flight purchase candidate. It lives for exactly one
// purchase flow: created when a buy action starts, discarded when the
// modal closes or the order completes.
type Plan struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // single-pdf, single-video, pdfs, videos, bundle, hardcopy
	Price   int    `json:"price"`
	ClassID string `json:"classId,omitempty"`
}

// Purchase is a durable entitlement record: either an item purchase
// (ItemID set) or a class package purchase (ClassID + PackageType set).
type Purchase struct {
	ItemID      string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	ClassID     string    `json:"classId,omitempty"`
	PackageType string    `json:"packageType,omitempty"`
	Price       int       `json:"price,omitempty"`
	OrderID     string    `json:"orderId"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

// OrderItem is a line inside an order.
type OrderItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Order is a row from the remote order ledger.
type Order struct {
	ID            string      `json:"orderId"`
	OrderType     string      `json:"orderType"` // digital or hardcopy
	Items         []OrderItem `json:"items"`
	ClassID       string      `json:"classId,omitempty"`
	PackageType   string      `json:"packageType,omitempty"`
	Amount        int         `json:"amount"`
	PaymentMethod string      `json:"paymentMethod"`
	PaymentStatus string      `json:"paymentStatus"`
	OrderStatus   string      `json:"orderStatus"`
	TrackingID    string      `json:"trackingId,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Completed reports whether the order grants entitlements.
func (o Order) Completed() bool {
	return o.OrderStatus == "completed" && o.PaymentStatus == "completed"
}

// Notification is a message pushed to the user's account.
type Notification struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Address is a hard-copy delivery address.
type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}
