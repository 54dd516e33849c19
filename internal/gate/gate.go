// Package gate decides what a view may offer for a catalog item:
// preview/buy for locked content, download/watch for owned or free
// content. All functions are pure over the entitlement set.
package gate

import (
	"fmt"

	"github.com/studyshelf/studyshelf/internal/model"
)

// Entitlements is the read-only query surface of the purchase set.
type Entitlements interface {
	IsItemPurchased(itemID string) bool
	IsClassPackagePurchased(classID, packageType string) bool
}

// PackageForType maps a content type to the class package that covers it.
func PackageForType(contentType string) string {
	if contentType == model.TypeVideo {
		return model.PackageVideos
	}
	return model.PackagePDFs
}

// Unlocked reports whether the item's full content is accessible.
// Free items bypass purchase checks. Identity may arrive under either
// id field, so both are checked.
func Unlocked(ents Entitlements, item model.ContentItem) bool {
	if item.IsFree {
		return true
	}
	if ents.IsItemPurchased(item.ID) || ents.IsItemPurchased(item.ContentID) {
		return true
	}
	return ents.IsClassPackagePurchased(item.ClassID, PackageForType(item.Type))
}

// Action is the primary affordance for an item.
type Action int

const (
	ActionBuy Action = iota
	ActionDownload
	ActionWatch
)

// ActionFor picks the primary affordance for an item.
func ActionFor(ents Entitlements, item model.ContentItem) Action {
	if !Unlocked(ents, item) {
		return ActionBuy
	}
	if item.Type == model.TypeVideo {
		return ActionWatch
	}
	return ActionDownload
}

// PreviewPages returns how many pages of a PDF are visible without a
// purchase: everything when free, an explicit override when the record
// carries one, otherwise the default of 5.
func PreviewPages(item model.ContentItem) int {
	if item.IsFree {
		return item.Pages
	}
	if item.PreviewPages > 0 {
		return item.PreviewPages
	}
	return model.DefaultPreviewPages
}

// Badge returns the price badge text for a card.
func Badge(item model.ContentItem) string {
	if item.IsFree {
		return "FREE"
	}
	price := item.Price
	if price == 0 {
		if item.Type == model.TypeVideo {
			price = model.DefaultVideoPrice
		} else {
			price = model.DefaultPDFPrice
		}
	}
	return fmt.Sprintf("₹%d", price)
}
