package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyshelf/studyshelf/internal/model"
)

// fakeEnts is an in-memory entitlement set for gating tests.
type fakeEnts struct {
	items    map[string]bool
	packages map[string]bool // classID + "/" + packageType
}

func (f *fakeEnts) IsItemPurchased(itemID string) bool { return f.items[itemID] }

func (f *fakeEnts) IsClassPackagePurchased(classID, packageType string) bool {
	return f.packages[classID+"/"+packageType] || f.packages[classID+"/"+model.PackageBundle]
}

func ents() *fakeEnts {
	return &fakeEnts{items: map[string]bool{}, packages: map[string]bool{}}
}

func TestUnlockedFreeBypassesPurchase(t *testing.T) {
	item := model.ContentItem{ID: "pdf-1", Type: model.TypePDF, ClassID: "class10", IsFree: true}
	assert.True(t, Unlocked(ents(), item))
}

func TestUnlockedByItemPurchase(t *testing.T) {
	e := ents()
	item := model.ContentItem{ID: "pdf-1", Type: model.TypePDF, ClassID: "class10", Price: 199}

	assert.False(t, Unlocked(e, item))
	e.items["pdf-1"] = true
	assert.True(t, Unlocked(e, item))
}

func TestUnlockedChecksBothIDFields(t *testing.T) {
	e := ents()
	e.items["legacy-7"] = true

	// Older records carry the identity only under contentId
	item := model.ContentItem{ContentID: "legacy-7", Type: model.TypePDF, ClassID: "class10", Price: 199}
	assert.True(t, Unlocked(e, item))
}

func TestUnlockedByClassPackage(t *testing.T) {
	e := ents()
	e.packages["class10/"+model.PackagePDFs] = true

	pdf := model.ContentItem{ID: "pdf-1", Type: model.TypePDF, ClassID: "class10", Price: 199}
	video := model.ContentItem{ID: "vid-1", Type: model.TypeVideo, ClassID: "class10", Price: 299}

	assert.True(t, Unlocked(e, pdf))
	assert.False(t, Unlocked(e, video), "pdfs package does not cover videos")

	other := model.ContentItem{ID: "pdf-2", Type: model.TypePDF, ClassID: "class12", Price: 199}
	assert.False(t, Unlocked(e, other), "package is scoped to its class")
}

func TestUnlockedByBundle(t *testing.T) {
	e := ents()
	e.packages["class10/"+model.PackageBundle] = true

	pdf := model.ContentItem{ID: "pdf-1", Type: model.TypePDF, ClassID: "class10", Price: 199}
	video := model.ContentItem{ID: "vid-1", Type: model.TypeVideo, ClassID: "class10", Price: 299}

	assert.True(t, Unlocked(e, pdf))
	assert.True(t, Unlocked(e, video))
}

func TestActionFor(t *testing.T) {
	e := ents()
	pdf := model.ContentItem{ID: "pdf-1", Type: model.TypePDF, ClassID: "class10", Price: 199}
	video := model.ContentItem{ID: "vid-1", Type: model.TypeVideo, ClassID: "class10", Price: 299}

	assert.Equal(t, ActionBuy, ActionFor(e, pdf))
	assert.Equal(t, ActionBuy, ActionFor(e, video))

	e.items["pdf-1"] = true
	e.items["vid-1"] = true
	assert.Equal(t, ActionDownload, ActionFor(e, pdf))
	assert.Equal(t, ActionWatch, ActionFor(e, video))

	// Free videos are watchable without any purchase or login
	free := model.ContentItem{ID: "vid-5", Type: model.TypeVideo, ClassID: "class10", IsFree: true}
	assert.Equal(t, ActionWatch, ActionFor(ents(), free))
}

func TestPreviewPages(t *testing.T) {
	assert.Equal(t, 5, PreviewPages(model.ContentItem{Type: model.TypePDF, Pages: 120}))
	assert.Equal(t, 12, PreviewPages(model.ContentItem{Type: model.TypePDF, Pages: 120, PreviewPages: 12}))
	assert.Equal(t, 120, PreviewPages(model.ContentItem{Type: model.TypePDF, Pages: 120, IsFree: true}))
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "FREE", Badge(model.ContentItem{IsFree: true, Price: 500}))
	assert.Equal(t, "₹249", Badge(model.ContentItem{Type: model.TypePDF, Price: 249}))
	assert.Equal(t, "₹199", Badge(model.ContentItem{Type: model.TypePDF}))
	assert.Equal(t, "₹299", Badge(model.ContentItem{Type: model.TypeVideo}))
}
