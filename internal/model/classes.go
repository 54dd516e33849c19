package model

// Class is a selectable class/exam track.
type Class struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HasBoards   bool   `json:"hasBoards"`
}

// Board is a syllabus board, applicable to school classes only.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Classes lists the supported class tracks. NEET has no board split.
var Classes = []Class{
	{ID: "class10", Name: "Class 10", Description: "Board Exam Preparation", HasBoards: true},
	{ID: "class11", Name: "Class 11", Description: "Foundation Building", HasBoards: true},
	{ID: "class12", Name: "Class 12", Description: "Board + Entrance Ready", HasBoards: true},
	{ID: "neet", Name: "NEET", Description: "Medical Entrance", HasBoards: false},
}

// Boards lists the supported syllabus boards.
var Boards = []Board{
	{ID: "state", Name: "State Board"},
	{ID: "cbse", Name: "CBSE"},
}

// HardCopyPrice holds printed-set pricing for a class.
type HardCopyPrice struct {
	Price    int `json:"price"`
	Shipping int `json:"shipping"`
}

// HardCopyPricing is the per-class printed material pricing.
var HardCopyPricing = map[string]HardCopyPrice{
	"class10": {Price: 2500, Shipping: 100},
	"class11": {Price: 3000, Shipping: 100},
	"class12": {Price: 3500, Shipping: 100},
	"neet":    {Price: 4000, Shipping: 100},
}

// ClassName resolves a class id to its display name.
func ClassName(id string) string {
	for _, c := range Classes {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}
