package state

// Material categories as the game names them.
const (
	CategoryRaw          = "Raw"
	CategoryManufactured = "Manufactured"
	CategoryEncoded      = "Encoded"
)

// gradeCaps maps material grade to its storage maximum.
var gradeCaps = map[int]int{
	1: 300,
	2: 250,
	3: 200,
	4: 150,
	5: 100,
}

// GradeCap returns the storage maximum for a material grade. Unknown
// grades fall back to the grade-1 cap.
func GradeCap(grade int) int {
	if cap, ok := gradeCaps[grade]; ok {
		return cap
	}
	return gradeCaps[1]
}

// Material is one engineering material. Name is canonical lower-case;
// count stays within [0, Maximum] and Maximum is fixed by grade.
type Material struct {
	Name          string `json:"name"`
	LocalizedName string `json:"localizedName,omitempty"`
	Category      string `json:"category"`
	Grade         int    `json:"grade"`
	Count         int    `json:"count"`
	Maximum       int    `json:"maximum"`
}

// Materials is the three ordered material sets.
type Materials struct {
	Raw          []Material `json:"raw"`
	Manufactured []Material `json:"manufactured"`
	Encoded      []Material `json:"encoded"`
}

// ByCategory returns a pointer to the list for the given category, or nil
// for an unknown category.
func (m *Materials) ByCategory(category string) *[]Material {
	switch category {
	case CategoryRaw:
		return &m.Raw
	case CategoryManufactured:
		return &m.Manufactured
	case CategoryEncoded:
		return &m.Encoded
	}
	return nil
}

// Clone returns a deep copy of the materials slice.
func (m Materials) Clone() Materials {
	return Materials{
		Raw:          append([]Material(nil), m.Raw...),
		Manufactured: append([]Material(nil), m.Manufactured...),
		Encoded:      append([]Material(nil), m.Encoded...),
	}
}
