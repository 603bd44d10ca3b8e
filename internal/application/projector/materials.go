package projector

import (
	"strings"

	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerMaterialsHandlers() {
	p.on("Materials", p.handleMaterialsSnapshot)
	p.on("MaterialCollected", p.handleMaterialCollected)
	p.on("MaterialDiscarded", p.handleMaterialDiscarded)
	p.on("MaterialTrade", p.handleMaterialTrade)
	p.on("Synthesis", p.handleSynthesis)
	p.on("TechnologyBroker", p.handleTechnologyBroker)
	p.on("ScientificResearch", p.handleScientificResearch)
}

// canonicalMaterial lower-cases a material name; the journal mixes
// "Iron" and "iron" freely.
func canonicalMaterial(name string) string {
	return strings.ToLower(name)
}

// normalizeCategory maps the journal's category spellings (including the
// localization tokens on some events) onto the three canonical names.
func normalizeCategory(raw string) string {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, "raw"):
		return state.CategoryRaw
	case strings.Contains(lowered, "manufactured"):
		return state.CategoryManufactured
	case strings.Contains(lowered, "encoded"):
		return state.CategoryEncoded
	}
	return ""
}

// handleMaterialsSnapshot replaces all three lists from the startup
// snapshot. The event carries no grades, so each entry gets the default
// grade and its cap.
func (p *Projector) handleMaterialsSnapshot(ev *journal.Event) []state.SliceName {
	parse := func(key, category string) []state.Material {
		raw := ev.List(key)
		out := make([]state.Material, 0, len(raw))
		for _, el := range raw {
			grade := 1
			if g := num(el["Grade"]); g >= 1 && g <= 5 {
				grade = g
			}
			mat := state.Material{
				Name:          canonicalMaterial(str(el["Name"])),
				LocalizedName: str(el["Name_Localised"]),
				Category:      category,
				Grade:         grade,
				Count:         num(el["Count"]),
				Maximum:       state.GradeCap(grade),
			}
			if mat.Count > mat.Maximum {
				mat.Count = mat.Maximum
			}
			out = append(out, mat)
		}
		return out
	}

	p.state.Materials = state.Materials{
		Raw:          parse("Raw", state.CategoryRaw),
		Manufactured: parse("Manufactured", state.CategoryManufactured),
		Encoded:      parse("Encoded", state.CategoryEncoded),
	}
	return []state.SliceName{state.SliceMaterials}
}

// handleMaterialCollected adds to the named category, capping the stored
// count at the material's maximum. The session counter records the full
// collected amount even when the store caps.
func (p *Projector) handleMaterialCollected(ev *journal.Event) []state.SliceName {
	count := int(ev.Int("Count"))
	p.addMaterial(normalizeCategory(ev.Str("Category")), ev.Str("Name"), ev.Str("Name_Localised"), count)
	p.state.Session.MaterialsCollected += count
	return []state.SliceName{state.SliceMaterials, state.SliceSession}
}

func (p *Projector) handleMaterialDiscarded(ev *journal.Event) []state.SliceName {
	p.subtractMaterial(normalizeCategory(ev.Str("Category")), ev.Str("Name"), int(ev.Int("Count")))
	return []state.SliceName{state.SliceMaterials}
}

func (p *Projector) handleMaterialTrade(ev *journal.Event) []state.SliceName {
	if paid := ev.Object("Paid"); paid != nil {
		p.subtractMaterial(normalizeCategory(str(paid["Category"])), str(paid["Material"]), num(paid["Quantity"]))
	}
	if received := ev.Object("Received"); received != nil {
		p.addMaterial(normalizeCategory(str(received["Category"])), str(received["Material"]), "", num(received["Quantity"]))
	}
	return []state.SliceName{state.SliceMaterials}
}

func (p *Projector) handleSynthesis(ev *journal.Event) []state.SliceName {
	p.subtractIngredients(ev.List("Materials"))
	return []state.SliceName{state.SliceMaterials}
}

func (p *Projector) handleTechnologyBroker(ev *journal.Event) []state.SliceName {
	p.subtractIngredients(ev.List("Materials"))
	return []state.SliceName{state.SliceMaterials}
}

func (p *Projector) handleScientificResearch(ev *journal.Event) []state.SliceName {
	p.subtractMaterial(normalizeCategory(ev.Str("Category")), ev.Str("Name"), int(ev.Int("Count")))
	return []state.SliceName{state.SliceMaterials}
}

// subtractIngredients consumes a list of {Name, Count[, Category]}
// entries, as carried by EngineerCraft, Synthesis and TechnologyBroker.
func (p *Projector) subtractIngredients(ingredients []map[string]any) {
	for _, ing := range ingredients {
		p.subtractMaterial(normalizeCategory(str(ing["Category"])), str(ing["Name"]), num(ing["Count"]))
	}
}

// addMaterial adds count to a material, creating the entry when the
// category is known and the material is new. Counts never exceed the
// grade cap.
func (p *Projector) addMaterial(category, name, localized string, count int) {
	canonical := canonicalMaterial(name)
	if canonical == "" || count <= 0 {
		return
	}

	if category == "" {
		// No category on the event: add to an existing entry wherever it
		// already lives.
		if mat := p.findMaterial(canonical); mat != nil {
			mat.Count = min(mat.Count+count, mat.Maximum)
			return
		}
		p.logger.Warn().Str("material", canonical).Msg("material add with no category and no existing entry")
		return
	}

	list := p.state.Materials.ByCategory(category)
	if list == nil {
		return
	}
	for i := range *list {
		if (*list)[i].Name == canonical {
			(*list)[i].Count = min((*list)[i].Count+count, (*list)[i].Maximum)
			return
		}
	}
	mat := state.Material{
		Name:          canonical,
		LocalizedName: localized,
		Category:      category,
		Grade:         1,
		Count:         count,
		Maximum:       state.GradeCap(1),
	}
	if mat.Count > mat.Maximum {
		mat.Count = mat.Maximum
	}
	*list = append(*list, mat)
}

// subtractMaterial removes count from a material, flooring at zero. With
// no category it searches Raw, Manufactured, Encoded in that order and
// takes the first match; a name found in more than one category is
// logged, since the search would silently prefer the first.
func (p *Projector) subtractMaterial(category, name string, count int) {
	canonical := canonicalMaterial(name)
	if canonical == "" || count <= 0 {
		return
	}

	if category != "" {
		list := p.state.Materials.ByCategory(category)
		if list == nil {
			return
		}
		for i := range *list {
			if (*list)[i].Name == canonical {
				(*list)[i].Count = max((*list)[i].Count-count, 0)
				return
			}
		}
		p.logger.Warn().
			Str("material", canonical).
			Str("category", category).
			Msg("material subtract found no matching entry")
		return
	}

	var matches []*state.Material
	for _, list := range []*[]state.Material{
		&p.state.Materials.Raw,
		&p.state.Materials.Manufactured,
		&p.state.Materials.Encoded,
	} {
		for i := range *list {
			if (*list)[i].Name == canonical {
				matches = append(matches, &(*list)[i])
			}
		}
	}

	switch len(matches) {
	case 0:
		p.logger.Warn().Str("material", canonical).Msg("material subtract found no matching entry")
	case 1:
	default:
		p.logger.Warn().
			Str("material", canonical).
			Int("categories", len(matches)).
			Msg("material name present in multiple categories, subtracting from first")
	}
	if len(matches) > 0 {
		matches[0].Count = max(matches[0].Count-count, 0)
	}
}

// findMaterial locates a material in any category, first match wins.
func (p *Projector) findMaterial(canonical string) *state.Material {
	for _, list := range []*[]state.Material{
		&p.state.Materials.Raw,
		&p.state.Materials.Manufactured,
		&p.state.Materials.Encoded,
	} {
		for i := range *list {
			if (*list)[i].Name == canonical {
				return &(*list)[i]
			}
		}
	}
	return nil
}
