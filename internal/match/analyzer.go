package match

import (
	"fmt"
	"strings"

	"mapgen/internal/diagnostic"
	"mapgen/internal/plan"
)

// Analyze computes the diagnostics of a model in destination property order.
// It is a pure function of the model.
func Analyze(m *plan.MappingModel) (missing, incompatible []diagnostic.Diagnostic) {
	for _, dp := range m.DestProps {
		loc := m.LocationOf(dp)

		sp, ok := m.SourceFor(dp.Name)
		if !ok {
			d := diagnostic.New(loc, diagnostic.MissingProperty{
				DestProperty: dp.Name,
				DestType:     m.Dest.Name(),
				SrcType:      m.Src.Name(),
			})

			if s, ok := suggestName(dp.Name, m); ok {
				d = d.WithSuggestions(fmt.Sprintf("did you mean '%s'?", s))
			}

			missing = append(missing, d)

			continue
		}

		if Classify(dp.Type, sp.Type).Compatible() {
			continue
		}

		incompatible = append(incompatible, diagnostic.New(loc, diagnostic.IncompatibleType{
			SrcType:          m.Src.Name(),
			SrcProperty:      sp.Name,
			SrcPropertyType:  sp.Type.Display,
			DestType:         m.Dest.Name(),
			DestProperty:     dp.Name,
			DestPropertyType: dp.Type.Display,
		}))
	}

	return missing, incompatible
}

// suggestName finds the closest source property name to name. Ties keep the
// first source property in declaration order.
func suggestName(name string, m *plan.MappingModel) (string, bool) {
	best, bestDist := "", -1

	for _, sp := range m.SrcProps {
		dist := Levenshtein(name, sp.Name)
		if strings.EqualFold(name, sp.Name) {
			dist = 0
		}

		if dist > maxSuggestDistance(name) {
			continue
		}

		if bestDist < 0 || dist < bestDist {
			best, bestDist = sp.Name, dist
		}
	}

	return best, bestDist >= 0
}

func maxSuggestDistance(name string) int {
	return max(1, len(name)/3)
}
