package engine

import (
	"sort"

	"github.com/kofiadu/staffsync/internal/concept"
	"github.com/kofiadu/staffsync/internal/entity"
	"github.com/kofiadu/staffsync/internal/workbook"
)

// DefaultPrimaryMinOverlap is the minimum number of employee concepts a
// sheet must carry before it qualifies as the primary sheet on column
// evidence alone. Guards against a small lookup sheet being misclassified
// as the employee roster. Empirically chosen; configurable.
const DefaultPrimaryMinOverlap = 5

// classifiedSheet is one sheet along with its matched columns and the
// entity kind it was classified as.
type classifiedSheet struct {
	sheet   workbook.Sheet
	columns []concept.NormalizedColumn
	spec    entity.Spec
	overlap int
	primary bool
}

// classifySheet matches every header against the concept catalog and
// resolves the sheet to an entity kind.
//
// A sheet whose name is a registered alias resolves to that kind outright;
// aliases are the only way to tell apart kinds with identical column shapes
// (emergency contacts and next of kin). Otherwise the employee kind claims
// the sheet when enough employee columns are present, and the remaining
// kinds compete on column overlap with ties breaking toward the earlier
// registration.
func (s *Service) classifySheet(sheet workbook.Sheet) classifiedSheet {
	columns := make([]concept.NormalizedColumn, len(sheet.Header))
	matched := make(map[concept.ID]bool)
	for i, header := range sheet.Header {
		columns[i] = s.matcher.Match(header)
		if columns[i].Matched {
			matched[columns[i].Concept] = true
		}
	}

	overlap := func(spec entity.Spec) int {
		n := 0
		for id := range matched {
			if spec.Expects(id) {
				n++
			}
		}
		return n
	}

	specs := entity.All()
	name := concept.Normalize(sheet.Name)
	for _, spec := range specs {
		for _, alias := range spec.SheetAliases {
			if name == alias {
				return classifiedSheet{
					sheet:   sheet,
					columns: columns,
					spec:    spec,
					overlap: overlap(spec),
					primary: spec.Kind == entity.Employee,
				}
			}
		}
	}

	employeeSpec, _ := entity.Get(entity.Employee)
	if eo := overlap(employeeSpec); eo >= s.cfg.PrimaryMinOverlap {
		return classifiedSheet{
			sheet:   sheet,
			columns: columns,
			spec:    employeeSpec,
			overlap: eo,
			primary: true,
		}
	}

	best := specs[0]
	bestOverlap := -1
	for _, spec := range specs {
		if spec.Kind == entity.Employee {
			continue
		}
		if o := overlap(spec); o > bestOverlap {
			best = spec
			bestOverlap = o
		}
	}
	return classifiedSheet{
		sheet:   sheet,
		columns: columns,
		spec:    best,
		overlap: bestOverlap,
	}
}

// schedule orders sheets for processing: primary candidates first, highest
// overlap leading, so the employee key map is fully populated before any
// dependent sheet is read. Non-primary sheets keep file order.
func schedule(sheets []classifiedSheet) []classifiedSheet {
	var primary, rest []classifiedSheet
	for _, cs := range sheets {
		if cs.primary {
			primary = append(primary, cs)
		} else {
			rest = append(rest, cs)
		}
	}
	sort.SliceStable(primary, func(i, j int) bool {
		return primary[i].overlap > primary[j].overlap
	})
	return append(primary, rest...)
}
