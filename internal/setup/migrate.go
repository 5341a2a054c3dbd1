package setup

import (
	"strconv"
	"strings"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// MigrateSnapshot normalizes legacy snapshot shapes in place, once per
// load. It is idempotent: already-migrated data is detected as current and
// passes through unchanged. Returns true when anything was rewritten.
func MigrateSnapshot(data *models.WizardData) bool {
	changed := migrateLegacyClasses(data)
	if migrateLegacyDepartments(data) {
		changed = true
	}
	return changed
}

// isLegacyClassShape detects the old flat class representation by checking
// whether the first entry carries a string level or sections field.
func isLegacyClassShape(classes []models.ClassRow) bool {
	if len(classes) == 0 {
		return false
	}
	return classes[0].LegacyLevel != "" || classes[0].LegacySections != ""
}

// migrateLegacyClasses converts flat {name, level, sections} rows into
// ClassRow plus one SectionRow per comma-separated token. Ids are freshly
// allocated; empty tokens are dropped but duplicate names within one row
// are kept. Non-legacy data passes through with any separately stored
// sections applied as-is.
func migrateLegacyClasses(data *models.WizardData) bool {
	if !isLegacyClassShape(data.Classes) {
		return false
	}

	var (
		classes    []models.ClassRow
		sections   []models.SectionRow
		sectionSeq int
	)
	for i, legacy := range data.Classes {
		class := models.ClassRow{
			ID:        "class-" + strconv.Itoa(i+1),
			Name:      legacy.Name,
			SortOrder: i + 1,
			Status:    models.RowStatusActive,
		}
		classes = append(classes, class)

		order := 0
		for _, token := range strings.Split(legacy.LegacySections, ",") {
			name := strings.TrimSpace(token)
			if name == "" {
				continue
			}
			sectionSeq++
			order++
			sections = append(sections, models.SectionRow{
				ID:        "section-" + strconv.Itoa(sectionSeq),
				ClassID:   class.ID,
				Name:      name,
				Status:    models.RowStatusActive,
				SortOrder: order,
			})
		}
	}

	data.Classes = classes
	data.Sections = sections
	return true
}

// migrateLegacyDepartments lifts a legacy flat department list into root
// Department org units when no org units are present.
func migrateLegacyDepartments(data *models.WizardData) bool {
	if len(data.OrgUnits) > 0 || len(data.Departments) == 0 {
		return false
	}

	seq := 0
	for _, name := range data.Departments {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		seq++
		data.OrgUnits = append(data.OrgUnits, models.OrgUnit{
			ID:     "unit-" + strconv.Itoa(seq),
			Name:   trimmed,
			Type:   models.OrgUnitDepartment,
			Status: models.OrgUnitActive,
		})
	}
	data.Departments = nil
	return seq > 0
}
