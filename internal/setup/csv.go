package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// The CSV format here is deliberately naive: a header row of field names,
// comma-delimited values, no quoting or escaping. A literal comma inside a
// value is not representable. Multi-valued fields join on ";".

var userCSVHeader = []string{"name", "email", "role", "title", "phone", "schools", "status"}

var classCSVHeader = []string{"name", "code", "schools", "sections", "status"}

// ImportReport summarizes one bulk import pass. Row numbers are 1-based
// and count data rows, not the header.
type ImportReport struct {
	Created int
	Errors  []ImportRowError
}

// ImportRowError attaches a row number to the failure that skipped it.
type ImportRowError struct {
	Row int
	Err error
}

func (e ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// marshalCSV writes a header plus records, one line per record. Values are
// emitted verbatim.
func marshalCSV(header []string, records [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for _, rec := range records {
		b.WriteString(strings.Join(rec, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// parseCSV splits a document into header and records. Blank lines are
// skipped; short rows are padded with empty fields and long rows truncated
// to the header width.
func parseCSV(doc string) (header []string, records [][]string, err error) {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if header == nil {
			header = fields
			continue
		}
		if len(fields) < len(header) {
			padded := make([]string, len(header))
			copy(padded, fields)
			fields = padded
		} else if len(fields) > len(header) {
			fields = fields[:len(header)]
		}
		records = append(records, fields)
	}
	if header == nil {
		return nil, nil, fmt.Errorf("empty document")
	}
	return header, records, nil
}

// columnIndex maps wanted column names to their positions in the parsed
// header, -1 when absent. Matching is case-insensitive.
func columnIndex(header, wanted []string) []int {
	idx := make([]int, len(wanted))
	for i, want := range wanted {
		idx[i] = -1
		for j, col := range header {
			if strings.EqualFold(col, want) {
				idx[i] = j
				break
			}
		}
	}
	return idx
}

func field(record []string, idx []int, col int) string {
	if idx[col] < 0 || idx[col] >= len(record) {
		return ""
	}
	return record[idx[col]]
}

// ExportUsersCSV renders the current user list.
func (s *UserStore) ExportUsersCSV() string {
	users := s.Users()
	records := make([][]string, 0, len(users))
	for _, u := range users {
		schools := "all"
		if !u.SchoolAccess.All {
			schools = strings.Join(u.SchoolAccess.SchoolIDs, ";")
		}
		records = append(records, []string{
			u.Name, u.Email, u.Role, u.Title, u.Phone, schools, string(u.Status),
		})
	}
	return marshalCSV(userCSVHeader, records)
}

// ImportUsersCSV parses a document and invites one user per data row
// through the normal save path, so every row gets the same validation and
// optimistic-id treatment as a manual invite. Rows that fail validation or
// the remote call are reported and skipped; the pass continues.
func (s *UserStore) ImportUsersCSV(ctx context.Context, doc string) (ImportReport, error) {
	header, records, err := parseCSV(doc)
	if err != nil {
		return ImportReport{}, err
	}
	idx := columnIndex(header, userCSVHeader)
	if idx[0] < 0 || idx[1] < 0 {
		return ImportReport{}, fmt.Errorf("missing required columns name, email")
	}

	var report ImportReport
	for n, rec := range records {
		form := UserForm{
			Name:  field(rec, idx, 0),
			Email: field(rec, idx, 1),
			Role:  field(rec, idx, 2),
			Title: field(rec, idx, 3),
			Phone: field(rec, idx, 4),
		}
		if form.Role == "" {
			form.Role = "staff"
		}
		schools := field(rec, idx, 5)
		if schools == "" || strings.EqualFold(schools, "all") {
			form.SchoolAccess = models.SchoolAccess{All: true}
		} else {
			form.SchoolAccess = models.SchoolAccess{SchoolIDs: splitList(schools)}
		}

		if _, err := s.InviteUser(ctx, form); err != nil {
			report.Errors = append(report.Errors, ImportRowError{Row: n + 1, Err: err})
			continue
		}
		report.Created++
	}
	return report, nil
}

// ExportClassesCSV renders the class list with each class's section names
// joined on ";".
func (s *ClassStore) ExportClassesCSV() string {
	classes := s.Classes()
	records := make([][]string, 0, len(classes))
	for _, c := range classes {
		names := make([]string, 0)
		for _, sec := range s.SectionsOf(c.ID) {
			names = append(names, sec.Name)
		}
		records = append(records, []string{
			c.Name, c.Code, strings.Join(c.SchoolIDs, ";"), strings.Join(names, ";"), string(c.Status),
		})
	}
	return marshalCSV(classCSVHeader, records)
}

// ImportClassesCSV creates one class per data row through the normal save
// path, then bulk-creates its listed sections. Rows that fail are reported
// and skipped.
func (s *ClassStore) ImportClassesCSV(ctx context.Context, doc string, tenantSchools []models.SchoolRow) (ImportReport, error) {
	header, records, err := parseCSV(doc)
	if err != nil {
		return ImportReport{}, err
	}
	idx := columnIndex(header, classCSVHeader)
	if idx[0] < 0 {
		return ImportReport{}, fmt.Errorf("missing required column name")
	}

	var report ImportReport
	for n, rec := range records {
		form := ClassForm{
			Name:      field(rec, idx, 0),
			Code:      field(rec, idx, 1),
			SchoolIDs: splitList(field(rec, idx, 2)),
		}
		created, err := s.SaveClassForm(ctx, form, tenantSchools)
		if err != nil {
			report.Errors = append(report.Errors, ImportRowError{Row: n + 1, Err: err})
			continue
		}
		report.Created++

		if names := splitList(field(rec, idx, 3)); len(names) > 0 {
			if _, err := s.CreateSections(ctx, created.ID, names); err != nil {
				report.Errors = append(report.Errors, ImportRowError{Row: n + 1, Err: err})
			}
		}
	}
	return report, nil
}

// splitList splits a ";"-joined multi-value field, dropping empty tokens.
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(v, ";") {
		if t := strings.TrimSpace(tok); t != "" {
			out = append(out, t)
		}
	}
	return out
}
