package persistence

import (
	"fmt"
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// listSpec describes how a shared.Filter maps onto one table.
// Filter keys that are not declared are ignored.
type listSpec struct {
	// search columns are matched case-insensitively against Filter.Search
	search []string
	// columns maps a filter key to a column; "<key>_from" and "<key>_to"
	// become range conditions on the same column
	columns map[string]string
	// scopes handle filter keys that need more than equality
	scopes map[string]func(q *gorm.DB, value any) *gorm.DB
	sortable     map[string]bool
	defaultOrder string
}

// where applies search and filter conditions
func (s listSpec) where(q *gorm.DB, f shared.Filter) *gorm.DB {
	if term := strings.TrimSpace(f.Search); term != "" && len(s.search) > 0 {
		pattern := "%" + strings.ToLower(escapeLike(term)) + "%"
		conds := make([]string, len(s.search))
		args := make([]any, len(s.search))
		for i, col := range s.search {
			conds[i] = fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", col)
			args[i] = pattern
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	for key, value := range f.Filters {
		if scope, ok := s.scopes[key]; ok {
			q = scope(q, value)
			continue
		}
		if col, ok := s.columns[key]; ok {
			q = q.Where(col+" = ?", value)
			continue
		}
		if base, found := strings.CutSuffix(key, "_from"); found {
			if col, ok := s.columns[base]; ok {
				q = q.Where(col+" >= ?", value)
			}
			continue
		}
		if base, found := strings.CutSuffix(key, "_to"); found {
			if col, ok := s.columns[base]; ok {
				q = q.Where(col+" <= ?", value)
			}
		}
	}
	return q
}

// page applies ordering and pagination
func (s listSpec) page(q *gorm.DB, f shared.Filter) *gorm.DB {
	def := s.defaultOrder
	if def == "" {
		def = "created_at"
	}
	orderBy := ValidateSortField(f.OrderBy, s.sortable, def)
	q = q.Order(orderBy + " " + ValidateSortOrder(f.OrderDir)).Order("id")
	if f.PageSize > 0 {
		q = q.Offset(f.Offset()).Limit(f.PageSize)
	}
	return q
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "1"
	}
	return false
}
