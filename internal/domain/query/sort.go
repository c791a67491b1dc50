package query

import (
	"strings"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain/variable"
)

// Compare orders two rows by the query's sort keys: each subsequent key
// breaks ties of the previous. Returns a negative, zero or positive value.
//
// Rows whose sort variable is absent, or stored under a type other than the
// declared hint, are treated as null-like: they order first in ascending
// direction.
func Compare(a, b *Row, keys []SortKey) int {
	for _, k := range keys {
		c := compareKey(a, b, k)
		if k.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareKey(a, b *Row, k SortKey) int {
	switch k.Field {
	case SortByID:
		return strings.Compare(a.Task.ID, b.Task.ID)
	case SortByName:
		// Name ordering is case-insensitive.
		return strings.Compare(strings.ToLower(a.Task.Name), strings.ToLower(b.Task.Name))
	case SortByDescription:
		return strings.Compare(a.Task.Description, b.Task.Description)
	case SortByPriority:
		return a.Task.Priority - b.Task.Priority
	case SortByAssignee:
		return strings.Compare(a.Task.Assignee, b.Task.Assignee)
	case SortByCreateTime:
		return a.Task.CreateTime.Compare(b.Task.CreateTime)
	case SortByDueDate:
		return compareTimePtr(a.Task.DueDate, b.Task.DueDate)
	case SortByFollowUpDate:
		return compareTimePtr(a.Task.FollowUpDate, b.Task.FollowUpDate)
	case SortByLastUpdated:
		return compareTimePtr(a.Task.LastUpdated, b.Task.LastUpdated)
	case SortByProcessInstance:
		return strings.Compare(a.Task.ProcessInstance, b.Task.ProcessInstance)
	case SortByCaseInstance:
		return strings.Compare(a.Task.CaseInstanceID, b.Task.CaseInstanceID)
	case SortByTenantID:
		return strings.Compare(a.Task.TenantID, b.Task.TenantID)
	case SortByVariable:
		return compareVariable(a, b, k)
	}
	return 0
}

// compareTimePtr orders nil timestamps first.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func compareVariable(a, b *Row, k SortKey) int {
	av, aok := sortValue(a, k)
	bv, bok := sortValue(b, k)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	switch k.VarType {
	case variable.TypeBoolean:
		return boolOrder(av.Bool) - boolOrder(bv.Bool)
	case variable.TypeString:
		// Variable string ordering is case-sensitive.
		return strings.Compare(av.Str, bv.Str)
	case variable.TypeDate:
		return compareTimePtr(av.Time, bv.Time)
	default:
		c, _ := av.Compare(bv)
		return c
	}
}

// sortValue fetches the row's value for the sort key and reports whether it
// exists under the declared type hint.
func sortValue(r *Row, k SortKey) (variable.Value, bool) {
	var vars map[string]variable.Value
	switch k.VarScope {
	case VarScopeTask:
		vars = r.TaskVars
	case VarScopeCase:
		vars = r.CaseVars
	default:
		vars = r.ProcessVars
	}
	v, ok := vars[k.VarName]
	if !ok || v.Type != k.VarType {
		return variable.Value{}, false
	}
	return v, true
}

func boolOrder(b bool) int {
	if b {
		return 1
	}
	return 0
}
