package plan

import (
	"fmt"
	"strings"
)

// ViolationCode classifies a single validation failure.
type ViolationCode string

const (
	MissingField        ViolationCode = "missing_field"
	WrongType           ViolationCode = "wrong_type"
	EmptyPlan           ViolationCode = "empty_plan"
	BadSlug             ViolationCode = "bad_slug"
	DuplicateName       ViolationCode = "duplicate_name"
	DanglingCategoryRef ViolationCode = "dangling_category_ref"
	DanglingRoleRef     ViolationCode = "dangling_role_ref"
	UnknownTaskKind     ViolationCode = "unknown_task_kind"
)

// Violation records one violated constraint. Task is the index of the
// offending task or action, or -1 for plan-level failures.
type Violation struct {
	Task   int
	Field  string
	Code   ViolationCode
	Reason string
}

func (v Violation) String() string {
	if v.Task < 0 {
		return fmt.Sprintf("%s: %s", v.Code, v.Reason)
	}
	return fmt.Sprintf("task %d, %s: %s: %s", v.Task, v.Field, v.Code, v.Reason)
}

// Violations is the full list of failures from one validation pass. A plan
// that produced any violation is rejected entirely; there is no partial
// validity.
type Violations []Violation

func (vs Violations) Error() string {
	if len(vs) == 0 {
		return "no violations"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

func (vs *Violations) add(task int, field string, code ViolationCode, format string, args ...any) {
	*vs = append(*vs, Violation{Task: task, Field: field, Code: code, Reason: fmt.Sprintf(format, args...)})
}
