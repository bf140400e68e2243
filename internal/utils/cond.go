package querybuilder

import "strings"

type CondType int

const (
	CondTypeAnd CondType = iota + 1
	CondTypeOr
)

func (c CondType) ToString() string {
	switch c {
	case CondTypeAnd:
		return "AND"
	case CondTypeOr:
		return "OR"
	default:
		return ""
	}
}

type Condition struct {
	condType CondType
	clause   string
	args     []interface{}
	subCond  []Condition
}

func (c Condition) isSubGroup() bool {
	return c.subCond != nil
}

// buildCondition joins the conditions in order. Args follow the placeholders
// left to right, nested groups included.
func buildCondition(conditions []Condition) (string, []interface{}) {
	parts := make([]string, 0, len(conditions)*2)
	args := make([]interface{}, 0)

	for _, cond := range conditions {
		var clause string
		if cond.isSubGroup() {
			if len(cond.subCond) == 0 {
				continue
			}
			sub, subArgs := buildCondition(cond.subCond)
			clause = "(" + sub + ")"
			args = append(args, subArgs...)
		} else {
			clause = cond.clause
			args = append(args, cond.args...)
		}
		if len(parts) > 0 {
			parts = append(parts, cond.condType.ToString())
		}
		parts = append(parts, clause)
	}

	return strings.Join(parts, " "), args
}
