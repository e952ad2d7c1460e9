package querybuilder

import (
	"fmt"
	"strings"
)

type CondType int

const (
	CondTypeAnd CondType = iota + 1
	CondTypeOr
)

// String is the SQL keyword joining a condition to the one before it.
func (c CondType) String() string {
	switch c {
	case CondTypeAnd:
		return "AND"
	case CondTypeOr:
		return "OR"
	}
	return ""
}

// Condition is either a single clause with its placeholders' arguments or a parenthesised
// group of conditions.
type Condition struct {
	condType CondType
	clause   string
	args     []interface{}
	group    []Condition
}

func leaf(t CondType, clause string, args []interface{}) Condition {
	return Condition{condType: t, clause: clause, args: args}
}

func group(t CondType, conds []Condition) Condition {
	return Condition{condType: t, group: conds}
}

func (c Condition) isGroup() bool {
	return c.group != nil
}

// buildCondition joins conditions in order. The first condition's type is ignored.
func buildCondition(conditions []Condition) (string, []interface{}) {
	parts := make([]string, 0, len(conditions)*2)
	var args []interface{}

	for i, cond := range conditions {
		if i > 0 {
			parts = append(parts, cond.condType.String())
		}
		if cond.isGroup() {
			clause, groupArgs := buildCondition(cond.group)
			parts = append(parts, fmt.Sprintf("(%s)", clause))
			args = append(args, groupArgs...)
			continue
		}
		parts = append(parts, cond.clause)
		args = append(args, cond.args...)
	}

	return strings.Join(parts, " "), args
}
