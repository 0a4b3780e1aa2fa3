package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/deal-pipeline/internal/types"
)

// renderer builds the message of a failed check of one kind.
type renderer func(column string, bc boundCheck, value types.Value) string

var renderers = map[CheckKind]renderer{
	KindStructural: renderStructural,
	KindMembership: renderMembership,
	KindType:       renderType,
	KindPredicate:  renderPredicate,
}

func render(column string, bc boundCheck, value types.Value) string {
	r, ok := renderers[bc.Kind]
	if !ok {
		return fmt.Sprintf("Column '%s' failed check %s.", column, bc.Name)
	}
	return r(column, bc, value)
}

func renderStructural(column string, bc boundCheck, value types.Value) string {
	switch bc.Name {
	case CheckNotNullable:
		return fmt.Sprintf("Column '%s' must not be empty.", column)
	case CheckColumnInDataFrame:
		return fmt.Sprintf("Column '%s' must exist.", column)
	case CheckColumnInSchema:
		return fmt.Sprintf("Column '%s' is not declared in the schema.", column)
	case CheckColumnOrdered:
		return fmt.Sprintf("Column '%s' is out of order.", column)
	case CheckStrLength:
		return fmt.Sprintf("Column '%s' value '%s' must be %s.", column, value.String(), lengthBounds(bc.MinLen, bc.MaxLen))
	default:
		return fmt.Sprintf("Column '%s' failed check %s.", column, bc.Name)
	}
}

func lengthBounds(min, max int) string {
	switch {
	case min == max:
		return fmt.Sprintf("exactly %d characters long", min)
	case max == 0:
		return fmt.Sprintf("at least %d characters long", min)
	default:
		return fmt.Sprintf("between %d and %d characters long", min, max)
	}
}

func renderMembership(column string, bc boundCheck, value types.Value) string {
	allowed := "(none)"
	if len(bc.allowed) > 0 {
		allowed = strings.Join(bc.allowed, ", ")
	}
	return fmt.Sprintf("Column '%s' value '%s' must be one of: %s.", column, value.String(), allowed)
}

func renderType(column string, bc boundCheck, value types.Value) string {
	return fmt.Sprintf("Column '%s' value '%s' must be of type %s.", column, value.String(), bc.dtype)
}

func renderPredicate(column string, bc boundCheck, value types.Value) string {
	return fmt.Sprintf("Column '%s' value '%s' must %s.", column, value.String(), bc.Description)
}
