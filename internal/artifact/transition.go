package artifact

import (
	"database/sql"
	"fmt"
)

// UnknownTransition labels codes outside the known vocabulary.
const UnknownTransition = "Unknown"

var chromiumTransitions = map[int64]string{
	0: "Link",
	1: "Typed",
	2: "Auto Bookmark",
	3: "Auto Subframe",
	4: "Manual Subframe",
	5: "Generated",
	6: "Start Page",
	7: "Form Submit",
	8: "Reload",
}

// TransitionLabel maps a Chromium transition code to its label. The stored
// value is looked up as is, so codes carrying qualifier bits are Unknown.
func TransitionLabel(code int64) string {
	if label, ok := chromiumTransitions[code]; ok {
		return label
	}
	return UnknownTransition
}

// chromiumTransition labels a visits.transition value.
func chromiumTransition(raw sql.NullInt64) string {
	if !raw.Valid {
		return UnknownTransition
	}
	return TransitionLabel(raw.Int64)
}

// geckoTransition labels a moz_historyvisits.visit_type. Gecko's
// vocabulary is not resolved to names.
func geckoTransition(visitType sql.NullInt64) string {
	if !visitType.Valid || visitType.Int64 == 0 {
		return UnknownTransition
	}
	return fmt.Sprintf("Type %d", visitType.Int64)
}
