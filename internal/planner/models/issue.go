package models

// ============================================================
// Issues
// ============================================================

type IssueKind string

const (
	IssueDegenerateInput   IssueKind = "degenerate_input"
	IssueNoHostWall        IssueKind = "no_host_wall"
	IssueAmbiguousJunction IssueKind = "ambiguous_junction"
	IssueOversizedOpening  IssueKind = "oversized_opening"
	IssueOpeningOverlap    IssueKind = "opening_overlap"
	IssueCornerClearance   IssueKind = "corner_clearance"
	IssueInvalidWidth      IssueKind = "invalid_width"
	IssueUnsupportedKind   IssueKind = "unsupported_kind"
)

// Issue: предупреждение или ошибка, которую ядро возвращает вместо паники.
type Issue struct {
	Kind      IssueKind `json:"kind"`
	Message   string    `json:"message"`
	ElementID string    `json:"elementId,omitempty"`
}

func (i Issue) String() string {
	if i.ElementID == "" {
		return i.Message
	}
	return i.ElementID + ": " + i.Message
}

// Messages разворачивает список в строки для UI.
func Messages(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.String())
	}
	return out
}
