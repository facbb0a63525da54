package domain

// SuggestionType identifies which advisor produced a suggestion.
type SuggestionType string

const (
	SuggestionTypeStatus     SuggestionType = "status"
	SuggestionTypePriority   SuggestionType = "priority"
	SuggestionTypeAssignment SuggestionType = "assignment"
	SuggestionTypeResponse   SuggestionType = "response"
	SuggestionTypeRelated    SuggestionType = "relatedTickets"
)

// ActionKind identifies what applying a suggestion action does.
type ActionKind string

const (
	ActionChangeStatus   ActionKind = "change_status"
	ActionChangePriority ActionKind = "change_priority"
	ActionAssignUser     ActionKind = "assign_user"
	ActionAddComment     ActionKind = "add_comment"
	ActionViewTicket     ActionKind = "view_ticket"
)

// SuggestionAction is one selectable action inside a suggestion.
type SuggestionAction struct {
	Label string     `json:"label"`
	Value string     `json:"value"`
	Kind  ActionKind `json:"actionKind"`
}

// Suggestion is a transient, non-binding recommendation emitted by an
// advisor. Suggestions are never persisted.
type Suggestion struct {
	Type             SuggestionType     `json:"type"`
	Description      string             `json:"description"`
	Confidence       float64            `json:"confidence"`
	Actions          []SuggestionAction `json:"actions"`
	RelatedTickets   []string           `json:"relatedTickets,omitempty"`
	ResponseTemplate string             `json:"responseTemplate,omitempty"`
}
