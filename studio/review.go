package studio

// ReviewAction is a button offered by the review surface.
type ReviewAction string

const (
	ReviewAccept  ReviewAction = "accept"
	ReviewReject  ReviewAction = "reject"
	ReviewEdit    ReviewAction = "edit"
	ReviewConfirm ReviewAction = "confirm"
	ReviewCancel  ReviewAction = "cancel"
	ReviewClose   ReviewAction = "close"
	// ReviewDraft saves in-progress edits; it is not a button.
	ReviewDraft   ReviewAction = "draft"
)

// ReviewView is what the review modal renders for the current state.
type ReviewView struct {
	Visible      bool           `json:"visible"`
	Mode         EnhanceState   `json:"mode"`
	OriginalText string         `json:"original_text,omitempty"`
	EnhancedText string         `json:"enhanced_text,omitempty"`
	EditableText string         `json:"editable_text,omitempty"`
	Actions      []ReviewAction `json:"actions,omitempty"`
}

// Review describes the modal for the machine's current state. It is only
// visible while reviewing or editing.
func (m *EnhancementMachine) Review() ReviewView {
	s := m.Session()
	view := ReviewView{Mode: s.State}
	switch s.State {
	case EnhanceReviewing:
		view.Visible = true
		view.OriginalText = s.OriginalText
		view.EnhancedText = s.EnhancedText
		view.Actions = []ReviewAction{ReviewAccept, ReviewReject, ReviewEdit}
	case EnhanceEditing:
		view.Visible = true
		view.OriginalText = s.OriginalText
		view.EditableText = s.DraftText
		view.Actions = []ReviewAction{ReviewConfirm, ReviewCancel}
	}
	return view
}

// Dispatch applies a review action. text is the edited prompt for
// ReviewConfirm and ReviewDraft and ignored otherwise. Close is always
// available while the modal is visible; any other action not offered by
// the current view is rejected without changing state.
func (m *EnhancementMachine) Dispatch(action ReviewAction, text string) error {
	switch action {
	case ReviewAccept:
		return m.Accept()
	case ReviewReject, ReviewCancel:
		if action == ReviewCancel && m.State() != EnhanceEditing {
			return m.illegal(string(action), m.State())
		}
		return m.Reject()
	case ReviewEdit:
		return m.StartEditing()
	case ReviewConfirm:
		return m.ConfirmEdit(text)
	case ReviewDraft:
		return m.UpdateDraft(text)
	case ReviewClose:
		return m.Close()
	default:
		return newError(KindValidation, CodeUnknownAction, "Unknown review action.", nil)
	}
}
