package shipment

import (
	"github.com/exportdesk/exportdesk/internal/scheme"
)

// PatchFieldRequest is one dotted-path field edit.
type PatchFieldRequest struct {
	Path  string `json:"path" validate:"required,max=200"`
	Value any    `json:"value"`
}

// SelectProductRequest moves the product selection.
type SelectProductRequest struct {
	Index int `json:"index"`
}

// EditorView is the editor state returned to the rendering layer:
// the aggregate plus the derived tab strip for the selected product.
type EditorView struct {
	SessionID     string           `json:"sessionId"`
	Snapshot      *Shipment        `json:"snapshot"`
	SelectedIndex int              `json:"selectedIndex"`
	Subforms      []scheme.Subform `json:"subforms"`
}

func newEditorView(sess *Session) EditorView {
	return EditorView{
		SessionID:     sess.ID.String(),
		Snapshot:      sess.Snapshot(),
		SelectedIndex: sess.SelectedIndex(),
		Subforms:      sess.Subforms(),
	}
}
