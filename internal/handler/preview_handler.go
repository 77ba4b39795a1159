package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/Kaensy/mathed-romania/pkg/errors"
	"github.com/Kaensy/mathed-romania/pkg/mathpreview"
	"github.com/Kaensy/mathed-romania/pkg/response"
)

// PreviewHandler renders math-bearing content drafts for the editor
// preview pane.
type PreviewHandler struct {
	previewer *mathpreview.Previewer
}

// NewPreviewHandler creates a new handler.
func NewPreviewHandler(previewer *mathpreview.Previewer) *PreviewHandler {
	if previewer == nil {
		previewer = mathpreview.New(nil)
	}
	return &PreviewHandler{previewer: previewer}
}

type previewRequest struct {
	Content string `json:"content"`
}

// Render handles POST /api/admin/content/preview/.
func (h *PreviewHandler) Render(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid preview payload."))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"html": h.previewer.Render(req.Content)})
}
