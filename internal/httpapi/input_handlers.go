package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/orchestrator"
	"github.com/ufolux/TransPop/internal/payloadschema"
)

type editorResponse struct {
	Input orchestrator.Input `json:"input"`
	State orchestrator.State `json:"state"`
}

func (s *Server) editorSnapshot() editorResponse {
	return editorResponse{
		Input: s.editor.Input(),
		State: s.editor.Snapshot(),
	}
}

func (s *Server) handleState(c echo.Context) error {
	return success(c, s.editorSnapshot())
}

func (s *Server) handlePutInput(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return failField(c, "body", err.Error())
	}
	update, err := payloadschema.ValidateInputUpdate(body)
	if err != nil {
		return failField(c, "body", err.Error())
	}

	var sourceLang, targetLang string
	if update.SourceLang != nil {
		if sourceLang = language.Canonical(*update.SourceLang); sourceLang == "" {
			return failField(c, "source_lang", "is not a language code")
		}
	}
	if update.TargetLang != nil {
		targetLang = language.Canonical(*update.TargetLang)
		if targetLang == "" || targetLang == language.AutoDetect {
			return failField(c, "target_lang", "is not a target language code")
		}
	}

	s.editor.Edit(func(in *orchestrator.Input) {
		if update.Text != nil {
			in.Text = *update.Text
		}
		if sourceLang != "" {
			in.SourceLang = sourceLang
		}
		if targetLang != "" {
			in.TargetLang = targetLang
		}
		if update.Provider != nil {
			in.Provider, _ = language.ParseProviderKind(*update.Provider)
		}
	})

	return successWithStatus(c, http.StatusAccepted, s.editorSnapshot())
}

func (s *Server) handleSwap(c echo.Context) error {
	s.editor.Swap()
	return successWithStatus(c, http.StatusAccepted, s.editorSnapshot())
}

func (s *Server) handleHistory(c echo.Context) error {
	return success(c, map[string]any{
		"items": s.history.Items(),
	})
}

func (s *Server) handleClearHistory(c echo.Context) error {
	return success(c, map[string]any{
		"cleared": s.history.Clear(),
	})
}

func (s *Server) handleDeleteHistoryItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return failField(c, "id", "must be a UUID")
	}
	if !s.history.Delete(id) {
		return fail(c, http.StatusNotFound, "History item not found", nil)
	}
	return success(c, map[string]any{
		"deleted": id,
	})
}
