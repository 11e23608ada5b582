package httpadapter

import (
	"net/http"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

func (rt *Router) checkDocument(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, rt.maxUploadBytes())
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := rt.checker.Check(r.Context(), up.Filename, up.ContentType, up.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type rulesResponse struct {
	Frameworks []domain.RuleGroup `json:"frameworks"`
	Rules      []string           `json:"rules"`
}

func (rt *Router) listRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rulesResponse{
		Frameworks: domain.RuleGroups(),
		Rules:      domain.DefaultRuleSet(),
	})
}
