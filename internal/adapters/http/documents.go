package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, rt.maxUploadBytes())
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := rt.ingestor.Upload(r.Context(), up.Filename, up.ContentType, bytes.NewReader(up.Data))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/documents/"+doc.ID)
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getDocumentReport(w http.ResponseWriter, r *http.Request) {
	if rt.renderer == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "report rendering is not configured"})
		return
	}
	doc, ok := rt.loadDocument(w, r)
	if !ok {
		return
	}

	body, err := rt.renderer.RenderPDF(doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="compliance-%s.pdf"`, doc.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (rt *Router) loadDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return nil, false
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return doc, true
}
