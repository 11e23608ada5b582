package httpadapter

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

var uploadPage = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Compliance Checker</title>
</head>
<body>
<h1>Compliance Checker</h1>
<form action="/upload" method="post" enctype="multipart/form-data">
  <input type="file" name="file" accept=".pdf,.txt,text/plain,application/pdf">
  <button type="submit">Check</button>
</form>
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
{{- with .Result}}
<h2>Results for {{.Filename}}</h2>
<p>Compliance score: <strong>{{printf "%.2f" .Score}}%</strong></p>
<h3>Found</h3>
<ul>{{range .MatchedRules}}<li>{{.}}</li>{{else}}<li>none</li>{{end}}</ul>
<h3>Missing</h3>
<ul>{{range .UnmatchedRules}}<li>{{.}}</li>{{else}}<li>none</li>{{end}}</ul>
{{- if .StorageURL}}
<p>Stored at <a href="{{.StorageURL}}">{{.StorageURL}}</a></p>
{{- end}}
{{- end}}
</body>
</html>
`))

type pageData struct {
	Error  string
	Result *domain.CheckResult
}

func (rt *Router) indexPage(w http.ResponseWriter, r *http.Request) {
	rt.renderPage(w, r, http.StatusOK, pageData{})
}

func (rt *Router) uploadPage(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, rt.maxUploadBytes())
	if err != nil {
		rt.renderPage(w, r, mapErrorToHTTPStatus(err), pageData{Error: uploadErrorMessage(err)})
		return
	}

	result, err := rt.checker.Check(r.Context(), up.Filename, up.ContentType, up.Data)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("request_failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
		}
		rt.renderPage(w, r, status, pageData{Error: "The document could not be checked"})
		return
	}
	rt.renderPage(w, r, http.StatusOK, pageData{Result: result})
}

func (rt *Router) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rt.page.Execute(w, data); err != nil {
		slog.Error("page_render_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}
