package statuspage

import (
	"bytes"
	"errors"
	htmlTemplate "html/template"
	"net/http"
	textTemplate "text/template"

	"github.com/golang/gddo/httputil/header"
)

// Writer writes HTTP status pages in HTML or plain-text format using
// templates. The zero value uses the built-in templates.
type Writer struct {
	HTMLTemplate *htmlTemplate.Template
	TextTemplate *textTemplate.Template
}

// TemplateContext holds the data needed to render a status page.
type TemplateContext struct {
	Code    int
	Text    string
	Message string
}

// Write outputs a status page for statusCode in response to r.
func (wr *Writer) Write(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
) (int64, error) {
	return wr.WriteMessage(w, r, statusCode, StatusMessage(statusCode))
}

// WriteMessage outputs a status page for statusCode in response to r,
// including a custom message.
func (wr *Writer) WriteMessage(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
	message string,
) (int64, error) {
	var (
		buf         bytes.Buffer
		contentType string
	)

	ctx := TemplateContext{
		statusCode,
		http.StatusText(statusCode),
		message,
	}

	if useHTML(r) {
		tmpl := wr.HTMLTemplate
		if tmpl == nil {
			tmpl = defaultHTMLTemplate
		}

		if err := tmpl.Execute(&buf, ctx); err == nil {
			contentType = "text/html"
		}
	}

	if contentType == "" {
		tmpl := wr.TextTemplate
		if tmpl == nil {
			tmpl = defaultTextTemplate
		}

		buf.Reset()
		if err := tmpl.Execute(&buf, ctx); err != nil {
			return 0, err
		}
		contentType = "text/plain"
	}

	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(statusCode)

	return buf.WriteTo(w)
}

// WriteError outputs a status page for err in response to r. If err is (or
// wraps) an Error its status code and message are used, otherwise the page
// describes an internal server error.
func (wr *Writer) WriteError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) (statusCode int, bodySize int64, writeErr error) {
	var e Error
	if errors.As(err, &e) && e.StatusCode != 0 {
		statusCode = e.StatusCode
		if e.Message != "" {
			bodySize, writeErr = wr.WriteMessage(w, r, statusCode, e.Message)
			return
		}
	} else {
		statusCode = http.StatusInternalServerError
	}

	bodySize, writeErr = wr.Write(w, r, statusCode)
	return
}

const htmlSource = `<!DOCTYPE html>
<html>
<head><title>{{.Code}} {{.Text}}</title></head>
<body>
<h1>{{.Code}} {{.Text}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`

const textSource = "{{.Code}} {{.Text}}\n\n{{.Message}}\n"

var (
	defaultHTMLTemplate = htmlTemplate.Must(htmlTemplate.New("status-page").Parse(htmlSource))
	defaultTextTemplate = textTemplate.Must(textTemplate.New("status-page").Parse(textSource))
)

func useHTML(r *http.Request) bool {
	htmlQ := -1.0
	textQ := 0.0

	for _, spec := range header.ParseAccept(r.Header, "Accept") {
		switch spec.Value {
		case "text/html", "application/xhtml+xml":
			if spec.Q > htmlQ {
				htmlQ = spec.Q
			}
		case "text/plain", "*/*":
			if spec.Q > textQ {
				textQ = spec.Q
			}
		}
	}

	return htmlQ > textQ
}
