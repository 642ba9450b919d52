package render

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4; margin: 0.75in; }
  body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; color: #000; max-width: 7in; margin: 0 auto; }
  header { text-align: center; margin-bottom: 12pt; }
  h1 { font-size: 16pt; color: rgb(0, 51, 102); margin: 0; }
  .label { font-size: 11pt; color: rgb(102, 102, 102); }
  .contact, .profiles { color: rgb(102, 102, 102); }
  h2 { font-size: 12pt; color: rgb(0, 51, 102); border-bottom: 1px solid rgb(0, 51, 102); margin: 12pt 0 6pt; }
  .item { margin-bottom: 8pt; }
  .compact .item { margin-bottom: 0; }
  .row { display: flex; justify-content: space-between; }
  .heading { font-weight: bold; font-size: 11pt; color: rgb(0, 51, 102); }
  .dates, .subtitle { font-style: italic; color: rgb(102, 102, 102); }
  .url { color: rgb(102, 102, 102); }
  p { margin: 2pt 0; }
  ul { margin: 2pt 0; padding-left: 1.5em; }
  .no-print { position: fixed; top: 1em; right: 1em; }
  @media print { .no-print { display: none; } }
</style>
</head>
<body>
<button class="no-print" onclick="window.print()">Print</button>
<header>
  <h1>{{.Header.Name}}</h1>
  {{- with .Header.Label}}
  <div class="label">{{.}}</div>
  {{- end}}
  {{- if .Header.Contact}}
  <div class="contact">{{join .Header.Contact}}</div>
  {{- end}}
  {{- if .Header.Profiles}}
  <div class="profiles">{{join .Header.Profiles}}</div>
  {{- end}}
</header>
{{- with .Header.Summary}}
<section>
  <h2>Summary</h2>
  <p>{{.}}</p>
</section>
{{- end}}
{{- range .Blocks}}
<section class="{{.Section}}{{if .Compact}} compact{{end}}">
  <h2>{{.Title}}</h2>
  {{- range .Items}}
  <div class="item">
    {{- if or .Heading .Dates}}
    <div class="row"><span class="heading">{{.Heading}}</span><span class="dates">{{.Dates}}</span></div>
    {{- end}}
    {{- with .Subtitle}}
    <div class="subtitle">{{.}}</div>
    {{- end}}
    {{- with .URL}}
    <div class="url"><a href="{{.}}">{{.}}</a></div>
    {{- end}}
    {{- range .Text}}
    <p>{{.}}</p>
    {{- end}}
    {{- if .Bullets}}
    <ul>
      {{- range .Bullets}}
      <li>{{.}}</li>
      {{- end}}
    </ul>
    {{- end}}
  </div>
  {{- end}}
</section>
{{- end}}
</body>
</html>
`

var (
	htmlOnce sync.Once
	htmlTpl  *template.Template
	htmlErr  error
)

func loadHTMLTemplate() (*template.Template, error) {
	htmlOnce.Do(func() {
		htmlTpl, htmlErr = template.New("resume").Funcs(template.FuncMap{
			"join": func(parts []string) string {
				return strings.Join(parts, " "+bullet+" ")
			},
		}).Parse(htmlTemplate)
	})
	return htmlTpl, htmlErr
}

type htmlData struct {
	Title  string
	Header Header
	Blocks []Block
}

// HTML renders doc as a self-contained printable page.
func HTML(doc resume.Document) (string, error) {
	tpl, err := loadHTMLTemplate()
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeRenderFailed, "resume page template failed to parse", err)
	}
	data := htmlData{
		Header: BuildHeader(&doc),
		Blocks: BuildBlocks(&doc),
	}
	data.Title = "Resume"
	if data.Header.Name != "" {
		data.Title = data.Header.Name + " - Resume"
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", errors.NewRenderError(errors.ErrCodeRenderFailed, "failed to render resume page", err)
	}
	return buf.String(), nil
}
