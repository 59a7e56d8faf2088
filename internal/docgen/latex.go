package docgen

import (
	"context"
	"io"
	"strconv"
	"strings"
	"text/template"
)

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"$", `\$`,
	"&", `\&`,
	"#", `\#`,
	"_", `\_`,
	"%", `\%`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

func escapeLaTeX(s string) string { return latexReplacer.Replace(s) }

func escJoin(items []string, sep string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = escapeLaTeX(s)
	}
	return strings.Join(out, sep)
}

// columnSpec is a bordered tabularx spec: a fixed first column and X for
// the rest.
func columnSpec(b Block) string {
	cols := tableColumns(b)
	if cols <= 1 {
		return "|X|"
	}
	return "|p{0.28\\linewidth}|" + strings.Repeat("X|", cols-1)
}

func pt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}

var latexTemplate = template.Must(template.New("resume.tex").Funcs(template.FuncMap{
	"escape":     escapeLaTeX,
	"escJoin":    escJoin,
	"columnSpec": columnSpec,
	"pt":         pt,
}).Parse(latexSource))

// LaTeXEncoder writes a standalone article source with one \newpage per
// model page boundary.
type LaTeXEncoder struct {
	tmpl *template.Template
}

func NewLaTeXEncoder() *LaTeXEncoder {
	return &LaTeXEncoder{tmpl: latexTemplate}
}

func (e *LaTeXEncoder) Encode(_ context.Context, doc *DocumentModel, w io.Writer) error {
	return e.tmpl.Execute(w, doc)
}

func (e *LaTeXEncoder) ContentType() string { return "application/x-latex; charset=utf-8" }

func (e *LaTeXEncoder) Extension() string { return ".tex" }

const latexSource = `\documentclass[10pt]{article}
\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{helvet}
\renewcommand{\familydefault}{\sfdefault}
\usepackage[paperwidth={{pt .Geometry.Width}}, paperheight={{pt .Geometry.Height}}, margin={{pt .Geometry.Margin}}]{geometry}
\usepackage{tabularx}
\usepackage{enumitem}
\usepackage[dvipsnames]{xcolor}
\usepackage[hidelinks, pdftitle={ {{- escape .Title -}} }, pdfauthor={ {{- escape .Author -}} }]{hyperref}
\setlength{\parindent}{0pt}
\pagestyle{empty}

\begin{document}
{{- range $i, $page := .Pages}}
{{- if $i}}

\newpage
{{- end}}
{{- range $page.Blocks}}
{{- if eq .Kind "heading"}}
{{- if eq .Level 1}}

\begin{center}{\LARGE\bfseries {{escape .Text}}}\end{center}
{{- else if eq .Level 2}}

\section*{ {{- escape .Text -}} }
{{- else}}

\subsection*{ {{- escape .Text -}} }
{{- end}}
{{- else if eq .Kind "paragraph"}}
{{- if eq .Style "centered"}}

\begin{center}{{escape .Text}}\end{center}
{{- else if eq .Style "muted"}}

{\small\color{Gray} {{escape .Text}}\par}
{{- else}}

{{escape .Text}}\par
{{- end}}
{{- else if eq .Kind "bullet_list"}}

\begin{itemize}[leftmargin=14pt, nosep]
{{- range .Items}}
  \item {{escape .}}
{{- end}}
\end{itemize}
{{- else if eq .Kind "table"}}

\begin{tabularx}{\linewidth}{ {{- columnSpec . -}} }
\hline
{{- with .Header}}
\textbf{ {{- escJoin . "} & \\textbf{" -}} } \\ \hline
{{- end}}
{{- range .Rows}}
{{escJoin . " & "}} \\ \hline
{{- end}}
\end{tabularx}
{{- end}}
{{- end}}
{{- end}}

\end{document}
`
