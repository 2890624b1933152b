package pseudofmt

import "text/template"

var formatTemplate *template.Template

func init() {
	formatTemplate = template.Must(template.New("").Funcs(template.FuncMap{
		"stmt":   formatStatement,
		"body":   formatBody,
		"indent": indent,
		"expr":   toExpr,
		"exprs":  toExprList,
		"typ":    typeName,
		"params": formalParams,
		"labels": caseLabels,
	}).Parse(sourceTemplate))
}

const sourceTemplate = `
{{- define "program" }}{{ range .Body }}{{ stmt . }}{{ end }}{{ end }}

{{- define "declare" }}DECLARE {{ .Name }} : {{ typ .DeclType }}
{{ end }}

{{- define "constant" }}CONSTANT {{ .Name }} = {{ .Value.Text }}
{{ end }}

{{- define "type" }}TYPE {{ .Record.Name }}
{{ range .Record.Fields }}    DECLARE {{ .Name }} : {{ typ .Type }}
{{ end }}ENDTYPE
{{ end }}

{{- define "assign" }}{{ expr .Target }} <- {{ expr .Value }}
{{ end }}

{{- define "block" }}{{ range .Statements }}{{ stmt . }}{{ end }}{{ end }}

{{- define "if" }}IF {{ expr .Condition }} THEN
{{ body .Then }}{{ if .Else }}ELSE
{{ body .Else }}{{ end }}ENDIF
{{ end }}

{{- define "case" }}CASE OF {{ expr .Selector }}
{{ range .Branches }}    {{ labels .Labels }} :
{{ body .Body | indent }}{{ end }}{{ if .Otherwise }}    OTHERWISE
{{ body .Otherwise | indent }}{{ end }}ENDCASE
{{ end }}

{{- define "while" }}WHILE {{ expr .Condition }} DO
{{ body .Body }}ENDWHILE
{{ end }}

{{- define "repeat" }}REPEAT
{{ body .Body }}UNTIL {{ expr .Condition }}
{{ end }}

{{- define "for" }}FOR {{ .Counter.Name }} <- {{ expr .From }} TO {{ expr .To }}{{ if .Step }} STEP {{ expr .Step }}{{ end }}
{{ body .Body }}NEXT {{ .Counter.Name }}
{{ end }}

{{- define "input" }}INPUT {{ expr .Target }}
{{ end }}

{{- define "output" }}OUTPUT {{ exprs .Values }}
{{ end }}

{{- define "routine" }}
{{- if .IsFunction }}FUNCTION {{ .Name }}{{ params .Params }} RETURNS {{ typ .Returns }}
{{ body .Body }}ENDFUNCTION
{{ else }}PROCEDURE {{ .Name }}{{ params .Params }}
{{ body .Body }}ENDPROCEDURE
{{ end }}
{{- end }}

{{- define "call" }}CALL {{ .Call.Name }}{{ if .Call.Args }}({{ exprs .Call.Args }}){{ end }}
{{ end }}

{{- define "return" }}RETURN{{ if .Value }} {{ expr .Value }}{{ end }}
{{ end }}

{{- define "openfile" }}OPENFILE {{ expr .File }} FOR {{ .Mode }}
{{ end }}

{{- define "readfile" }}READFILE {{ expr .File }}, {{ expr .Target }}
{{ end }}

{{- define "writefile" }}WRITEFILE {{ expr .File }}, {{ expr .Value }}
{{ end }}

{{- define "closefile" }}CLOSEFILE {{ expr .File }}
{{ end }}
`
