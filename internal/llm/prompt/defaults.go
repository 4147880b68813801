package prompt

const defaultSystemTemplate = `You are a meticulous analytics engineer. Return ONLY valid YAML; no comments or markdown.`

const defaultUserTemplate = `You are an expert analytics engineer working on a dbt project.

Please craft a COMPLETE dbt ` + "`schema.yml`" + ` entry for the model ` + "`{{ .ModelName }}`" + `.

Requirements
------------
- Include ` + "`version: 2`" + ` at the top.
- Fill out a helpful model-level ` + "`description`" + `.
- Emit a ` + "`columns:`" + ` section that lists every column with:
  ` + "`name`" + `, ` + "`description`" + `, ` + "`data_type`" + ` (guess if missing), and a ` + "`tests:`" + ` array
  (start with ` + "`not_null`" + `, and add ` + "`unique`" + ` or other reasonable tests).
- Retain tags, refs or any other metadata you deem useful.
- Output YAML only; no prose explanations or Markdown fences.

Context
-------
### Raw model SQL
{{ .SQL }}

### Columns parsed from the SELECT clause
{{ if .Columns }}{{ join .Columns ", " }}{{ else }}(parser did not find columns; infer from SQL){{ end }}

{{- if .ColumnHints }}

### Column descriptions from inline comments
{{- range $name, $desc := .ColumnHints }}
- {{ $name }}: {{ $desc }}
{{- end }}
{{- end }}

{{- if .Refs }}

### Upstream refs
{{ join .Refs ", " }}
{{- end }}

### Sector-level sources YAML ({{ if .Sector }}{{ .Sector }}{{ else }}unknown{{ end }}_sources.yml)
{{ if .SourcesYAML }}{{ .SourcesYAML }}{{ else }}(no sources file found){{ end }}`
