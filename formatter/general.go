package formatter

// Template fragments shared by every issue formatter.
const (
	issueHead = `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent}}
`
	issueSuggestion = `
{{- if .Suggestion }}
{{suggestion .Suggestion .Padding .MaxLineNumWidth .StartLine}}
{{- end }}
`
	issueNote = `
{{- if .Note }}
{{note .Note}}
{{- end }}
`
)

// GeneralIssueFormatter renders issues of rules without a dedicated
// formatter: the flagged span, then the issue's own suggestion and note.
type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return issueHead + issueSuggestion + issueNote
}
