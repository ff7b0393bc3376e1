package formatter

// EmptyBodyFormatter reports `receiver.[]` and proposes the line without
// the empty suffix.
type EmptyBodyFormatter struct{}

const emptyBodySuggestion = `
{{- with withoutSpan .SnippetLines .StartLine .StartColumn .EndColumn .CommonIndent }}
{{suggestion . $.Padding $.MaxLineNumWidth $.StartLine}}
{{- end }}
`

func (f *EmptyBodyFormatter) IssueTemplate() string {
	return issueHead + emptyBodySuggestion + issueNote
}
