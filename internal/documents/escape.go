package documents

import "strings"

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
)

// EscapeLaTeX escapes the characters LaTeX treats specially: \ { } $ & % # ^ _ ~
func EscapeLaTeX(text string) string {
	return latexEscaper.Replace(text)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
)

// EscapeMarkdown escapes inline emphasis, link and HTML markers.
func EscapeMarkdown(text string) string {
	text = markdownEscaper.Replace(text)
	if strings.HasPrefix(text, "#") {
		text = `\` + text
	}
	return text
}

func escaperFor(f Format) func(string) string {
	switch f {
	case FormatLaTeX:
		return EscapeLaTeX
	case FormatMarkdown:
		return EscapeMarkdown
	default:
		return func(s string) string { return s }
	}
}
