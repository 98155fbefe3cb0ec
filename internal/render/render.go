// Package render substitutes $(Name) placeholders and produces the source
// fragments the generator splices into its templates.
package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/muesli/reflow/indent"

	"github.com/timmattison/gitinfo/internal/records"
)

// Unknown replaces placeholders that have no value in the context.
const Unknown = "<unknown>"

var placeholder = regexp.MustCompile(`\$\(([^)]*)\)`)

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", `\r`, "\n", `\n`)

// Render replaces every $(Name) in template with its context value. Values
// are inserted as-is and never scanned for further placeholders.
func Render(template string, ctx *Context) string {
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		if value, ok := ctx.Get(match[2 : len(match)-1]); ok {
			return value
		}

		return Unknown
	})
}

// Placeholders lists the distinct names referenced by template in order of
// first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := map[string]bool{}

	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}

	return names
}

// Escape makes a value safe to place between double quotes or on a single
// comment line.
func Escape(value string) string {
	return escaper.Replace(value)
}

// CommentDump writes one "// Name: Value" line per context entry.
func CommentDump(ctx *Context) string {
	var sb strings.Builder

	for _, e := range ctx.Entries() {
		fmt.Fprintf(&sb, "// %s: %s\n", e.Name, Escape(e.Value))
	}

	return sb.String()
}

// PropertyDump writes one `"Name": "Value",` map literal entry per context
// entry.
func PropertyDump(ctx *Context) string {
	var sb strings.Builder

	for _, e := range ctx.Entries() {
		fmt.Fprintf(&sb, "\"%s\": \"%s\",\n", Escape(e.Name), Escape(e.Value))
	}

	return sb.String()
}

// Declaration renders a single constant. String values are quoted verbatim;
// every other type is written unquoted as its literal value.
func Declaration(r records.Record) string {
	if r.Type == records.TypeString {
		return fmt.Sprintf("%s %s = \"%s\"", r.Name, r.Type, r.Value)
	}

	return fmt.Sprintf("%s %s = %s", r.Name, r.Type, r.Value)
}

// Constants renders a const block holding every non-debug record, or the
// empty string when there is nothing to emit. Names in exclude are already
// declared elsewhere in the file and are skipped.
func Constants(list []records.Record, exclude ...string) string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	var body strings.Builder

	for _, r := range list {
		if r.IsDebug() || skip[r.Name] {
			continue
		}

		body.WriteString(Declaration(r))
		body.WriteByte('\n')
	}

	if body.Len() == 0 {
		return ""
	}

	return "const (\n" + Indent(body.String()) + ")\n"
}

// Indent prefixes every line of s with a tab.
func Indent(s string) string {
	w := indent.NewWriter(1, func(w io.Writer) {
		_, _ = w.Write([]byte("\t"))
	})
	_, _ = w.Write([]byte(s))

	return w.String()
}
