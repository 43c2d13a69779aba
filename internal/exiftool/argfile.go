package exiftool

import (
	"strings"

	"github.com/bbcollection-th/takeout-merge/internal/merge"
)

// commonArgs apply to every command block in an argument file. UTF-8 on
// both tag values and filenames, NoDups as a second guard on list tags,
// no "_original" backup copies (the sidecar itself is the undo record).
// No -q: the "image files unchanged" stdout summary is what reveals
// create-only writes that found existing values.
var commonArgs = []string{
	"-charset", "utf8",
	"-charset", "filename=utf8",
	"-api", "NoDups=1",
	"-overwrite_original",
}

// RenderArgfile produces the exiftool -@ argument file content for a
// batch. Each entry becomes one command block (its directives, the media
// path, then -execute); the shared flags follow a single -common_args.
// One argument per line, no quoting: exiftool's argfile format takes each
// line literally, which is what makes arbitrary filenames safe here.
func RenderArgfile(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		renderDirectives(&b, e.Plan)
		b.WriteString(e.MediaPath)
		b.WriteString("\n-execute\n")
	}
	b.WriteString("-common_args\n")
	for _, a := range commonArgs {
		b.WriteString(a)
		b.WriteString("\n")
	}
	return b.String()
}

func renderDirectives(b *strings.Builder, plan merge.DirectiveList) {
	for _, d := range plan {
		v := flatten(d.Value)
		switch d.Op {
		case merge.RawFlag:
			b.WriteString("-" + d.Tag + "\n" + v + "\n")
		case merge.SetIfAbsent, merge.SetUnconditional:
			b.WriteString("-" + d.Tag + "=" + v + "\n")
		case merge.RemoveValue:
			b.WriteString("-" + d.Tag + "-=" + v + "\n")
		case merge.AddValue:
			b.WriteString("-" + d.Tag + "+=" + v + "\n")
		}
	}
}

// flatten collapses line breaks inside a value. The argfile format is one
// argument per line, so an embedded newline would split the argument.
func flatten(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	v = strings.ReplaceAll(v, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
