package vault

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffText produces a unified-style line diff between a snapshot and the
// current slot content. Returns the rendered diff and whether any change
// was found.
func DiffText(snapshot, current string) (string, bool) {
	if snapshot == current {
		return "", false
	}

	dmp := diffmatchpatch.New()

	// Line-level diff: compare whole lines, not characters
	a, b, lineArray := dmp.DiffLinesToChars(snapshot, current)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range splitKeepNonEmpty(d.Text) {
			out.WriteString(prefix)
			out.WriteString(line)
			out.WriteString("\n")
		}
	}

	return out.String(), true
}

func splitKeepNonEmpty(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return lines
}
