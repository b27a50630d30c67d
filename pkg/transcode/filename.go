package transcode

import "strings"

// DefaultFileTitle is used when a recording has no title.
const DefaultFileTitle = "meeting-recording"

// FileName turns a user-facing title into a file name: characters outside
// [A-Za-z0-9] become underscores, the result is lower-cased, and ext is
// appended. An empty title uses DefaultFileTitle.
func FileName(title, ext string) string {
	if title == "" {
		title = DefaultFileTitle
	}
	var b strings.Builder
	b.Grow(len(title) + len(ext))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString(ext)
	return b.String()
}
