package api

import (
	"io"
	"strings"
)

var sseSanitizer = strings.NewReplacer("\r", "", "\x00", "")

// writeEvent frames one fragment as a server-sent event. Embedded newlines
// become separate data lines so the client can rebuild them.
func writeEvent(w io.Writer, fragment string) error {
	fragment = sseSanitizer.Replace(fragment)

	var sb strings.Builder
	for _, line := range strings.Split(fragment, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}
