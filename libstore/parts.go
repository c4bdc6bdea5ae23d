package libstore

import (
	"strings"
)

const none = "<none>"

// decompose splits an image name list into the repository and tag to
// display for it. The first name wins; a trailing digest reference is
// dropped before splitting. The split is on the last colon, except
// when the text after it contains a slash, in which case the colon is
// part of a registry host:port and the name is untagged.
func decompose(names []string) (repository string, tag string) {
	if len(names) == 0 {
		return none, none
	}
	name := names[0]

	if i := strings.Index(name, "@sha256:"); i != -1 {
		name = name[:i]
	}

	i := strings.LastIndex(name, ":")
	if i == -1 {
		return name, "latest"
	}
	if strings.Contains(name[i+1:], "/") {
		return name, "latest"
	}
	return name[:i], name[i+1:]
}
