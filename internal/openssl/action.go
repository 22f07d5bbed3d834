// Package openssl invokes the openssl command-line tool.
//
// An Action such as "req.new" names a subcommand and its leading flags. The
// options of a call are rendered into argv, the tool is spawned, an optional
// input buffer is streamed to its stdin, and the result is classified as
// success or failure. openssl reports several successes on stderr, so a
// call with exit status zero may still fail when its stderr does not match
// the expected pattern registered for the action.
package openssl

import "strings"

// Action is a dot-separated openssl operation, e.g. "cms.verify".
// The first segment is the subcommand; later segments become flags.
type Action string

// Args renders the action as argv: "x509.req" becomes ["x509", "-req"].
// Empty segments are not rejected; "" renders as [""].
func (a Action) Args() []string {
	segs := strings.Split(string(a), ".")
	for i := 1; i < len(segs); i++ {
		segs[i] = "-" + segs[i]
	}
	return segs
}

