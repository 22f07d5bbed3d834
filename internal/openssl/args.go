package openssl

import "strings"

// BuildArgs renders action and opts as the argv passed to openssl.
//
// The result is the action segments, then every option in insertion order,
// then the names of false flags in the order they were encountered. A false
// flag is not omitted: openssl receives its bare name as a trailing word.
func BuildArgs(action Action, opts *Options) []string {
	args := action.Args()
	var trailing []string

	opts.Each(func(name string, v Value) {
		switch v.kind {
		case KindFlag:
			if v.flag {
				args = append(args, "-"+name)
			} else {
				trailing = append(trailing, name)
			}
		case KindRepeated:
			for _, item := range v.list {
				args = append(args, "-"+name, item)
			}
		case KindScalar:
			args = append(args, name, v.scalar)
		case kindNone:
		}
	})

	return append(args, trailing...)
}

const redacted = "***"

// redactArgs returns a copy of args for logging with secrets masked: the
// password of a "pass:" source and the key given to -k or -K.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	maskNext := false
	for i, arg := range args {
		switch {
		case maskNext:
			out[i] = redacted
		case strings.HasPrefix(arg, "pass:"):
			out[i] = "pass:" + redacted
		default:
			out[i] = arg
		}
		maskNext = arg == "-k" || arg == "-K"
	}
	return out
}
