// Package uaparser classifies user-agent strings into browser, rendering
// engine, operating system, device and CPU architecture.
//
// Every category is an ordered table of rule groups. A group holds one or
// more alternative regexes and a list of field specs; the first group with a
// matching alternative wins and spec i binds capture group i+1 of that
// alternative to a record field, either verbatim (Direct), as a fixed value
// (Constant), through a named transform (Computed), or after a regex
// replacement (ReplaceThen). Alias maps normalize raw tokens such as
// "NT 6.1" to canonical names such as "7".
//
// The built-in tables are embedded in the package and compiled once:
//
//	p, err := uaparser.New(uaparser.WithUserAgent(ua))
//	if err != nil {
//		return err
//	}
//	fmt.Println(p.Browser().Name, p.OS().Version, p.Device().Type)
//
// Custom groups are evaluated ahead of the built-in ones:
//
//	p, err := uaparser.New(uaparser.WithExtensionsYAML([]byte(`
//	browser:
//	  - regex_flag: i
//	    regexes: ['(mybrowser)\/([\w\.]+)']
//	    fields: [name, version]
//	`)))
//
// Patterns are compiled with an RE2 engine. Patterns that need lookaround
// or backreferences fall back to a backtracking engine bounded by a match
// timeout. A pattern neither engine accepts fails the load.
//
// Matching never returns an error: a subject nothing matches yields a record
// with every field empty.
package uaparser
