// Command cqs is the single binary exposing the cqs command-line
// surface: indexing, watching, hybrid search, call-graph queries, and
// the composite commands, over one project's .cqs/ store.
package main

import (
	"github.com/jamie8johnson/cqs/internal/cli"
)

func main() {
	cli.Execute()
}
