// Command ctx indexes a codebase and serves hybrid search over it from the
// command line.
package main

import "github.com/ctxengine/ctx/internal/cli"

func main() {
	cli.Execute()
}
