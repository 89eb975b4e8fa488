// Command isnad scaffolds, folds, and serves a local isnad workspace: two
// append-only JSONL logs projected into a derived Kanban board.
package main

import (
	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("isnad"),
		kong.Description("Two-log event/fold workspace and WebRTC signaling relay."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
