// Package main defines the isnad CLI structure using kong.
package main

// CLI defines the command-line interface.
type CLI struct {
	Init            InitCmd            `cmd:"" help:"Scaffold a new isnad workspace"`
	Fold            FoldCmd            `cmd:"" help:"Project the two logs into a derived board"`
	Serve           ServeCmd           `cmd:"" help:"Serve the local board UI over HTTP"`
	Board           BoardCmd           `cmd:"" help:"Open the interactive terminal board viewer"`
	Signal          SignalCmd          `cmd:"" help:"Run the WebRTC signaling relay"`
	AppendDirective AppendDirectiveCmd `cmd:"" name:"append-directive" help:"Append a directive to control.jsonl"`
	AppendLedger    AppendLedgerCmd    `cmd:"" name:"append-ledger" help:"Append a record to ledger.jsonl"`
	AckDirectives   AckDirectivesCmd   `cmd:"" name:"ack-directives" help:"Acknowledge outstanding directives into the ledger"`
	Version         VersionCmd         `cmd:"" help:"Show version information"`
}

// InitCmd scaffolds a new workspace.
type InitCmd struct {
	Root  string `default:"." help:"Workspace root"`
	Force bool   `help:"Rewrite derived state files even if present"`
}

// FoldCmd projects the two logs into a derived board.
type FoldCmd struct {
	Root     string  `default:"." help:"Workspace root"`
	Watch    bool    `help:"Re-fold whenever the logs change"`
	Interval float64 `default:"0.75" help:"Minimum seconds between watch-triggered folds"`
}

// ServeCmd serves the local board UI. Host/Port/Author/Via fall back to
// .isnad/config.toml, then to config.New()'s defaults, when left unset.
type ServeCmd struct {
	Root     string `default:"." help:"Workspace root"`
	Host     string `help:"Listen host (default: config, then 127.0.0.1)"`
	Port     int    `help:"Listen port (default: config, then 8787)"`
	NoOpen   bool   `name:"no-open" help:"Do not open a browser on start"`
	Author   string `help:"Author recorded on directives from this UI (default: config, then 'human')"`
	Via      string `help:"Meta.via recorded on directives from this UI (default: config, then 'board-ui')"`
	Operator string `default:"" help:"Optional meta.operator recorded on directives"`
}

// BoardCmd opens the interactive terminal board viewer.
type BoardCmd struct {
	Root string `default:"." help:"Workspace root"`
}

// SignalCmd runs the WebRTC signaling relay. Root only locates an optional
// .isnad/config.toml; the relay itself is not workspace-scoped. Host/Port/
// TTLSeconds fall back to that config, then to config.New()'s defaults,
// when left unset.
type SignalCmd struct {
	Root       string `default:"." help:"Directory to look for .isnad/config.toml in"`
	Host       string `help:"Listen host (default: config, then 127.0.0.1)"`
	Port       int    `help:"Listen port (default: config, then 9002)"`
	TTLSeconds int    `name:"ttl-seconds" help:"Session expiry after creation, in seconds (default: config, then 3600)"`
}

// AppendDirectiveCmd appends a directive to control.jsonl.
type AppendDirectiveCmd struct {
	Root      string `default:"." help:"Workspace root"`
	Type      string `required:"" help:"Directive type"`
	Task      string `default:"" help:"Task id (required for task-scoped types)"`
	Payload   string `default:"{}" help:"JSON object payload"`
	Rationale string `default:"" help:"Optional human-readable rationale"`
	Author    string `default:"human" help:"Author field"`
	Meta      string `default:"{}" help:"JSON object merged into meta"`
}

// AppendLedgerCmd appends a record to ledger.jsonl.
type AppendLedgerCmd struct {
	Root     string `default:"." help:"Workspace root"`
	Type     string `required:"" help:"Record type"`
	Topic    string `default:"" help:"Optional topic"`
	Task     string `default:"" help:"Optional task id"`
	Claim    string `default:"" help:"Optional claim"`
	Action   string `default:"" help:"Optional action"`
	Artifact string `default:"" help:"Optional artifact reference"`
	Evidence string `default:"" help:"Optional evidence reference"`
	Next     string `default:"" help:"Optional next_decision"`
	Meta     string `default:"{}" help:"JSON object merged into meta"`
}

// AckDirectivesCmd acknowledges outstanding directives.
type AckDirectivesCmd struct {
	Root   string `default:"." help:"Workspace root"`
	Limit  int    `default:"0" help:"Stop after this many acknowledgements (0 = unlimited)"`
	Actor  string `default:"agent" help:"Recorded as meta.ack_actor"`
	DryRun bool   `name:"dry-run" help:"Print receipts instead of writing the ledger"`
}

// VersionCmd shows version information.
type VersionCmd struct{}
