// Package backend implements the per-scheme adapters for spyglass.
//
// Each backend is a Factory plus payload types that carry their own
// rendering capabilities (tabular shape, grep lines, text formatting).
// Backends stay thin: enough domain depth to browse the resource, no
// analytics.
//
// # Schemes
//
// env, runtime, and proc introspect the running host. sqlite, json,
// yaml, csv, and xlsx browse local files. git browses a repository's
// refs and history. dns, ssh, and portscan touch the network and take
// bounded timeouts from configuration.
package backend

import (
	"spyglass/internal/codec"
	"spyglass/internal/config"
	"spyglass/internal/registry"
)

// Entries returns the startup registration list, in a fixed order. The
// CLI passes it to registry.New exactly once per process.
func Entries(cfg *config.Config) []registry.Entry {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return []registry.Entry{
		{
			Scheme:   "env",
			Factory:  newEnv,
			Renderer: codec.NewElements(),
			Help:     helpText("env://NAME - look up one environment variable, env:// for all"),
			Schema:   schema(map[string]string{"element": "explicit variable name"}),
		},
		{
			Scheme:   "runtime",
			Factory:  newRuntime,
			Renderer: codec.NewGeneric(),
			Help:     helpText("runtime:// - Go runtime statistics of this process"),
		},
		{
			Scheme:   "proc",
			Factory:  newProcs,
			Renderer: codec.NewElements(),
			Help:     helpText("proc://PID - inspect a process, proc:// to list processes"),
			Schema:   schema(map[string]string{"limit": "max processes listed"}),
		},
		{
			Scheme:   "sqlite",
			Factory:  sqliteFactory(cfg),
			Renderer: codec.NewGeneric(),
			Help:     helpText("sqlite:///path/db.sqlite[?table=name] - browse an SQLite database"),
			Schema:   schema(map[string]string{"table": "table to dump", "limit": "max rows"}),
		},
		{
			Scheme:   "json",
			Factory:  newJSONDoc,
			Renderer: codec.NewGeneric(),
			Help:     helpText("json:///path/doc.json[?path=a.b.c] - browse a JSON document"),
			Schema:   schema(map[string]string{"path": "gjson lookup path"}),
		},
		{
			Scheme:   "yaml",
			Factory:  newYAMLDoc,
			Renderer: codec.NewGeneric(),
			Help:     helpText("yaml:///path/doc.yaml - summarize a YAML document"),
		},
		{
			Scheme:   "csv",
			Factory:  csvFactory(cfg),
			Renderer: codec.NewGeneric(),
			Help:     helpText("csv:///path/data.csv[?limit=n] - browse a CSV file"),
			Schema:   schema(map[string]string{"limit": "max sample rows"}),
		},
		{
			Scheme:   "xlsx",
			Factory:  xlsxFactory(cfg),
			Renderer: codec.NewGeneric(),
			Help:     helpText("xlsx:///path/book.xlsx[?sheet=0&limit=n] - browse a spreadsheet"),
			Schema:   schema(map[string]string{"sheet": "sheet name or index", "limit": "max rows"}),
		},
		{
			Scheme:   "git",
			Factory:  gitFactory(cfg),
			Renderer: codec.NewGeneric(),
			Help:     helpText("git:///path/repo[?ref=name] - browse repository refs and history"),
			Schema:   schema(map[string]string{"ref": "revision to resolve", "limit": "max commits"}),
		},
		{
			Scheme:   "dns",
			Factory:  dnsFactory(cfg),
			Renderer: codec.NewElements(),
			Help:     helpText("dns://name[?type=MX&server=host] - query DNS records"),
			Schema:   schema(map[string]string{"type": "record type (A, AAAA, MX, TXT, CNAME, NS)", "server": "nameserver override"}),
		},
		{
			Scheme:   "ssh",
			Factory:  sshFactory(cfg),
			Renderer: codec.NewGeneric(),
			Help:     helpText("ssh://host[:port] - probe an SSH endpoint (banner, host key, auth methods)"),
		},
		{
			Scheme:   "portscan",
			Factory:  portscanFactory(cfg),
			Renderer: codec.NewGeneric(),
			Help:     helpText("portscan://host[?ports=22,80] - survey open ports (requires nmap)"),
			Schema:   schema(map[string]string{"ports": "port list or range"}),
		},
	}
}

func helpText(s string) func() string {
	return func() string { return s }
}

func schema(m map[string]string) func() map[string]string {
	return func() map[string]string { return m }
}
