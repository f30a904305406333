package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	JSON bool `help:"Print the index as JSON"`
}

type indexEntry struct {
	Key    string `json:"key"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	rt, err := openRuntime(g, root)
	if err != nil {
		return err
	}
	defer rt.Close()

	ix, err := rt.buildIndex(context.Background())
	if err != nil {
		return err
	}

	entries := make([]indexEntry, 0, ix.Len())
	for _, key := range ix.Keys() {
		d, _ := ix.Lookup(key)
		entries = append(entries, indexEntry{Key: key, Kind: d.Kind.String(), Path: d.Path, Width: d.Width, Height: d.Height})
	}

	if i.JSON {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tKIND\tPATH\tSIZE")
	for _, e := range entries {
		size := "-"
		if e.Width > 0 {
			size = fmt.Sprintf("%dx%d", e.Width, e.Height)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Kind, e.Path, size)
	}
	return tw.Flush()
}
