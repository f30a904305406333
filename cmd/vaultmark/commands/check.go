package commands

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/frontmatter"
	"git.home.luguber.info/inful/vaultmark/internal/pipeline"
	"git.home.luguber.info/inful/vaultmark/internal/wikilink"
)

// errCheckFailed makes the process exit with status 1.
var errCheckFailed = stderrors.New("vault check found problems")

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Format string `help:"Output format" enum:"text,json" default:"text"`
}

// Finding is one problem reported by check.
type Finding struct {
	Kind     string `json:"kind"`
	Document string `json:"document"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Target   string `json:"target"`
	Message  string `json:"message"`
	// Warning findings do not fail the check.
	Warning bool `json:"warning,omitempty"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	rt, err := openRuntime(g, root)
	if err != nil {
		return err
	}
	defer rt.Close()

	ix, err := rt.buildIndex(ctx)
	if err != nil {
		return err
	}
	tr, err := rt.transformer(ix)
	if err != nil {
		return err
	}

	var findings []Finding
	var jobs []pipeline.Job
	for _, d := range ix.Documents() {
		raw, err := os.ReadFile(filepath.Join(rt.cfg.Vault.Root, filepath.FromSlash(strings.TrimPrefix(d.Path, "/"))))
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "read note").WithContext("path", d.Path).Build()
		}
		jobs = append(jobs, pipeline.Job{Path: d.Path, Source: raw})

		block, err := frontmatter.Split(raw)
		if err != nil {
			findings = append(findings, Finding{Kind: "invalid_front_matter", Document: d.Path, Message: err.Error()})
			continue
		}
		offset := bytes.Count(raw[:len(raw)-len(block.Body)], []byte("\n"))
		findings = append(findings, brokenReferences(tr.Resolver(), d.Path, block.Body, offset)...)
	}

	// Transforming surfaces embed problems that a static scan cannot see.
	tr.TransformAll(ctx, jobs)
	findings = append(findings, embedFindings(rt.diagnostics.All())...)
	slices.SortStableFunc(findings, func(a, b Finding) int {
		if a.Document != b.Document {
			return strings.Compare(a.Document, b.Document)
		}
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Column - b.Column
	})

	if err := writeFindings(g, c.Format, findings); err != nil {
		return err
	}
	for _, f := range findings {
		if !f.Warning {
			return errCheckFailed
		}
	}
	return nil
}

// brokenReferences scans a note body. lineOffset accounts for the front
// matter so lines match the file on disk.
func brokenReferences(r *wikilink.Resolver, path string, body []byte, lineOffset int) []Finding {
	var out []Finding
	for _, occ := range wikilink.ExtractReferences(body) {
		if r.Resolve(occ.Reference).Kind != wikilink.BrokenLink {
			continue
		}
		out = append(out, Finding{
			Kind:     string(diagnostics.KindBrokenLink),
			Document: path,
			Line:     occ.Line + lineOffset,
			Column:   occ.Column,
			Target:   occ.RawTarget,
			Message:  "unresolved reference",
		})
	}
	return out
}

// embedFindings keeps the embed diagnostics, once per document and target.
func embedFindings(diags []diagnostics.Diagnostic) []Finding {
	seen := map[string]struct{}{}
	var out []Finding
	for _, d := range diags {
		if d.Kind == diagnostics.KindBrokenLink {
			continue
		}
		key := string(d.Kind) + "\x00" + d.Document + "\x00" + d.Target
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		msg := d.Message()
		if d.Err != nil {
			msg += ": " + d.Err.Error()
		}
		out = append(out, Finding{
			Kind:     string(d.Kind),
			Document: d.Document,
			Target:   d.Target,
			Message:  msg,
			Warning:  d.Kind == diagnostics.KindEmbedDepthExceeded,
		})
	}
	return out
}

func writeFindings(g *Global, format string, findings []Finding) error {
	if format == "json" {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		if findings == nil {
			findings = []Finding{}
		}
		return enc.Encode(findings)
	}
	if len(findings) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No problems found")
		return nil
	}
	for _, f := range findings {
		loc := f.Document
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", f.Document, f.Line, f.Column)
		}
		level := "error"
		if f.Warning {
			level = "warning"
		}
		_, _ = fmt.Fprintf(g.Out, "%s: %s: %s [[%s]] (%s)\n", loc, level, f.Message, f.Target, f.Kind)
	}
	return nil
}
