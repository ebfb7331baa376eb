package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/nickysemenza/gola"
	"github.com/robmorgan/stagehand/cuelist"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the cue chain from the start page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		show, err := cuelist.NewStore(cfg.ShowFile).Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range chain(show) {
			fmt.Fprintln(out, describePage(p))
		}
		fmt.Fprintf(out, "%d pages stored\n", show.Len())
		return nil
	},
}

var frameCmd = &cobra.Command{
	Use:   "frame [page]",
	Short: "Print the wire frame a page encodes to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		show, err := cuelist.NewStore(cfg.ShowFile).Load()
		if err != nil {
			return err
		}
		id := cuelist.StartPage
		if len(args) == 1 {
			id = cuelist.PageID(args[0])
		}
		p, ok := show.Page(id)
		if !ok {
			return fmt.Errorf("page %q: %w", id, cuelist.ErrPageNotFound)
		}
		fmt.Fprint(cmd.OutOrStdout(), cfg.Patch.EncodeFrame(p.Lights).String())
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read back the DMX universe from OLA",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := gola.New(cfg.Output.OLAAddress)
		if err != nil {
			return fmt.Errorf("could not connect to OLA: %w", err)
		}
		defer client.Close()

		x, err := client.GetDmx(cfg.Output.Universe)
		if err != nil {
			return fmt.Errorf("GetDmx: %d: %w", cfg.Output.Universe, err)
		}
		fmt.Fprint(cmd.OutOrStdout(), hex.Dump(x.Data))
		return nil
	},
}

// chain follows next links from the start page, stopping at the end of the
// chain or the first page seen twice.
func chain(show *cuelist.Show) []*cuelist.Page {
	seen := make(map[cuelist.PageID]bool)
	var pages []*cuelist.Page
	id := cuelist.StartPage
	for !seen[id] {
		seen[id] = true
		p, ok := show.Page(id)
		if !ok {
			break
		}
		pages = append(pages, p)
		next := show.Walk(id, 1)
		if next == id {
			break
		}
		id = next
	}
	return pages
}

func describePage(p *cuelist.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s", p.ID)
	if p.CountdownEnabled() {
		fmt.Fprintf(&b, " [%s -> %s]", p.Countdown.Round(time.Millisecond), timeoutTarget(p))
	}
	for _, name := range p.Lights.Names() {
		if v := p.Lights.Get(name); v > 0 {
			fmt.Fprintf(&b, " %s=%d", name, v)
		}
	}
	if p.Note != "" {
		fmt.Fprintf(&b, "  # %s", p.Note)
	}
	return b.String()
}

func timeoutTarget(p *cuelist.Page) string {
	if p.Links.Timeout == cuelist.NoPage {
		return "next"
	}
	return string(p.Links.Timeout)
}
