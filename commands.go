package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/database"
	"github.com/CrowderSoup/taskboard/services"
)

var errMissingSecret = errors.New("jwt secret is not configured (set JWT_SECRET or [auth] jwt-secret)")

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Open(opts.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := store.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <actor>",
		Short: "Issue a bearer token for an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Auth.JWTSecret == "" {
				return errMissingSecret
			}
			if ttl == 0 {
				ttl = opts.cfg.Auth.TokenTTL
			}
			token, err := services.NewAuthService(opts.cfg.Auth.JWTSecret).CreateToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to the configured token-ttl)")
	return cmd
}

func newTreeCommand(opts *rootOptions) *cobra.Command {
	var (
		check  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tree <actor>",
		Short: "Print an actor's boards, columns, tasks and subtasks in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Open(opts.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			tree, err := store.Tree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if check {
				if err := board.CheckDensity(tree); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tree.WithoutTimestamps())
			}
			printTree(out, tree)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail unless every sibling group is densely indexed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON without timestamps")
	return cmd
}

type treeStyles struct {
	board   lipgloss.Style
	column  lipgloss.Style
	done    lipgloss.Style
	current lipgloss.Style
}

func newTreeStyles(w io.Writer) treeStyles {
	r := lipgloss.NewRenderer(w)
	return treeStyles{
		board:   r.NewStyle().Bold(true),
		column:  r.NewStyle().Foreground(lipgloss.Color("33")),
		done:    r.NewStyle().Faint(true).Strikethrough(true),
		current: r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// printTree writes the same layout as board.Outline, styled for terminals.
// Styling drops out when w is not a terminal.
func printTree(w io.Writer, tree board.Tree) {
	st := newTreeStyles(w)
	item := func(indent string, index int, completed bool, name string) {
		box := "[ ]"
		if completed {
			box = "[x]"
			name = st.done.Render(name)
		}
		fmt.Fprintf(w, "%s%d. %s %s\n", indent, index, box, name)
	}

	for _, b := range tree.Boards {
		line := fmt.Sprintf("%d. %s", b.Index, st.board.Render(b.Name))
		if b.Current {
			line += " " + st.current.Render("*")
		}
		fmt.Fprintln(w, line)
		for _, c := range b.Columns {
			fmt.Fprintf(w, "  %d. %s\n", c.Index, st.column.Render(c.Name))
			for _, tk := range c.Tasks {
				item("    ", tk.Index, tk.Completed, tk.Name)
				for _, s := range tk.Subtasks {
					item("      ", s.Index, s.Completed, s.Name)
				}
			}
		}
	}
}

func newApplyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <actor> <file>",
		Short: "Apply a JSON batch of actions as one transaction",
		Long: `Apply reads a JSON batch, either an array of {"type","payload"} envelopes
or an object with an "actions" array, and applies it atomically for actor.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := readBatch(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			store, err := database.Open(opts.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			rec := &services.Recorder{}
			mutator := database.NewMutator(store,
				database.WithInvalidator(rec),
				database.WithLogger(opts.logger),
			)
			if err := mutator.ApplyAll(cmd.Context(), args[0], actions); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "applied %d actions for %s\n", len(actions), args[0])
			for _, owner := range rec.Owners() {
				fmt.Fprintf(out, "invalidated %s\n", owner)
			}
			return nil
		},
	}
}

func readBatch(stdin io.Reader, path string) ([]board.Action, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	var envs []board.Envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		var wrapped struct {
			Actions []board.Envelope `json:"actions"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return nil, fmt.Errorf("parse batch: %w", err)
		}
		envs = wrapped.Actions
	}
	return board.DecodeBatch(envs)
}
