package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brain2-conceptmap/internal/config"
	domain "brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/repository/file"
	"brain2-conceptmap/internal/repository/memory"
	"brain2-conceptmap/internal/service/conceptmap"
	"brain2-conceptmap/internal/service/connections"
	"brain2-conceptmap/internal/service/llm"
)

var layoutCmd = &cobra.Command{
	Use:   "layout NOTES_FILE",
	Short: "Compute a frame for a notes file and print it as JSON",
	Long: `layout reads notes from a YAML file, lays them out with the configured
canvas and tunables and writes the resulting frame to stdout.

With --connections the mock suggester links consecutive concepts of every
note, which is enough to preview highlighting without an LLM.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().String("expand", "", "note id to expand")
	layoutCmd.Flags().String("select", "", "concept to select, as NOTE_ID/LABEL")
	layoutCmd.Flags().Bool("connections", false, "load mock connections before rendering")
	layoutCmd.Flags().Bool("compact", false, "print JSON without indentation")

	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	notes, err := file.ReadNotes(args[0])
	if err != nil {
		return err
	}

	expand, _ := cmd.Flags().GetString("expand")
	selectKey, _ := cmd.Flags().GetString("select")
	withConnections, _ := cmd.Flags().GetBool("connections")
	compact, _ := cmd.Flags().GetBool("compact")

	frame, err := renderFrame(cmd.Context(), cfg, notes, layoutOptions{
		expand:      expand,
		selectKey:   selectKey,
		connections: withConnections,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), frame, !compact)
}

type layoutOptions struct {
	expand      string
	selectKey   string
	connections bool
}

func renderFrame(ctx context.Context, cfg *config.Config, notes []domain.Note, opts layoutOptions) (conceptmap.Frame, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := zap.NewNop()

	var suggester connections.Suggester = connections.SuggesterFunc(
		func(context.Context, []string) ([]connections.Suggestion, error) { return nil, nil })
	if opts.connections {
		suggester = llm.NewService(llm.NewMockProvider(), cfg.LLM.Timeout, logger)
	}

	session := conceptmap.NewSession(memory.NewStore(notes...), connections.NewLoader(suggester, logger, nil),
		nil, nil, cfg.LayoutConfig(), cfg.ViewSettings(), logger)
	defer session.Close()

	if _, err := session.Refresh(ctx); err != nil {
		return conceptmap.Frame{}, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := session.Wait(waitCtx); err != nil {
		return conceptmap.Frame{}, err
	}

	if opts.expand != "" {
		if _, err := session.Dispatch(ctx, conceptmap.Event{Type: conceptmap.EventExpand, NoteID: opts.expand}); err != nil {
			return conceptmap.Frame{}, err
		}
	}
	if opts.selectKey != "" {
		noteID, label, ok := strings.Cut(opts.selectKey, "/")
		if !ok {
			return conceptmap.Frame{}, fmt.Errorf("--select wants NOTE_ID/LABEL, got %q", opts.selectKey)
		}
		if _, err := session.Dispatch(ctx, conceptmap.Event{Type: conceptmap.EventSelect, NoteID: noteID, Label: label}); err != nil {
			return conceptmap.Frame{}, err
		}
	}
	return session.Frame(), nil
}

func writeJSON(w io.Writer, v interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
