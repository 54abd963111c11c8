package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"canaswarm/entities"
	"canaswarm/pkg/report"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readRecommendations decodes a recommendations file. .yaml and .yml files
// are converted to JSON first so both formats share the JSON field names.
func readRecommendations(path string) (*entities.FieldRecommendations, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	var rec entities.FieldRecommendations
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rec, nil
}

func newIngestCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.json|file.yaml>",
		Short: "Store recommendations and generate a decision",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			rec, err := readRecommendations(args[0])
			if err != nil {
				return err
			}
			res, err := a.fields.Ingest(rec)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		}),
	}
}

func newDecisionCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "decision <field_id>",
		Short: "Print the current decision, generating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			d, err := a.fields.Decision(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		}),
	}
}

func newRecomputeCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <field_id>",
		Short: "Regenerate the decision from the stored recommendations",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			d, err := a.fields.Recompute(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		}),
	}
}

func newHistoryCmd(o *overrides) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <field_id>",
		Short: "Print past decisions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			hist, err := a.fields.History(args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), hist)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entries (default HISTORY_LIMIT)")
	return cmd
}

func newFieldsCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List fields with their latest decision",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app, _ []string) error {
			fields, err := a.fields.ListFields()
			if err != nil {
				return err
			}
			if fields == nil {
				fields = []entities.FieldListing{}
			}
			return printJSON(cmd.OutOrStdout(), fields)
		}),
	}
}

func newStatsCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print storage counters",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app, _ []string) error {
			st, err := a.fields.Stats()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		}),
	}
}

func newExportCmd(o *overrides) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <field_id>",
		Short: "Write the current decision as an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app, args []string) error {
			d, err := a.fields.Decision(args[0])
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = fmt.Sprintf("decision_%s.xlsx", entities.NormalizeFieldID(d.FieldID))
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := report.WriteDecisionWorkbook(f, d); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.log.Info("decision exported", zap.String("field_id", d.FieldID), zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default decision_<field>.xlsx)")
	return cmd
}
