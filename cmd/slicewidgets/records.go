package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/slicewidgets/internal/snapshot"
	"github.com/jask/slicewidgets/internal/widget"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect the saved widget records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved widgets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		recs, err := e.archive.Load(cmd.Context())
		if err != nil {
			return err
		}
		return listRecords(cmd.OutOrStdout(), recs)
	},
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write saved widgets as toml or json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		recs, err := e.archive.Load(cmd.Context())
		if err != nil {
			return err
		}
		if out != "" {
			if err := snapshot.Save(out, recs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", len(recs), out)
			return nil
		}
		return snapshot.Encode(cmd.OutOrStdout(), format, recs)
	},
}

var recordsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace saved widgets with the records in a toml or json file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := snapshot.Load(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.archive.Save(cmd.Context(), recs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", len(recs))
		return nil
	},
}

var recordsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved widget",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		n, err := e.archive.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records\n", n)
		return nil
	},
}

func init() {
	recordsExportCmd.Flags().String("format", snapshot.FormatTOML, "output format (toml|json)")
	recordsExportCmd.Flags().String("out", "", "write to this file instead of stdout; the extension picks the format")
	recordsCmd.AddCommand(recordsListCmd, recordsExportCmd, recordsImportCmd, recordsClearCmd)
}

func listRecords(w io.Writer, recs []widget.Record) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "no saved widgets")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTYPE\tNAME\tVERSION\tSUMMARY")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Type, r.Name, r.Version, summary(r))
	}
	return tw.Flush()
}

func summary(r widget.Record) string {
	if l, ok := widget.Float(r.Data["length"]); ok {
		return fmt.Sprintf("length %.2f", l)
	}
	if p, ok := widget.Vec3(r.Data["position"]); ok {
		return fmt.Sprintf("at (%g, %g, %g)", p[0], p[1], p[2])
	}
	return ""
}
