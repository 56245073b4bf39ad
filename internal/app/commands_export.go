package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ncruces/go-strftime"
	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/contract"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every sheet to a timestamped JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "export")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			items, err := st.Load(context.Background())
			if err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			doc := struct {
				SchemaVersion string           `json:"schema_version"`
				Events        []contract.Event `json:"events"`
			}{SchemaVersion: contract.SchemaVersion, Events: items}
			raw, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return Wrap(1, err)
			}
			// The output name is an strftime template so cron jobs get
			// dated files without shell date arithmetic.
			name := strftime.Format(out, nowFunc())
			if dir := filepath.Dir(name); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return failWithHint(p, contract.ErrGeneric, err, "Check the --out directory", 1)
				}
			}
			if err := os.WriteFile(name, raw, 0o644); err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check the --out path and permissions", 1)
			}
			return p.Success(map[string]any{"file": name}, map[string]any{"count": len(items)}, nil)
		},
	}
	cmd.Flags().StringVar(&out, "out", "optipresta-%Y%m%d-%H%M%S.json", "Output file, strftime placeholders allowed")
	return cmd
}
