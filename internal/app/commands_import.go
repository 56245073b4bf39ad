package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/extract"
	"github.com/optipresta/optipresta/internal/store"
	"github.com/optipresta/optipresta/internal/xlsximport"
)

var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var kind string
	var save bool
	var endpoint, apiKey string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Extract a sheet from a workbook, a photo, or raw text",
		Long: "Sends the file through the structured-extraction service and prints the\n" +
			"resulting sheet body. Nothing is written unless --save is passed; a failed\n" +
			"or partial extraction never touches the store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, st, ro, err := buildContext(cmd, opts, "import")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			resolvedEndpoint := firstNonEmpty(endpoint, ro.ExtractEndpoint)
			if resolvedEndpoint == "" {
				err := fmt.Errorf("no extraction endpoint configured")
				return failWithHint(p, contract.ErrInvalidUsage, err, "Set extract_endpoint in config or pass --endpoint", 2)
			}
			client := extract.NewClient(resolvedEndpoint, firstNonEmpty(apiKey, ro.ExtractAPIKey))

			data, err := runExtraction(cmd.Context(), client, args[0], kind)
			if err != nil {
				return failWithHint(p, contract.ErrExtractionFailed, err, "Check the file and the extraction service, then retry", 5)
			}
			if strings.TrimSpace(data.Entreprise) == "" {
				err := fmt.Errorf("extraction returned no company name")
				return failWithHint(p, contract.ErrExtractionFailed, err, "Retry with a sharper photo or a cleaner sheet", 5)
			}

			if !save {
				return p.Success(data, map[string]any{"saved": false}, nil)
			}
			ev := newEvent(*data, nowFunc())
			items, err := st.Load(context.Background())
			if err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			items = store.Upsert(items, ev)
			if err := st.Replace(context.Background(), items); err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			return p.Success(ev, map[string]any{"saved": true, "count": 1}, nil)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "auto", "Input kind: auto|xlsx|image|text")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the extracted sheet")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Extraction service URL override")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Extraction service API key override")
	return cmd
}

func runExtraction(ctx context.Context, client *extract.Client, path, kind string) (*contract.EventData, error) {
	resolved := strings.ToLower(strings.TrimSpace(kind))
	if resolved == "" || resolved == "auto" {
		resolved = detectKind(path)
	}
	switch resolved {
	case "xlsx":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text, err := xlsximport.Serialize(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("read workbook: %w", err)
		}
		return client.FromText(ctx, text)
	case "image":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mime, ok := imageMimeTypes[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil, fmt.Errorf("unsupported image type %s", filepath.Ext(path))
		}
		return client.FromImage(ctx, raw, mime)
	case "text":
		text, err := readTextInput(path)
		if err != nil {
			return nil, err
		}
		return client.FromText(ctx, text)
	default:
		return nil, fmt.Errorf("unknown input kind %q", kind)
	}
}

func detectKind(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		if _, ok := imageMimeTypes[ext]; ok {
			return "image"
		}
		return "text"
	}
}
