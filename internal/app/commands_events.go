package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/frdate"
	"github.com/optipresta/optipresta/internal/schedule"
	"github.com/optipresta/optipresta/internal/store"
)

var nowFunc = time.Now

func newEventsCmd(opts *globalOptions) *cobra.Command {
	events := &cobra.Command{Use: "events", Short: "Prestation sheet resources"}

	var listFlat bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List sheets grouped by week, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "events.list")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			items, err := st.Load(context.Background())
			if err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			if listFlat {
				return p.Success(items, map[string]any{"count": len(items)}, nil)
			}
			groups := schedule.Dashboard(items)
			return p.Success(groups, map[string]any{"count": len(items), "weeks": len(groups)}, nil)
		},
	}
	list.Flags().BoolVar(&listFlat, "flat", false, "Ungrouped event list")

	var showSheet bool
	show := &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show one sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, st, _, err := buildContext(cmd, opts, "events.show")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			items, err := st.Load(context.Background())
			if err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			ev := store.Find(items, args[0])
			if ev == nil {
				return failWithHint(p, contract.ErrNotFound, fmt.Errorf("no event with id %s", args[0]),
					"List IDs with `optipresta events list --flat --fields id,entreprise`", 4)
			}
			meta := map[string]any{"created": humanize.Time(ev.CreatedAt)}
			if !showSheet {
				return p.Success(ev, meta, nil)
			}
			type sheetDay struct {
				Date  string               `json:"date"`
				Cells []schedule.SheetCell `json:"cells"`
			}
			rows := make([]sheetDay, 0, len(ev.Days))
			for _, d := range ev.Days {
				rows = append(rows, sheetDay{Date: d.Date, Cells: schedule.SheetRow(d)})
			}
			payload := struct {
				Event *contract.Event `json:"event"`
				Sheet []sheetDay      `json:"sheet"`
			}{Event: ev, Sheet: rows}
			return p.Success(payload, meta, nil)
		},
	}
	show.Flags().BoolVar(&showSheet, "sheet", false, "Include the column-aligned service sheet per day")

	var createFile string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a sheet from JSON data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "events.create")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			data, err := readEventData(createFile)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --from-file with a JSON sheet body, or - for stdin", 2)
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
			return p.Success(ev, map[string]any{"count": 1}, nil)
		},
	}
	create.Flags().StringVar(&createFile, "from-file", "", "JSON file with the sheet body (- for stdin)")
	_ = create.MarkFlagRequired("from-file")

	var updateFile string
	update := &cobra.Command{
		Use:   "update <event-id>",
		Short: "Replace a sheet's body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, st, _, err := buildContext(cmd, opts, "events.update")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			data, err := readEventData(updateFile)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --from-file with a JSON sheet body, or - for stdin", 2)
			}
			items, err := st.Load(context.Background())
			if err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			existing := store.Find(items, args[0])
			if existing == nil {
				return failWithHint(p, contract.ErrNotFound, fmt.Errorf("no event with id %s", args[0]),
					"List IDs with `optipresta events list --flat --fields id,entreprise`", 4)
			}
			updated := *existing
			updated.EventData = *data
			updated.WeekNumber, updated.Year = deriveWeek(*data, nowFunc())
			items = store.Upsert(items, updated)
			if err := st.Replace(context.Background(), items); err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			return p.Success(updated, map[string]any{"count": 1}, nil)
		},
	}
	update.Flags().StringVar(&updateFile, "from-file", "", "JSON file with the sheet body (- for stdin)")
	_ = update.MarkFlagRequired("from-file")

	var deleteYes bool
	del := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, st, ro, err := buildContext(cmd, opts, "events.delete")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if !deleteYes {
				if ro.NoInput || !stdinInteractive() {
					err := errors.New("refusing to delete without --yes")
					return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --yes to delete non-interactively", 2)
				}
				ok, err := promptConfirmID(os.Stdin, cmd.ErrOrStderr(), args[0])
				if err != nil || !ok {
					return failWithHint(p, contract.ErrInvalidUsage, errors.New("delete not confirmed"), "Type the exact event ID to confirm", 2)
				}
			}
			items, err := st.Load(context.Background())
			if err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			items, removed := store.Remove(items, args[0])
			if !removed {
				return failWithHint(p, contract.ErrNotFound, fmt.Errorf("no event with id %s", args[0]),
					"List IDs with `optipresta events list --flat --fields id,entreprise`", 4)
			}
			if err := st.Replace(context.Background(), items); err != nil {
				return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
			}
			return p.Success(map[string]any{"deleted": args[0]}, map[string]any{"count": 1}, nil)
		},
	}
	del.Flags().BoolVar(&deleteYes, "yes", false, "Skip the confirmation prompt")

	events.AddCommand(list, show, create, update, del)
	return events
}

// newEvent stamps identity and the cached week fields onto a sheet body.
func newEvent(data contract.EventData, now time.Time) contract.Event {
	week, year := deriveWeek(data, now)
	return contract.Event{
		EventData:  data,
		ID:         uuid.NewString(),
		CreatedAt:  now,
		WeekNumber: week,
		Year:       year,
	}
}

// deriveWeek computes the cached week fields from the first day whose
// date parses. Sheets with no parseable day fall back to the current
// week.
func deriveWeek(data contract.EventData, now time.Time) (week, year int) {
	for _, d := range data.Days {
		if t, ok := frdate.Parse(d.Date, now); ok {
			return frdate.ISOWeek(t)
		}
	}
	return frdate.ISOWeek(now)
}

func readEventData(path string) (*contract.EventData, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("missing --from-file")
	}
	raw, err := readTextInput(path)
	if err != nil {
		return nil, err
	}
	var data contract.EventData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("invalid sheet JSON: %w", err)
	}
	if strings.TrimSpace(data.Entreprise) == "" {
		return nil, errors.New("sheet is missing entreprise")
	}
	return &data, nil
}
