package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/output"
	"github.com/optipresta/optipresta/internal/schedule"
	"github.com/optipresta/optipresta/internal/store"
)

func loadAll(p output.Printer, st store.Store) ([]contract.Event, error) {
	items, err := st.Load(context.Background())
	if err != nil {
		return nil, failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
	}
	return items, nil
}

// requireDate enforces the --date flag on day-scoped views. Dates are
// the stored strings, like "Lundi 18 Mars 2024".
func requireDate(p output.Printer, date string) error {
	if strings.TrimSpace(date) != "" {
		return nil
	}
	err := fmt.Errorf("missing --date")
	return failWithHint(p, contract.ErrInvalidUsage, err, "Pick a date from `optipresta dates`", 2)
}

func newPlanningCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "planning",
		Short: "All days across all sheets, grouped by week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "planning")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			days := schedule.FlattenDays(items)
			schedule.SortChronological(days)
			groups := schedule.GroupByWeek(days)
			return p.Success(groups, map[string]any{"count": len(days), "weeks": len(groups)}, nil)
		},
	}
}

func newJournalCmd(opts *globalOptions) *cobra.Command {
	var date string
	var editEvent string
	var editDay, editPrestation int
	var editPax, editLieu string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "One day's agenda across all groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "journal")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := requireDate(p, date); err != nil {
				return err
			}
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			if editEvent != "" {
				items, err = applyJournalEdit(items, editEvent, editDay, editPrestation, editPax, editLieu)
				if err != nil {
					return failWithHint(p, contract.ErrInvalidUsage, err, "Check --event, --day, and --prestation against the journal output", 2)
				}
				if err := st.Replace(context.Background(), items); err != nil {
					return failWithHint(p, contract.ErrStoreUnavailable, err, "Check the store file and permissions", 6)
				}
			}
			timeline := schedule.BuildTimeline(items, date)
			buckets := schedule.GroupTimeline(timeline)
			return p.Success(buckets, map[string]any{"count": len(timeline), "date": date}, nil)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Stored day date, e.g. 'Lundi 18 Mars 2024'")
	cmd.Flags().StringVar(&editEvent, "event", "", "Event ID to edit in place")
	cmd.Flags().IntVar(&editDay, "day", 0, "Day index of the prestation to edit")
	cmd.Flags().IntVar(&editPrestation, "prestation", 0, "Prestation index to edit")
	cmd.Flags().StringVar(&editPax, "pax", "", "New pax value")
	cmd.Flags().StringVar(&editLieu, "lieu", "", "New lieu value")
	return cmd
}

// applyJournalEdit patches pax and/or lieu on one prestation. The event
// is cloned before mutation so a failed second edit leaves the loaded
// slice untouched.
func applyJournalEdit(items []contract.Event, id string, day, prestation int, pax, lieu string) ([]contract.Event, error) {
	if pax == "" && lieu == "" {
		return nil, fmt.Errorf("nothing to edit, pass --pax or --lieu")
	}
	ev := store.Find(items, id)
	if ev == nil {
		return nil, fmt.Errorf("no event with id %s", id)
	}
	updated := *ev
	if pax != "" {
		next, err := schedule.ApplyPrestationEdit(&updated, day, prestation, "pax", pax)
		if err != nil {
			return nil, err
		}
		updated = next
	}
	if lieu != "" {
		next, err := schedule.ApplyPrestationEdit(&updated, day, prestation, "lieu", lieu)
		if err != nil {
			return nil, err
		}
		updated = next
	}
	return store.Upsert(items, updated), nil
}

func newCuisineCmd(opts *globalOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "cuisine",
		Short: "Lunch and dinner menus per group for one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "cuisine")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := requireDate(p, date); err != nil {
				return err
			}
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			menus := schedule.MenusForDate(items, date)
			return p.Success(menus, map[string]any{"count": len(menus), "date": date}, nil)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Stored day date")
	return cmd
}

func newRestaurantCmd(opts *globalOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "restaurant",
		Short: "Coffee and break services for one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "restaurant")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := requireDate(p, date); err != nil {
				return err
			}
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			breaks := schedule.BreaksForDate(items, date)
			return p.Success(breaks, map[string]any{"count": len(breaks), "date": date}, nil)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Stored day date")
	return cmd
}

func newHousekeepingCmd(opts *globalOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "housekeeping",
		Short: "Room lists per group for one night",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "housekeeping")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := requireDate(p, date); err != nil {
				return err
			}
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			rooms := schedule.AccommodationForDate(items, date)
			return p.Success(rooms, map[string]any{"count": len(rooms), "date": date}, nil)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Stored day date")
	return cmd
}

func newSallesCmd(opts *globalOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "salles",
		Short: "Meeting-room layouts for one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "salles")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := requireDate(p, date); err != nil {
				return err
			}
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			rooms := schedule.RoomsForDate(items, date)
			return p.Success(rooms, map[string]any{"count": len(rooms), "date": date}, nil)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Stored day date")
	return cmd
}

func newWeeklyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Cumulative accommodation table with grand totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "weekly")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			summary := schedule.WeeklyHousing(items)
			return p.Success(summary, map[string]any{"count": len(summary.Days)}, nil)
		},
	}
}

func newDatesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "Every distinct day date across all sheets, chronological",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, st, _, err := buildContext(cmd, opts, "dates")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			items, err := loadAll(p, st)
			if err != nil {
				return err
			}
			dates := schedule.UniqueDates(items)
			return p.Success(dates, map[string]any{"count": len(dates)}, nil)
		},
	}
}
