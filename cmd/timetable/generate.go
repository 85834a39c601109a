package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timetable-api/models"
	"timetable-api/services"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		snapshotPath string
		bookingsPath string
		outPath      string
		days         string
		periods      string
		budget       int
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a timetable from a snapshot file",
		Long: `Generate places every required lecture around optional manual bookings
and writes the grouped timetable as JSON (stdout or --out file.json) or
as a workbook (--out file.xlsx). Exits non-zero when lectures stay unplaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			universe, err := models.NewSlotUniverse(splitFlag(days), splitFlag(periods))
			if err != nil {
				return err
			}
			snapshot, err := services.LoadSnapshotFile(snapshotPath)
			if err != nil {
				return err
			}

			var manual []models.BookedLecture
			if bookingsPath != "" {
				manual, err = services.LoadLecturesFile(bookingsPath)
				if err != nil {
					return err
				}
				for i := range manual {
					manual[i].Origin = models.OriginManual
				}
			}

			ledger, err := services.NewLedger(cmd.Context(), universe, snapshot, services.NewMemoryLectureStore(manual...), nil)
			if err != nil {
				return err
			}
			timetables := services.NewTimetableService(ledger, services.NewGenerator(budget, logger), timeout, logger)

			schedule, err := timetables.Generate(cmd.Context(), services.GenerateOptions{})
			if err != nil {
				return err
			}
			if err := writeSchedule(cmd, schedule, outPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d placed, %d unplaced, %d backtracks\n",
				schedule.Status, schedule.Placed, len(schedule.Unplaced), schedule.Steps)
			return schedule.Err()
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Snapshot file (.json, .yaml, .xlsx)")
	cmd.Flags().StringVar(&bookingsPath, "bookings", "", "JSON file with manual bookings to keep fixed")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (.json or .xlsx); stdout JSON when empty")
	cmd.Flags().StringVar(&days, "days", envOr("SCHEDULE_DAYS", "Monday,Tuesday,Wednesday,Thursday,Friday"), "Comma separated days")
	cmd.Flags().StringVar(&periods, "periods", envOr("SCHEDULE_PERIODS", "09:00,10:00,11:00,12:00,14:00,15:00"), "Comma separated periods")
	cmd.Flags().IntVar(&budget, "budget", 100000, "Backtrack step budget")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Search deadline")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func writeSchedule(cmd *cobra.Command, schedule *models.Schedule, outPath string) error {
	if strings.EqualFold(filepath.Ext(outPath), ".xlsx") {
		data, err := services.NewWorkbookService().WriteTimetable(schedule.Timetable)
		if err != nil {
			return err
		}
		return os.WriteFile(outPath, data, 0o644)
	}

	data, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
