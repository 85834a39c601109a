package main

import (
	"fmt"

	"timetable-api/services"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an entity snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := services.LoadSnapshotFile(snapshotPath)
			if err != nil {
				return err
			}
			required := 0
			for _, d := range snapshot.Demands() {
				required += d.LecturesRequired
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d teachers, %d classes, %d subjects, %d class-subjects, %d lectures required\n",
				len(snapshot.Teachers()), len(snapshot.Classes()), len(snapshot.Subjects()), len(snapshot.Demands()), required)
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Snapshot file (.json, .yaml, .xlsx)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}
