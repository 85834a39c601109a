package services

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"timetable-api/models"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the snapshot workbook. The first row of each sheet is a header.
const (
	sheetTeachers      = "Teachers"
	sheetClasses       = "Classes"
	sheetSubjects      = "Subjects"
	sheetClassSubjects = "ClassSubjects"
)

// WorkbookService converts between XLSX workbooks and scheduling data.
type WorkbookService struct{}

func NewWorkbookService() *WorkbookService {
	return &WorkbookService{}
}

// ReadSnapshot parses the administration export:
// Teachers/Classes/Subjects (id, name) and
// ClassSubjects (id, class_id, subject_id, teacher_id, lectures_required).
func (s *WorkbookService) ReadSnapshot(r io.Reader) (models.SnapshotData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return models.SnapshotData{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var data models.SnapshotData

	err = s.eachRow(f, sheetTeachers, 2, func(row int, cells []string) error {
		id, err := parseID(sheetTeachers, row, cells[0])
		if err != nil {
			return err
		}
		data.Teachers = append(data.Teachers, models.Teacher{ID: id, Name: cells[1]})
		return nil
	})
	if err != nil {
		return models.SnapshotData{}, err
	}

	err = s.eachRow(f, sheetClasses, 2, func(row int, cells []string) error {
		id, err := parseID(sheetClasses, row, cells[0])
		if err != nil {
			return err
		}
		data.Classes = append(data.Classes, models.Class{ID: id, Name: cells[1]})
		return nil
	})
	if err != nil {
		return models.SnapshotData{}, err
	}

	err = s.eachRow(f, sheetSubjects, 2, func(row int, cells []string) error {
		id, err := parseID(sheetSubjects, row, cells[0])
		if err != nil {
			return err
		}
		data.Subjects = append(data.Subjects, models.Subject{ID: id, Name: cells[1]})
		return nil
	})
	if err != nil {
		return models.SnapshotData{}, err
	}

	err = s.eachRow(f, sheetClassSubjects, 5, func(row int, cells []string) error {
		ids := make([]int64, 4)
		for i := range ids {
			id, err := parseID(sheetClassSubjects, row, cells[i])
			if err != nil {
				return err
			}
			ids[i] = id
		}
		required, err := strconv.Atoi(cells[4])
		if err != nil {
			return fmt.Errorf("%s row %d: lectures_required %q is not a number", sheetClassSubjects, row, cells[4])
		}
		data.Demands = append(data.Demands, models.Demand{
			ID:               ids[0],
			ClassID:          ids[1],
			SubjectID:        ids[2],
			TeacherID:        ids[3],
			LecturesRequired: required,
		})
		return nil
	})
	if err != nil {
		return models.SnapshotData{}, err
	}

	return data, nil
}

// eachRow calls fn for every non-blank data row, padding cells to width.
// Row numbers passed to fn are 1-based, as shown in spreadsheet programs.
func (s *WorkbookService) eachRow(f *excelize.File, sheet string, width int, fn func(row int, cells []string) error) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	for i := 1; i < len(rows); i++ {
		cells := make([]string, width)
		blank := true
		for j := 0; j < width && j < len(rows[i]); j++ {
			cells[j] = strings.TrimSpace(rows[i][j])
			if cells[j] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if err := fn(i+1, cells); err != nil {
			return err
		}
	}
	return nil
}

func parseID(sheet string, row int, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: id %q is not a number", sheet, row, value)
	}
	return id, nil
}

// WriteTimetable renders tt as a workbook with a Teachers and a Classes sheet.
// Names are sorted; rows keep the timetable's (day, period) order.
func (s *WorkbookService) WriteTimetable(tt models.Timetable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTeachers); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetClasses); err != nil {
		return nil, err
	}

	teacherRows := [][]interface{}{{"Teacher", "Day", "Time", "Class", "Subject", "Origin"}}
	for _, name := range sortedKeys(tt.Teachers) {
		for _, e := range tt.Teachers[name] {
			teacherRows = append(teacherRows, []interface{}{name, e.Day, e.Time, e.Class, e.Subject, string(e.Origin)})
		}
	}
	classRows := [][]interface{}{{"Class", "Day", "Time", "Subject", "Teacher", "Origin"}}
	for _, name := range sortedKeys(tt.Classes) {
		for _, e := range tt.Classes[name] {
			classRows = append(classRows, []interface{}{name, e.Day, e.Time, e.Subject, e.Teacher, string(e.Origin)})
		}
	}

	if err := writeRows(f, sheetTeachers, teacherRows); err != nil {
		return nil, err
	}
	if err := writeRows(f, sheetClasses, classRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetColWidth(sheet, "A", "F", 18)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
