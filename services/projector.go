package services

import (
	"sort"

	"timetable-api/models"
)

// ProjectTimetable groups lectures by teacher name and by class name, each
// list ordered by (day, period). It does not modify its inputs. Every teacher
// and class in the snapshot gets an entry, empty when nothing is booked.
func ProjectTimetable(universe *models.SlotUniverse, snapshot *models.Snapshot, lectures []models.BookedLecture) models.Timetable {
	type placed struct {
		lecture models.BookedLecture
		slot    models.Slot
	}

	rows := make([]placed, 0, len(lectures))
	for _, l := range lectures {
		slot, ok := universe.Resolve(l.Day, l.Time)
		if !ok {
			continue
		}
		rows = append(rows, placed{lecture: l, slot: slot})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].slot != rows[j].slot {
			return rows[i].slot.Less(rows[j].slot)
		}
		return rows[i].lecture.ID < rows[j].lecture.ID
	})

	tt := models.Timetable{
		Teachers: make(map[string][]models.TeacherEntry),
		Classes:  make(map[string][]models.ClassEntry),
	}
	for _, t := range snapshot.Teachers() {
		tt.Teachers[t.Name] = []models.TeacherEntry{}
	}
	for _, c := range snapshot.Classes() {
		tt.Classes[c.Name] = []models.ClassEntry{}
	}

	for _, r := range rows {
		l := r.lecture
		teacher, okT := snapshot.Teacher(l.TeacherID)
		class, okC := snapshot.Class(l.ClassID)
		subject, okS := snapshot.Subject(l.SubjectID)
		if !okT || !okC || !okS {
			continue
		}
		day, period := universe.Label(r.slot)

		tt.Teachers[teacher.Name] = append(tt.Teachers[teacher.Name], models.TeacherEntry{
			Day:     day,
			Time:    period,
			Class:   class.Name,
			Subject: subject.Name,
			Origin:  l.Origin,
		})
		tt.Classes[class.Name] = append(tt.Classes[class.Name], models.ClassEntry{
			Day:     day,
			Time:    period,
			Subject: subject.Name,
			Teacher: teacher.Name,
			Origin:  l.Origin,
		})
	}
	return tt
}
