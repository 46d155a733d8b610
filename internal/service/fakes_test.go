package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/class-records-api/internal/models"
)

type memState struct {
	classes         map[string]models.Class
	students        map[string]models.Student
	classStudents   map[string][]string
	teacherSubjects map[string][]string
	assessments     map[string]models.Assessment
	questions       map[string]models.ObjectiveQuestion
	sessions        map[string]models.ClassSession
	attendance      map[string]models.AttendanceRecord
	annotations     map[string]models.SessionAnnotation
	answerKeys      map[string]models.AnswerKeyEntry
	grades          map[string]models.GradeEntry
}

func newMemState() *memState {
	return &memState{
		classes:         map[string]models.Class{},
		students:        map[string]models.Student{},
		classStudents:   map[string][]string{},
		teacherSubjects: map[string][]string{},
		assessments:     map[string]models.Assessment{},
		questions:       map[string]models.ObjectiveQuestion{},
		sessions:        map[string]models.ClassSession{},
		attendance:      map[string]models.AttendanceRecord{},
		annotations:     map[string]models.SessionAnnotation{},
		answerKeys:      map[string]models.AnswerKeyEntry{},
		grades:          map[string]models.GradeEntry{},
	}
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memState) clone() *memState {
	students := make(map[string][]string, len(s.classStudents))
	for k, v := range s.classStudents {
		students[k] = append([]string(nil), v...)
	}
	subjects := make(map[string][]string, len(s.teacherSubjects))
	for k, v := range s.teacherSubjects {
		subjects[k] = append([]string(nil), v...)
	}
	return &memState{
		classes:         copyMap(s.classes),
		students:        copyMap(s.students),
		classStudents:   students,
		teacherSubjects: subjects,
		assessments:     copyMap(s.assessments),
		questions:       copyMap(s.questions),
		sessions:        copyMap(s.sessions),
		attendance:      copyMap(s.attendance),
		annotations:     copyMap(s.annotations),
		answerKeys:      copyMap(s.answerKeys),
		grades:          copyMap(s.grades),
	}
}

// memoryStore is an in-memory record and catalog store. failOn injects errors by method name.
type memoryStore struct {
	state  *memState
	seq    int
	failOn map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{state: newMemState(), failOn: map[string]error{}}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryStore) fail(method string) error {
	return m.failOn[method]
}

// memoryTx restores the state snapshot when the unit of work fails.
type memoryTx struct {
	store     *memoryStore
	commits   int
	rollbacks int
}

func (t *memoryTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := t.store.state.clone()
	if err := fn(ctx); err != nil {
		t.store.state = snapshot
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}

// seeding helpers

func (m *memoryStore) addClass(id, teacherID, subjectID string, studentIDs ...string) {
	m.state.classes[id] = models.Class{ID: id, Name: "Class " + id, TeacherID: teacherID, SubjectID: subjectID}
	for _, sid := range studentIDs {
		if _, ok := m.state.students[sid]; !ok {
			m.state.students[sid] = models.Student{ID: sid, FullName: "Student " + sid}
		}
	}
	m.state.classStudents[id] = append(m.state.classStudents[id], studentIDs...)
}

func (m *memoryStore) addTeacherSubject(teacherID, subjectID string) {
	m.state.teacherSubjects[teacherID] = append(m.state.teacherSubjects[teacherID], subjectID)
}

func (m *memoryStore) addAssessment(id, subjectID string, maxValue float64, appliedOn time.Time, questions int) {
	m.state.assessments[id] = models.Assessment{ID: id, SubjectID: subjectID, Title: "Assessment " + id, MaxValue: maxValue, AppliedOn: appliedOn}
	for i := 1; i <= questions; i++ {
		qid := fmt.Sprintf("%s-q%d", id, i)
		m.state.questions[qid] = models.ObjectiveQuestion{ID: qid, AssessmentID: id, Number: i, Points: 1}
	}
}

func (m *memoryStore) addSession(classID string, date time.Time, period string, statuses map[string]models.AttendanceStatus) string {
	id := m.nextID("sess")
	m.state.sessions[id] = models.ClassSession{ID: id, ClassID: classID, Date: date, Period: period}
	for sid, status := range statuses {
		rid := m.nextID("att")
		m.state.attendance[rid] = models.AttendanceRecord{ID: rid, SessionID: id, StudentID: sid, Status: status}
	}
	return id
}

func (m *memoryStore) addGrade(assessmentID, studentID string, value float64) {
	id := m.nextID("grade")
	m.state.grades[id] = models.GradeEntry{ID: id, AssessmentID: assessmentID, StudentID: studentID, Value: value, Origin: models.GradeOriginManual}
}

func (m *memoryStore) attendanceOf(sessionID string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	for _, r := range m.state.attendance {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

// catalog

func (m *memoryStore) ClassExists(ctx context.Context, classID string) (bool, error) {
	_, ok := m.state.classes[classID]
	return ok, m.fail("ClassExists")
}

func (m *memoryStore) ClassOwner(ctx context.Context, classID string) (string, error) {
	return m.state.classes[classID].TeacherID, m.fail("ClassOwner")
}

func (m *memoryStore) FindClass(ctx context.Context, classID string) (*models.Class, error) {
	if err := m.fail("FindClass"); err != nil {
		return nil, err
	}
	class, ok := m.state.classes[classID]
	if !ok {
		return nil, nil
	}
	return &class, nil
}

func (m *memoryStore) StudentsOfClass(ctx context.Context, classID string) ([]string, error) {
	return append([]string(nil), m.state.classStudents[classID]...), m.fail("StudentsOfClass")
}

func (m *memoryStore) ClassRoster(ctx context.Context, classID string) ([]models.Student, error) {
	var out []models.Student
	for _, sid := range m.state.classStudents[classID] {
		out = append(out, m.state.students[sid])
	}
	return out, m.fail("ClassRoster")
}

func (m *memoryStore) SubjectsOfTeacher(ctx context.Context, teacherID string) ([]string, error) {
	return append([]string(nil), m.state.teacherSubjects[teacherID]...), m.fail("SubjectsOfTeacher")
}

func (m *memoryStore) AssessmentExists(ctx context.Context, assessmentID string) (bool, error) {
	_, ok := m.state.assessments[assessmentID]
	return ok, m.fail("AssessmentExists")
}

func (m *memoryStore) AssessmentSubject(ctx context.Context, assessmentID string) (string, error) {
	return m.state.assessments[assessmentID].SubjectID, m.fail("AssessmentSubject")
}

func (m *memoryStore) StudentsTaughtBy(ctx context.Context, teacherID, subjectID string, studentIDs []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = struct{}{}
	}
	out := map[string]struct{}{}
	for classID, class := range m.state.classes {
		if class.TeacherID != teacherID || class.SubjectID != subjectID {
			continue
		}
		for _, sid := range m.state.classStudents[classID] {
			if _, ok := wanted[sid]; ok {
				out[sid] = struct{}{}
			}
		}
	}
	return out, m.fail("StudentsTaughtBy")
}

// sessions

func (m *memoryStore) FindByClassAndDate(ctx context.Context, classID string, date time.Time) (*models.ClassSession, error) {
	if err := m.fail("FindByClassAndDate"); err != nil {
		return nil, err
	}
	for _, s := range m.state.sessions {
		if s.ClassID == classID && s.Date.Equal(date) {
			session := s
			return &session, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Create(ctx context.Context, session *models.ClassSession) error {
	if err := m.fail("Create"); err != nil {
		return err
	}
	session.ID = m.nextID("sess")
	m.state.sessions[session.ID] = *session
	return nil
}

func (m *memoryStore) UpdatePeriod(ctx context.Context, sessionID, period string) error {
	if err := m.fail("UpdatePeriod"); err != nil {
		return err
	}
	s := m.state.sessions[sessionID]
	s.Period = period
	m.state.sessions[sessionID] = s
	return nil
}

func (m *memoryStore) DeleteAttendance(ctx context.Context, sessionID string) error {
	if err := m.fail("DeleteAttendance"); err != nil {
		return err
	}
	for id, r := range m.state.attendance {
		if r.SessionID == sessionID {
			delete(m.state.attendance, id)
		}
	}
	return nil
}

func (m *memoryStore) InsertAttendance(ctx context.Context, records []models.AttendanceRecord) error {
	if err := m.fail("InsertAttendance"); err != nil {
		return err
	}
	for _, r := range records {
		for _, existing := range m.state.attendance {
			if existing.SessionID == r.SessionID && existing.StudentID == r.StudentID {
				return fmt.Errorf("duplicate attendance row %s/%s", r.SessionID, r.StudentID)
			}
		}
		r.ID = m.nextID("att")
		m.state.attendance[r.ID] = r
	}
	return nil
}

func (m *memoryStore) ListAttendance(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	return m.attendanceOf(sessionID), m.fail("ListAttendance")
}

func (m *memoryStore) FindAnnotation(ctx context.Context, sessionID string) (*models.SessionAnnotation, error) {
	if err := m.fail("FindAnnotation"); err != nil {
		return nil, err
	}
	a, ok := m.state.annotations[sessionID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memoryStore) CreateAnnotation(ctx context.Context, annotation *models.SessionAnnotation) error {
	annotation.ID = m.nextID("ann")
	m.state.annotations[annotation.SessionID] = *annotation
	return m.fail("CreateAnnotation")
}

func (m *memoryStore) UpdateAnnotation(ctx context.Context, annotation *models.SessionAnnotation) error {
	m.state.annotations[annotation.SessionID] = *annotation
	return m.fail("UpdateAnnotation")
}

// assessments and answer keys

func (m *memoryStore) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	if err := m.fail("FindByID"); err != nil {
		return nil, err
	}
	a, ok := m.state.assessments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memoryStore) ListBySubject(ctx context.Context, subjectID string, from, to *time.Time) ([]models.Assessment, error) {
	var out []models.Assessment
	for _, a := range m.state.assessments {
		if a.SubjectID != subjectID {
			continue
		}
		if from != nil && a.AppliedOn.Before(*from) {
			continue
		}
		if to != nil && a.AppliedOn.After(*to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, m.fail("ListBySubject")
}

func (m *memoryStore) ListQuestions(ctx context.Context, assessmentID string) ([]models.ObjectiveQuestion, error) {
	var out []models.ObjectiveQuestion
	for _, q := range m.state.questions {
		if q.AssessmentID == assessmentID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, m.fail("ListQuestions")
}

func (m *memoryStore) AnswerKeysByQuestion(ctx context.Context, questionIDs []string) (map[string]models.AnswerKeyEntry, error) {
	out := map[string]models.AnswerKeyEntry{}
	for _, id := range questionIDs {
		if entry, ok := m.state.answerKeys[id]; ok {
			out[id] = entry
		}
	}
	return out, m.fail("AnswerKeysByQuestion")
}

func (m *memoryStore) InsertAnswerKey(ctx context.Context, entry *models.AnswerKeyEntry) error {
	if err := m.fail("InsertAnswerKey"); err != nil {
		return err
	}
	entry.ID = m.nextID("key")
	m.state.answerKeys[entry.QuestionID] = *entry
	return nil
}

func (m *memoryStore) UpdateAnswerKey(ctx context.Context, entryID string, letter models.AnswerLetter) error {
	if err := m.fail("UpdateAnswerKey"); err != nil {
		return err
	}
	for qid, entry := range m.state.answerKeys {
		if entry.ID == entryID {
			entry.Letter = letter
			m.state.answerKeys[qid] = entry
		}
	}
	return nil
}

func (m *memoryStore) DeleteAnswerKey(ctx context.Context, questionID string) error {
	if err := m.fail("DeleteAnswerKey"); err != nil {
		return err
	}
	delete(m.state.answerKeys, questionID)
	return nil
}

func (m *memoryStore) AnswerKeyLines(ctx context.Context, assessmentID string) ([]models.AnswerKeyLine, error) {
	questions, _ := m.ListQuestions(ctx, assessmentID)
	var out []models.AnswerKeyLine
	for _, q := range questions {
		line := models.AnswerKeyLine{QuestionID: q.ID, Number: q.Number, Points: q.Points}
		if entry, ok := m.state.answerKeys[q.ID]; ok {
			letter := entry.Letter
			line.Letter = &letter
			line.HasAnswer = true
		}
		out = append(out, line)
	}
	return out, m.fail("AnswerKeyLines")
}

// grades

func (m *memoryStore) gradeFor(assessmentID, studentID string) (models.GradeEntry, bool) {
	for _, g := range m.state.grades {
		if g.AssessmentID == assessmentID && g.StudentID == studentID {
			return g, true
		}
	}
	return models.GradeEntry{}, false
}

func (m *memoryStore) ListByAssessment(ctx context.Context, assessmentID string) ([]models.GradeEntry, error) {
	var out []models.GradeEntry
	for _, g := range m.state.grades {
		if g.AssessmentID == assessmentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, m.fail("ListByAssessment")
}

func (m *memoryStore) ListByAssessments(ctx context.Context, assessmentIDs []string) ([]models.GradeEntry, error) {
	var out []models.GradeEntry
	for _, id := range assessmentIDs {
		grades, _ := m.ListByAssessment(ctx, id)
		out = append(out, grades...)
	}
	return out, m.fail("ListByAssessments")
}

func (m *memoryStore) FindByStudents(ctx context.Context, assessmentID string, studentIDs []string) (map[string]models.GradeEntry, error) {
	out := map[string]models.GradeEntry{}
	for _, sid := range studentIDs {
		if g, ok := m.gradeFor(assessmentID, sid); ok {
			out[sid] = g
		}
	}
	return out, m.fail("FindByStudents")
}

func (m *memoryStore) Insert(ctx context.Context, grade *models.GradeEntry) error {
	if err := m.fail("Insert"); err != nil {
		return err
	}
	grade.ID = m.nextID("grade")
	m.state.grades[grade.ID] = *grade
	return nil
}

func (m *memoryStore) UpdateValue(ctx context.Context, gradeID string, value float64, recordedAt time.Time) error {
	if err := m.fail("UpdateValue"); err != nil {
		return err
	}
	g := m.state.grades[gradeID]
	g.Value = value
	g.RecordedAt = recordedAt
	m.state.grades[gradeID] = g
	return nil
}

// reports

func (m *memoryStore) sessionsInRange(classID string, from, to time.Time) map[string]struct{} {
	out := map[string]struct{}{}
	for id, s := range m.state.sessions {
		if s.ClassID == classID && !s.Date.Before(from) && !s.Date.After(to) {
			out[id] = struct{}{}
		}
	}
	return out
}

func (m *memoryStore) CountSessions(ctx context.Context, classID string, from, to time.Time) (int, error) {
	return len(m.sessionsInRange(classID, from, to)), m.fail("CountSessions")
}

func (m *memoryStore) AttendanceTallies(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceTally, error) {
	inRange := m.sessionsInRange(classID, from, to)
	counts := map[[2]string]int{}
	for _, r := range m.state.attendance {
		if _, ok := inRange[r.SessionID]; ok {
			counts[[2]string{r.StudentID, string(r.Status)}]++
		}
	}
	var out []models.AttendanceTally
	for key, total := range counts {
		out = append(out, models.AttendanceTally{StudentID: key[0], Status: models.AttendanceStatus(key[1]), Total: total})
	}
	return out, m.fail("AttendanceTallies")
}

func (m *memoryStore) PeriodSpan(ctx context.Context, classID, period string) (*time.Time, *time.Time, error) {
	var first, last *time.Time
	for _, s := range m.state.sessions {
		if s.ClassID != classID || s.Period != period {
			continue
		}
		d := s.Date
		if first == nil || d.Before(*first) {
			first = &d
		}
		d2 := s.Date
		if last == nil || d2.After(*last) {
			last = &d2
		}
	}
	return first, last, m.fail("PeriodSpan")
}
