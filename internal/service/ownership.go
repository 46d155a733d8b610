package service

// IsOwner reports whether resourceSubject is one of the subjects the teacher teaches.
func IsOwner(teacherSubjects []string, resourceSubject string) bool {
	if resourceSubject == "" {
		return false
	}
	for _, subject := range teacherSubjects {
		if subject == resourceSubject {
			return true
		}
	}
	return false
}
