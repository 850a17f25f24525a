package core

import "strings"

// KeySeparator separates namespace segments inside a key.
const KeySeparator = "/"

// Namespaced keys for the stored collections. Each key holds exactly one
// collection or object.
const (
	KeyLessons      = "Scheduling/Lessons"
	KeyCourses      = "Scheduling/Courses"
	KeyIssueReports = "Reports/IssueReports"
	KeyStudents     = "Users/Students"
	KeyTeachers     = "Users/Teachers"
	KeyAdmins       = "Users/Admins"
)

// Keys returns every well-known key in a stable order.
func Keys() []string {
	return []string{
		KeyLessons,
		KeyCourses,
		KeyIssueReports,
		KeyStudents,
		KeyTeachers,
		KeyAdmins,
	}
}

// JoinKey joins namespace segments into a key.
// Example: JoinKey("Scheduling", "Lessons") == KeyLessons
func JoinKey(segments ...string) string {
	return strings.Join(segments, KeySeparator)
}
