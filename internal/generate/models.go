package generate

import "time"

// Department is a reference-table row
type Department struct {
	ID   int64
	Name string
	// Building where the department resides
	Building string
}

// Teacher is a reference-table row owned by exactly one department
type Teacher struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	DepartmentID int64
	HireDate     time.Time
}

// Course is a reference-table row owned by exactly one teacher
type Course struct {
	ID        int64
	Name      string
	Credits   int
	TeacherID int64
}

// StudentRow is a generated, not-yet-persisted student
type StudentRow struct {
	FirstName      string
	LastName       string
	Email          string
	EnrollmentDate time.Time
	DateOfBirth    time.Time
}

// EnrollmentRow links one persisted student to one pre-provisioned course
type EnrollmentRow struct {
	StudentID int64
	CourseID  int64
	Semester  string
	Grade     int
}
