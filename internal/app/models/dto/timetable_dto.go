package dto

// PeriodRequest is one scheduled slot in a timetable payload
type PeriodRequest struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"` // HH:MM
	EndTime   string `json:"endTime" binding:"required"`   // HH:MM
	CourseID  int64  `json:"courseId" binding:"required,min=1"`
	FacultyID int64  `json:"facultyId" binding:"required,min=1"`
	Room      string `json:"room" binding:"required"`
}

// CreateTimetableRequest creates a draft timetable
type CreateTimetableRequest struct {
	DepartmentID int64           `json:"departmentId" binding:"required,min=1"`
	Semester     int             `json:"semester" binding:"required,min=1,max=12"`
	AcademicYear string          `json:"academicYear" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=REGULAR EXAM"`
	Batch        string          `json:"batch" binding:"required"`
	Periods      []PeriodRequest `json:"periods" binding:"required,min=1,dive"`
}

// UpdateTimetableRequest replaces a draft timetable's periods
type UpdateTimetableRequest struct {
	Periods []PeriodRequest `json:"periods" binding:"required,min=1,dive"`
}

// StudentDashboard is the student self-service dashboard payload
type StudentDashboard struct {
	Profile        interface{} `json:"profile"`
	Stats          interface{} `json:"stats"`
	RecentActivity interface{} `json:"recentActivity"`
}

// FacultyDashboard is the faculty self-service dashboard payload
type FacultyDashboard struct {
	Profile      interface{} `json:"profile"`
	Courses      interface{} `json:"courses"`
	TodayPeriods interface{} `json:"todayPeriods"`
}
