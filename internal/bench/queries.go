package bench

// Query is one fixed, parametrized query shape. Each query is defined once
// and reused unmodified across every (scale, index-state) combination; only
// the store's available indexes differ between passes.
type Query struct {
	ID    int
	Label string
	SQL   string
	Args  []interface{}
}

// suite holds the five query shapes in increasing relational complexity:
// filter, join+filter, join+text-search, aggregation, join+aggregation+sort.
var suite = []Query{
	{
		ID:    1,
		Label: "Students enrolled in 2023",
		SQL: `
			SELECT student_id, first_name, last_name, enrollment_date
			FROM students
			WHERE EXTRACT(YEAR FROM enrollment_date) = $1
			LIMIT 10000`,
		Args: []interface{}{2023},
	},
	{
		ID:    2,
		Label: "Students taught by teacher 50",
		SQL: `
			SELECT DISTINCT s.email
			FROM students s
			INNER JOIN enrollments e ON s.student_id = e.student_id
			INNER JOIN courses c ON e.course_id = c.course_id
			WHERE c.teacher_id = $1
			LIMIT 1000`,
		Args: []interface{}{50},
	},
	{
		ID:    3,
		Label: "Teachers teaching 'Advanced' courses",
		SQL: `
			SELECT DISTINCT t.first_name, t.last_name
			FROM teachers t
			INNER JOIN courses c ON t.teacher_id = c.teacher_id
			WHERE c.course_name LIKE $1`,
		Args: []interface{}{"%Advanced%"},
	},
	{
		ID:    4,
		Label: "Course count per department",
		SQL: `
			SELECT d.department_name, COUNT(c.course_id) AS course_count
			FROM departments d
			INNER JOIN teachers t ON d.department_id = t.department_id
			INNER JOIN courses c ON t.teacher_id = c.teacher_id
			GROUP BY d.department_id, d.department_name
			ORDER BY course_count DESC`,
	},
	{
		ID:    5,
		Label: "Top 10 students by average grade in Spring 2025",
		SQL: `
			SELECT s.first_name, s.last_name, AVG(e.grade) AS avg_grade
			FROM students s
			INNER JOIN enrollments e ON s.student_id = e.student_id
			WHERE e.semester = $1
			GROUP BY s.student_id, s.first_name, s.last_name
			ORDER BY avg_grade DESC
			LIMIT 10`,
		Args: []interface{}{"Spring 2025"},
	},
}

// Suite returns the fixed five-query suite
func Suite() []Query {
	out := make([]Query, len(suite))
	copy(out, suite)
	return out
}

// QueryLabels maps query IDs to their labels, for report rendering
func QueryLabels() map[int]string {
	labels := make(map[int]string, len(suite))
	for _, q := range suite {
		labels[q.ID] = q.Label
	}
	return labels
}
