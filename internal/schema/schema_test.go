package schema

import (
	"strings"
	"testing"
)

func TestCreateTableStatementsAreGuarded(t *testing.T) {
	stmts := CreateTableStatements()
	if len(stmts) != len(Tables) {
		t.Fatalf("%d create statements for %d tables", len(stmts), len(Tables))
	}

	for i, stmt := range stmts {
		if !strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("statement %d is not existence-guarded", i)
		}
		if !strings.Contains(stmt, Tables[i]) {
			t.Errorf("statement %d does not create %s", i, Tables[i])
		}
	}
}

func TestTablesAreInForeignKeyOrder(t *testing.T) {
	// Parents must precede children so creation in order and teardown in
	// reverse order never violate a foreign key.
	pos := make(map[string]int, len(Tables))
	for i, table := range Tables {
		pos[table] = i
	}

	dependencies := map[string][]string{
		"teachers":    {"departments"},
		"courses":     {"teachers"},
		"enrollments": {"students", "courses"},
	}

	for child, parents := range dependencies {
		for _, parent := range parents {
			if pos[child] <= pos[parent] {
				t.Errorf("%s is ordered before its parent %s", child, parent)
			}
		}
	}
}

func TestGradeConstraintInDDL(t *testing.T) {
	var enrollments string
	for _, stmt := range CreateTableStatements() {
		if strings.Contains(stmt, "enrollments") {
			enrollments = stmt
		}
	}
	if !strings.Contains(enrollments, "CHECK (grade >= 0 AND grade <= 100)") {
		t.Error("enrollments DDL does not constrain grade to [0,100]")
	}
}

func TestIndexSetShape(t *testing.T) {
	if len(IndexSet) != 7 {
		t.Fatalf("index set has %d members, want 7", len(IndexSet))
	}

	tables := make(map[string]bool, len(Tables))
	for _, table := range Tables {
		tables[table] = true
	}

	names := make(map[string]bool)
	for _, idx := range IndexSet {
		if names[idx.Name] {
			t.Errorf("duplicate index name %s", idx.Name)
		}
		names[idx.Name] = true

		if !tables[idx.Table] {
			t.Errorf("index %s targets unknown table %s", idx.Name, idx.Table)
		}
		if len(idx.Columns) == 0 {
			t.Errorf("index %s has no columns", idx.Name)
		}
	}
}

func TestIndexStatementsAreGuarded(t *testing.T) {
	for _, idx := range IndexSet {
		create := idx.CreateSQL()
		if !strings.Contains(create, "CREATE INDEX IF NOT EXISTS "+idx.Name) {
			t.Errorf("create statement for %s is not existence-guarded: %s", idx.Name, create)
		}
		if !strings.Contains(create, "ON "+idx.Table) {
			t.Errorf("create statement for %s misses its table: %s", idx.Name, create)
		}

		drop := idx.DropSQL()
		if !strings.Contains(drop, "DROP INDEX IF EXISTS "+idx.Name) {
			t.Errorf("drop statement for %s is not existence-guarded: %s", idx.Name, drop)
		}
	}
}

func TestIndexSetCoversQueryColumns(t *testing.T) {
	// The fixed set per the measurement plan
	want := map[string]string{
		"idx_enrollments_student_id":   "enrollments",
		"idx_enrollments_course_id":    "enrollments",
		"idx_enrollments_semester":     "enrollments",
		"idx_courses_teacher_id":       "courses",
		"idx_courses_course_name":      "courses",
		"idx_teachers_department_id":   "teachers",
		"idx_students_enrollment_date": "students",
	}

	got := make(map[string]string, len(IndexSet))
	for _, idx := range IndexSet {
		got[idx.Name] = idx.Table
	}

	for name, table := range want {
		if got[name] != table {
			t.Errorf("index %s on %q, want on %q", name, got[name], table)
		}
	}
}
