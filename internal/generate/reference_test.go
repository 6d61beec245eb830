package generate

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestCourseNameComposition(t *testing.T) {
	subjects := make(map[string]bool, len(courseSubjects))
	for _, subj := range courseSubjects {
		subjects[subj] = true
	}

	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		name := CourseName(rnd)

		var matched bool
		for _, tmpl := range courseTemplates {
			prefix := tmpl + " "
			if strings.HasPrefix(name, prefix) && subjects[strings.TrimPrefix(name, prefix)] {
				matched = true
				break
			}
		}
		if !matched {
			t.Fatalf("course name %q not composed from a known template and subject", name)
		}
	}
}

func TestDaysAgoBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	now := time.Now()
	const max = 20 * 365

	for i := 0; i < 200; i++ {
		d := daysAgo(rnd, max)
		if d.After(now) {
			t.Fatalf("daysAgo produced future date %s", d)
		}
		if d.Before(now.AddDate(0, 0, -max-1)) {
			t.Fatalf("daysAgo produced date %s beyond %d days back", d, max)
		}
	}
}

func TestBirthDateBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(13))
	now := time.Now()

	for i := 0; i < 200; i++ {
		d := birthDate(rnd)
		age := now.Year() - d.Year()
		if age < 17 || age > 31 {
			t.Fatalf("birth date %s implies age %d, want roughly 18 to 30", d, age)
		}
	}
}

func TestSemesterLabelsReturnsCopy(t *testing.T) {
	labels := SemesterLabels()
	if len(labels) != 4 {
		t.Fatalf("got %d semester labels, want 4", len(labels))
	}
	labels[0] = "mutated"
	if SemesterLabels()[0] == "mutated" {
		t.Error("SemesterLabels() exposes internal state")
	}
}
