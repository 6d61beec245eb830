package generate

// Fixed value pools for synthetic rows. Names are drawn from closed pools
// and disambiguated with a monotonically increasing counter in the email,
// so uniqueness never depends on the pool sizes.

// departmentPool is the canonical ten-department reference set
var departmentPool = []Department{
	{Name: "Computer Science", Building: "Block A"},
	{Name: "Mathematics", Building: "Block B"},
	{Name: "Physics", Building: "Science Wing"},
	{Name: "Chemistry", Building: "Science Wing"},
	{Name: "Biology", Building: "Science Wing"},
	{Name: "English Literature", Building: "Humanities Building"},
	{Name: "History", Building: "Humanities Building"},
	{Name: "Psychology", Building: "Social Sciences Building"},
	{Name: "Economics", Building: "Social Sciences Building"},
	{Name: "Engineering", Building: "Engineering Complex"},
}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Christopher",
	"Lisa", "Daniel", "Nancy", "Matthew", "Betty", "Anthony", "Margaret",
	"Mark", "Sandra", "Donald", "Ashley", "Steven", "Kimberly", "Paul",
	"Emily", "Andrew", "Donna", "Joshua", "Michelle",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
	"Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
}

var courseTemplates = []string{
	"Introduction to", "Advanced", "Fundamentals of", "Principles of",
	"Theory of", "Applications of", "Methods in", "Topics in",
}

var courseSubjects = []string{
	"Algorithms", "Data Structures", "Machine Learning", "Database Systems",
	"Computer Networks", "Software Engineering", "Operating Systems",
	"Calculus", "Linear Algebra", "Statistics", "Probability",
	"Quantum Mechanics", "Thermodynamics", "Electromagnetism",
	"Organic Chemistry", "Inorganic Chemistry", "Physical Chemistry",
	"Cell Biology", "Genetics", "Ecology", "Evolution",
	"Shakespeare", "Modern Literature", "Creative Writing",
	"World History", "American History", "European History",
	"Cognitive Psychology", "Social Psychology", "Developmental Psychology",
	"Microeconomics", "Macroeconomics", "International Economics",
	"Mechanical Engineering", "Electrical Engineering", "Civil Engineering",
}

// semesterLabels are the four terms enrollments are spread across
var semesterLabels = []string{"Fall 2023", "Spring 2024", "Fall 2024", "Spring 2025"}

// SemesterLabels returns the semester labels used by generated enrollments
func SemesterLabels() []string {
	out := make([]string, len(semesterLabels))
	copy(out, semesterLabels)
	return out
}
