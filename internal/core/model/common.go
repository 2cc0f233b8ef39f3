package model

// Source identifiers
const (
	SourceFile = "file"
	SourceAPI  = "api"
)

// Output formats
const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputSummary = "summary"
)

// DefaultCategories returns the categories the dashboard seeds on first start.
func DefaultCategories() []Category {
	return []Category{
		{ID: "study", Name: "Study", Icon: "BookOpen", Color: "#3B82F6"},
		{ID: "gaming", Name: "Gaming", Icon: "Gamepad2", Color: "#8B5CF6"},
		{ID: "gym", Name: "Gym", Icon: "Dumbbell", Color: "#EF4444"},
		{ID: "sleep", Name: "Sleep", Icon: "Moon", Color: "#6366F1"},
	}
}
