package domain

// Categories is the closed label set the classifier may assign.
// CategoryOthers is also the fallback when classification fails.
var Categories = []string{
	"Food & Dining",
	"Groceries",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Investment",
	"Transfer",
	"Others",
}

const CategoryOthers = "Others"

// ValidCategory reports whether name is a member of the closed label set.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
