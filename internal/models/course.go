package models

// YearLevelName enumerates the fixed year levels a section can belong to.
type YearLevelName string

const (
	YearFirst  YearLevelName = "1st"
	YearSecond YearLevelName = "2nd"
	YearThird  YearLevelName = "3rd"
	YearFourth YearLevelName = "4th"
)

// Valid reports whether the year level name is one of the supported values.
func (n YearLevelName) Valid() bool {
	switch n {
	case YearFirst, YearSecond, YearThird, YearFourth:
		return true
	}
	return false
}
