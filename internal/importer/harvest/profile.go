package harvest

// Profile describes the column layout of a harvest spreadsheet format.
// Adding a new format is just adding a new Profile to the profiles slice.
type Profile struct {
	Name        string
	CropCol     string
	WeightCol   string
	DateCol     string
	DateFormat  string
	GradeCol    string
	FarmerCol   string // optional
	LocationCol string // optional
}

// requiredCols returns the column names that must be present for this
// profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.CropCol, p.WeightCol, p.DateCol, p.GradeCol}
}

// profiles is the ordered list of spreadsheet formats to try during
// auto-detection. More specific profiles should come first.
var profiles = []Profile{
	{
		Name:        "field log",
		CropCol:     "Crop",
		WeightCol:   "Weight (kg)",
		DateCol:     "Harvest Date",
		DateFormat:  "2006-01-02",
		GradeCol:    "Grade",
		FarmerCol:   "Farmer",
		LocationCol: "Farm Location",
	},
	{
		Name:        "co-op ledger",
		CropCol:     "Produce",
		WeightCol:   "Qty Kg",
		DateCol:     "Date of Harvest",
		DateFormat:  "02/01/2006",
		GradeCol:    "Quality Grade",
		FarmerCol:   "Member Name",
		LocationCol: "Village",
	},
}
