package catalog

// Subjects with seeded misconceptions.
const (
	SubjectMath = "math"
	SubjectELA  = "ela"
)

// seedMisconceptions defines the misconception catalog.
// 10 math misconceptions and 2 ELA misconceptions.
var seedMisconceptions = []Misconception{
	{
		ID:          "negative-number-operations",
		Name:        "Negative number operations",
		Subject:     SubjectMath,
		Description: "Drops or flips the sign when operating on negative numbers; e.g., -3 - 2 = 5",
		CommonErrors: []string{
			"-3 - 2 = 5",
			"-4 × 3 = 12",
			"answers 5 when the result is -5",
		},
		AffectedTopics: []string{"integers", "negative"},
		Strategies: []string{
			"Model operations as movement on a number line",
			"Use two-color counters to show zero pairs",
			"Practice sign rules with a sign-first checklist",
		},
	},
	{
		ID:          "fraction-operations",
		Name:        "Fraction operations",
		Subject:     SubjectMath,
		Description: "Adds numerators and denominators separately or inverts the wrong fraction; e.g., 1/2 + 1/3 = 2/5",
		CommonErrors: []string{
			"1/2 + 1/3 = 2/5",
			"3/4 ÷ 1/2 = 2/3",
		},
		AffectedTopics: []string{"fraction"},
		Strategies: []string{
			"Use area models to show why common denominators are needed",
			"Rewrite fractions with a common denominator before combining",
			"Check answers with benchmark fractions (0, 1/2, 1)",
		},
	},
	{
		ID:          "place-value",
		Name:        "Place value confusion",
		Subject:     SubjectMath,
		Description: "Misreads digit positions or shifts by a power of ten; e.g., 305 read as 350",
		CommonErrors: []string{
			"305 read as 350",
			"4 × 30 = 1200",
		},
		AffectedTopics: []string{"place-value", "rounding", "multi-digit"},
		Strategies: []string{
			"Use base-ten blocks and place value charts",
			"Expand numbers into expanded form before operating",
			"Estimate first and compare the answer to the estimate",
		},
	},
	{
		ID:          "decimal-comparison",
		Name:        "Decimal length comparison",
		Subject:     SubjectMath,
		Description: "Thinks longer decimals are larger; e.g., 0.25 > 0.5",
		CommonErrors: []string{
			"0.25 > 0.5",
			"0.125 > 0.13",
		},
		AffectedTopics: []string{"decimal"},
		Strategies: []string{
			"Pad decimals with zeros to equal length before comparing",
			"Shade hundredths grids to compare sizes",
		},
	},
	{
		ID:          "order-of-operations",
		Name:        "Left-to-right evaluation",
		Subject:     SubjectMath,
		Description: "Evaluates strictly left to right ignoring precedence; e.g., 2 + 3 × 4 = 20",
		CommonErrors: []string{
			"2 + 3 × 4 = 20",
			"10 - 2²= 64",
		},
		AffectedTopics: []string{"order-of-operations", "expressions"},
		Strategies: []string{
			"Circle the highest-precedence operation before each step",
			"Rewrite the expression after every single step",
		},
	},
	{
		ID:          "equation-balance",
		Name:        "Unbalanced equation steps",
		Subject:     SubjectMath,
		Description: "Applies an operation to only one side of an equation; e.g., x + 3 = 7 so x = 10",
		CommonErrors: []string{
			"x + 3 = 7 → x = 10",
			"2x = 8 → x = 16",
		},
		AffectedTopics: []string{"equation", "algebra"},
		Strategies: []string{
			"Model equations with a balance scale",
			"Write the inverse operation on both sides explicitly",
			"Substitute the answer back to check",
		},
	},
	{
		ID:          "percent-base",
		Name:        "Percent of the wrong whole",
		Subject:     SubjectMath,
		Description: "Computes a percent against the wrong base; e.g., a 20% increase then decrease returns to start",
		CommonErrors: []string{
			"20% of 50 = 2.5",
			"+10% then -10% is no change",
		},
		AffectedTopics: []string{"percent", "ratios"},
		Strategies: []string{
			"Use a double number line to anchor the whole",
			"Name the whole before computing any percent",
		},
	},
	{
		ID:          "area-perimeter",
		Name:        "Area and perimeter confusion",
		Subject:     SubjectMath,
		Description: "Swaps area and perimeter formulas; e.g., area of a 3 by 4 rectangle is 14",
		CommonErrors: []string{
			"area of 3×4 rectangle = 14",
			"perimeter of 5×2 rectangle = 10",
		},
		AffectedTopics: []string{"area", "perimeter", "geometry"},
		Strategies: []string{
			"Tile rectangles with unit squares and trace the border",
			"Label answers with square units or linear units",
		},
	},
	{
		ID:          "multiplication-facts",
		Name:        "Unreliable multiplication facts",
		Subject:     SubjectMath,
		Description: "Recalls neighboring facts; e.g., 7 × 8 = 54",
		CommonErrors: []string{
			"7 × 8 = 54",
			"6 × 9 = 56",
		},
		AffectedTopics: []string{"multiplication-facts", "times-tables"},
		Strategies: []string{
			"Derive unknown facts from known anchors (×2, ×5, ×10)",
			"Short daily fact fluency drills",
		},
	},
	{
		ID:          "measurement-units",
		Name:        "Unit conversion direction",
		Subject:     SubjectMath,
		Description: "Multiplies when converting to a larger unit; e.g., 300 cm = 30000 m",
		CommonErrors: []string{
			"300 cm = 30000 m",
			"2 hours = 20 minutes",
		},
		AffectedTopics: []string{"measurement", "units"},
		Strategies: []string{
			"Ask whether the number should get bigger or smaller",
			"Use conversion tables with explicit arrows",
		},
	},
	{
		ID:          "subject-verb-agreement",
		Name:        "Subject-verb agreement",
		Subject:     SubjectELA,
		Description: "Matches the verb to the nearest noun instead of the subject",
		CommonErrors: []string{
			"The box of pencils are on the desk",
		},
		AffectedTopics: []string{"grammar", "agreement"},
		Strategies: []string{
			"Cross out prepositional phrases to find the true subject",
			"Read the sentence with only the subject and verb",
		},
	},
	{
		ID:          "main-idea",
		Name:        "Detail mistaken for main idea",
		Subject:     SubjectELA,
		Description: "Picks a vivid supporting detail as the main idea of a passage",
		CommonErrors: []string{
			"chooses the most memorable sentence as the main idea",
		},
		AffectedTopics: []string{"main-idea", "reading-comprehension"},
		Strategies: []string{
			"Summarize each paragraph in five words, then combine",
			"Test candidate main ideas against every paragraph",
		},
	},
}
