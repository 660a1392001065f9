package mastery

// Tracker window parameters.
const (
	WindowSize  = 20
	RetuneEvery = 5
)

// Attempt is one answered question in the rolling window.
type Attempt struct {
	Correct    bool `json:"correct"`
	Difficulty int  `json:"difficulty"`
}

// Tracker keeps a rolling window of recent attempts and a difficulty
// estimate that is re-tuned every RetuneEvery attempts.
type Tracker struct {
	window      []Attempt
	estimate    int
	sinceRetune int
}

// NewTracker returns a tracker starting at the given difficulty.
func NewTracker(initial int) *Tracker {
	if initial == 0 {
		initial = DefaultDifficulty
	}
	return &Tracker{estimate: ClampDifficulty(initial)}
}

// RecordAttempt adds an attempt to the window, dropping the oldest beyond
// WindowSize.
func (t *Tracker) RecordAttempt(correct bool, difficulty int) {
	t.window = append(t.window, Attempt{Correct: correct, Difficulty: difficulty})
	if len(t.window) > WindowSize {
		t.window = t.window[len(t.window)-WindowSize:]
	}
	t.sinceRetune++
	if t.sinceRetune >= RetuneEvery {
		t.estimate = TargetDifficulty(t.estimate, t.RollingAccuracy())
		t.sinceRetune = 0
	}
}

// RollingAccuracy returns the window's accuracy as a percentage.
func (t *Tracker) RollingAccuracy() float64 {
	if len(t.window) == 0 {
		return 0
	}
	correct := 0
	for _, a := range t.window {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(t.window)) * 100
}

// CurrentDifficulty returns the target difficulty for the next question.
// With no attempts it is the stored estimate.
func (t *Tracker) CurrentDifficulty() int {
	if len(t.window) == 0 {
		return t.estimate
	}
	return TargetDifficulty(t.estimate, t.RollingAccuracy())
}

// Estimate returns the stored estimate without the band step.
func (t *Tracker) Estimate() int {
	return t.estimate
}

// AverageDifficulty returns the mean difficulty of the window.
func (t *Tracker) AverageDifficulty() float64 {
	if len(t.window) == 0 {
		return 0
	}
	sum := 0
	for _, a := range t.window {
		sum += a.Difficulty
	}
	return float64(sum) / float64(len(t.window))
}

// Len returns the number of attempts in the window.
func (t *Tracker) Len() int {
	return len(t.window)
}
