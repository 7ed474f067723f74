package model

// Evaluation holds the four 0-100 sub-scores plus feedback returned by the
// prompt evaluator.
type Evaluation struct {
	Clarity     int    `json:"clarity"`
	Specificity int    `json:"specificity"`
	Creativity  int    `json:"creativity"`
	Structure   int    `json:"structure"`
	Feedback    string `json:"feedback"`
	Tip         string `json:"tip"`
}
