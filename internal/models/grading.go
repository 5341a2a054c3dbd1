package models

// GradingScaleType identifies how a scale expresses results.
type GradingScaleType string

const (
	GradingScaleLetter  GradingScaleType = "Letter"
	GradingScalePercent GradingScaleType = "Percent"
	GradingScaleGPA     GradingScaleType = "GPA"
	GradingScaleRubric  GradingScaleType = "Rubric"
)

// GradingScale is one grading scheme. SchoolIDs nil means the scale applies
// to every school in the tenant.
type GradingScale struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Type      GradingScaleType `json:"type"`
	Status    RowStatus        `json:"status"`
	SchoolIDs []string         `json:"schoolIds"`
	Bands     []GradingBand    `json:"bands"`
	Settings  ScaleSettings    `json:"settings"`
}

// Clone returns a copy that shares no slice storage with the receiver.
func (g GradingScale) Clone() GradingScale {
	clone := g
	clone.SchoolIDs = append([]string(nil), g.SchoolIDs...)
	clone.Bands = append([]GradingBand(nil), g.Bands...)
	return clone
}

// GradingBand is one band of a scale covering the half-open range
// [Min, Max).
type GradingBand struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Min   float64  `json:"min"`
	Max   float64  `json:"max"`
	Pass  bool     `json:"pass"`
	GPA   *float64 `json:"gpa,omitempty"`
}

// Overlaps reports whether two bands' [Min, Max) ranges intersect.
func (b GradingBand) Overlaps(other GradingBand) bool {
	return b.Min < other.Max && other.Min < b.Max
}

// ScaleSettings carries per-scale behavior switches.
type ScaleSettings struct {
	PreventOverlap bool `json:"preventOverlap"`
	AllowDecimals  bool `json:"allowDecimals,omitempty"`
}
