package setup

import (
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// ScaleForm is the grading-scale create/edit payload. An empty ID means
// create. A nil SchoolIDs applies the scale to every school.
type ScaleForm struct {
	ID        string
	Name      string
	Type      models.GradingScaleType
	SchoolIDs []string
	Settings  models.ScaleSettings
}

// BandForm is the band create/edit payload within one scale.
type BandForm struct {
	ID    string
	Label string
	Min   float64
	Max   float64
	Pass  bool
	GPA   *float64
}

// GradeScaleStore owns the tenant's grading scales. Scales live only in the
// wizard snapshot during setup, so every operation is local and
// synchronous.
type GradeScaleStore struct {
	mu sync.Mutex

	scales   []models.GradingScale
	scaleSeq int
	bandSeq  int

	onChange func()
	log      zerolog.Logger
}

// NewGradeScaleStore creates an empty store.
func NewGradeScaleStore(log zerolog.Logger) *GradeScaleStore {
	return &GradeScaleStore{log: log}
}

// SetOnChange registers the autosave notification hook.
func (s *GradeScaleStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Seed replaces the store contents from a loaded snapshot.
func (s *GradeScaleStore) Seed(scales []models.GradingScale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scales = make([]models.GradingScale, len(scales))
	var scaleIDs, bandIDs []string
	for i, sc := range scales {
		s.scales[i] = sc.Clone()
		scaleIDs = append(scaleIDs, sc.ID)
		for _, b := range sc.Bands {
			bandIDs = append(bandIDs, b.ID)
		}
	}
	s.scaleSeq = maxIDSuffix("scale", scaleIDs)
	s.bandSeq = maxIDSuffix("band", bandIDs)
}

func (s *GradeScaleStore) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *GradeScaleStore) indexOfLocked(id string) int {
	for i, sc := range s.scales {
		if sc.ID == id {
			return i
		}
	}
	return -1
}

// Scales returns a copy of the scale collection.
func (s *GradeScaleStore) Scales() []models.GradingScale {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.GradingScale, len(s.scales))
	for i, sc := range s.scales {
		out[i] = sc.Clone()
	}
	return out
}

// SaveScale creates or updates a scale.
func (s *GradeScaleStore) SaveScale(form ScaleForm) (models.GradingScale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(form.Name) == "" {
		return models.GradingScale{}, fieldErr("name", "Scale name is required.")
	}

	if form.ID == "" {
		s.scaleSeq++
		scale := models.GradingScale{
			ID:        "scale-" + strconv.Itoa(s.scaleSeq),
			Name:      form.Name,
			Type:      form.Type,
			Status:    models.RowStatusActive,
			SchoolIDs: form.SchoolIDs,
			Settings:  form.Settings,
		}
		s.scales = append(s.scales, scale)
		s.notifyLocked()
		return scale.Clone(), nil
	}

	i := s.indexOfLocked(form.ID)
	if i < 0 {
		return models.GradingScale{}, ErrScaleNotFound
	}
	s.scales[i].Name = form.Name
	s.scales[i].Type = form.Type
	s.scales[i].SchoolIDs = form.SchoolIDs
	s.scales[i].Settings = form.Settings
	s.notifyLocked()
	return s.scales[i].Clone(), nil
}

// DeleteScale removes a scale and its bands.
func (s *GradeScaleStore) DeleteScale(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return ErrScaleNotFound
	}
	s.scales = append(s.scales[:i], s.scales[i+1:]...)
	s.notifyLocked()
	return nil
}

// SaveBand creates or updates a band within a scale. When the scale
// prevents overlap, a band whose [min,max) range intersects any other band
// (excluding itself on edit) is rejected.
func (s *GradeScaleStore) SaveBand(scaleID string, form BandForm) (models.GradingBand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(scaleID)
	if i < 0 {
		return models.GradingBand{}, ErrScaleNotFound
	}
	if strings.TrimSpace(form.Label) == "" {
		return models.GradingBand{}, fieldErr("label", "Band label is required.")
	}
	if form.Min >= form.Max {
		return models.GradingBand{}, fieldErr("range", "Band minimum must be below its maximum.")
	}

	scale := &s.scales[i]
	candidate := models.GradingBand{
		ID:    form.ID,
		Label: form.Label,
		Min:   form.Min,
		Max:   form.Max,
		Pass:  form.Pass,
		GPA:   form.GPA,
	}
	if scale.Settings.PreventOverlap {
		for _, b := range scale.Bands {
			if b.ID == form.ID {
				continue
			}
			if candidate.Overlaps(b) {
				return models.GradingBand{}, ErrBandOverlap
			}
		}
	}

	if form.ID == "" {
		s.bandSeq++
		candidate.ID = "band-" + strconv.Itoa(s.bandSeq)
		scale.Bands = append(scale.Bands, candidate)
		s.notifyLocked()
		return candidate, nil
	}

	for j, b := range scale.Bands {
		if b.ID == form.ID {
			scale.Bands[j] = candidate
			s.notifyLocked()
			return candidate, nil
		}
	}
	return models.GradingBand{}, fieldErr("band", "Band not found.")
}

// DeleteBand removes one band from a scale.
func (s *GradeScaleStore) DeleteBand(scaleID, bandID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(scaleID)
	if i < 0 {
		return ErrScaleNotFound
	}
	bands := s.scales[i].Bands
	for j, b := range bands {
		if b.ID == bandID {
			s.scales[i].Bands = append(bands[:j], bands[j+1:]...)
			s.notifyLocked()
			return nil
		}
	}
	return fieldErr("band", "Band not found.")
}
