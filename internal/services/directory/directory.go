// Package directory отдаёт статический справочник специалистов.
package directory

import (
	"errors"
	"slices"

	"github.com/Eka2r/Padayon/internal/models"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("professional not found")

var professionals = []models.Professional{
	{ID: 1, Name: "Dr. Anya Sharma", Specialization: "Stress Management", Rate: "$80/hr", Availability: "Mon, Wed, Fri"},
	{ID: 2, Name: "Ms. Ben Tan", Specialization: "Academic Anxiety", Rate: "$75/hr", Availability: "Tue, Thu"},
	{ID: 3, Name: "Mr. Carlo Dizon", Specialization: "Motivation & Focus", Rate: "$70/hr", Availability: "Mon-Fri"},
	{ID: 4, Name: "Dr. Jane Smith", Specialization: "CBT & Depression", Rate: "$90/hr", Availability: "Flexible"},
}

// Directory is read-only.
type Directory struct{}

// New returns the directory.
func New() *Directory {
	return &Directory{}
}

// List returns a copy of every professional.
func (d *Directory) List() []models.Professional {
	return slices.Clone(professionals)
}

// Get returns one professional.
func (d *Directory) Get(id int) (models.Professional, error) {
	i := slices.IndexFunc(professionals, func(p models.Professional) bool { return p.ID == id })
	if i < 0 {
		return models.Professional{}, ErrNotFound
	}
	return professionals[i], nil
}
