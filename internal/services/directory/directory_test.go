package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	d := New()
	list := d.List()
	require.Len(t, list, 4)
	assert.Equal(t, "Dr. Anya Sharma", list[0].Name)
	assert.Equal(t, "Flexible", list[3].Availability)

	list[0].Name = "changed"
	assert.Equal(t, "Dr. Anya Sharma", d.List()[0].Name, "List must return a copy")
}

func TestGet(t *testing.T) {
	d := New()

	p, err := d.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "Motivation & Focus", p.Specialization)

	_, err = d.Get(42)
	assert.ErrorIs(t, err, ErrNotFound)
}
