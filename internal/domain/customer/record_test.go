package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalProfileWins(t *testing.T) {
	r := Canonical(
		&StoredProfile{Name: "Ana", Phone: "5551112222", Address: "Av. Juárez 10"},
		&Contact{Name: "Ana M.", Phone: "5559998888", Address: "Calle Vieja 2"},
		&WalkIn{Name: "A."},
	)
	assert.Equal(t, Record{Name: "Ana", Phone: "5551112222", Address: "Av. Juárez 10"}, r)
}

func TestCanonicalFieldLevelFallback(t *testing.T) {
	// Profile has no address; the delivery contact supplies it.
	r := Canonical(
		&StoredProfile{Name: "Ana", Phone: "5551112222"},
		&Contact{Address: "Av. Juárez 10"},
		nil,
	)
	assert.Equal(t, "Ana", r.Name)
	assert.Equal(t, "Av. Juárez 10", r.Address)
}

func TestCanonicalWalkInLast(t *testing.T) {
	r := Canonical(nil, nil, &WalkIn{Name: "Cliente", Phone: "5550001111"})
	assert.Equal(t, "Cliente", r.Name)
	assert.Equal(t, "5550001111", r.Phone)
	assert.Empty(t, r.Address)
}

func TestCanonicalWhitespaceIsEmpty(t *testing.T) {
	r := Canonical(&StoredProfile{Name: "   "}, &Contact{Name: "Ana"}, nil)
	assert.Equal(t, "Ana", r.Name)
}
