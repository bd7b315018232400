package tutors

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Tutor es la persona responsable del animal, identificada por DNI.
// Varias filas pueden compartir DNI: en modo independiente cada atención
// guarda su propia copia de los datos del tutor al momento de la visita.
type Tutor struct {
	ID int64

	FullName   string
	NationalID string

	Address      string
	Neighborhood string
	Phone        string
}

// Mode define cómo se vincula una atención con su tutor.
type Mode string

const (
	// ModeShared reutiliza la fila existente con el mismo DNI y pisa sus datos de contacto.
	ModeShared Mode = "shared"
	// ModeIndependent crea siempre una fila nueva.
	ModeIndependent Mode = "independent"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeShared:
		return ModeShared, nil
	case ModeIndependent, "":
		return ModeIndependent, nil
	}
	return "", errors.Newf("unknown tutor mode %q", s)
}
