package visits

import (
	"time"

	"vet-registry/internal/domain/tutors"
)

type Type string

const (
	TypeCastration  Type = "castracion"
	TypePrimaryCare Type = "atencion_primaria"
)

func (t Type) Valid() bool {
	return t == TypeCastration || t == TypePrimaryCare
}

const (
	StatusCompleted = "completado"

	// DateLayout es el formato de fecha de negocio (sin hora).
	DateLayout = "2006-01-02"
)

// Visit es una atención (castración o atención primaria).
// Number es la clave de negocio; ID es interno y lo usa la auditoría.
type Visit struct {
	ID     int64
	Number int
	Date   time.Time
	Type   Type

	AnimalName string
	Species    string
	Sex        string
	Age        string

	TutorID int64

	// Sólo atención primaria.
	Reason    string
	Diagnosis string
	Treatment string
	Referral  string

	Status       string
	Observations string
}

// View es la atención con los datos de su tutor.
type View struct {
	Visit
	Tutor tutors.Tutor
}

// Filter combina criterios con AND. Los campos vacíos o nil se ignoran.
type Filter struct {
	Number *int
	Type   Type

	// Coincidencia parcial sin distinguir mayúsculas.
	Species      string
	NationalID   string
	Neighborhood string
	AnimalName   string

	// Rango inclusivo sobre Date.
	From *time.Time
	To   *time.Time

	// 0 = sin límite.
	Limit int
}

// TutorLink es el vínculo atención -> tutor que usa la separación de tutores.
type TutorLink struct {
	VisitID int64
	Number  int
	TutorID int64
}

// SplitReport resume una corrida de SplitSharedTutors.
type SplitReport struct {
	Visits        int
	SharedTutors  int
	CreatedTutors int
}

// record es la forma serializada en los snapshots de auditoría.
type record struct {
	ID           int64  `json:"id"`
	Number       int    `json:"numero"`
	Date         string `json:"fecha"`
	Type         Type   `json:"tipo_atencion"`
	AnimalName   string `json:"nombre_animal"`
	Species      string `json:"especie"`
	Sex          string `json:"sexo"`
	Age          string `json:"edad,omitempty"`
	TutorID      int64  `json:"tutor_id"`
	TutorName    string `json:"nombre_apellido,omitempty"`
	NationalID   string `json:"dni,omitempty"`
	Address      string `json:"direccion,omitempty"`
	Neighborhood string `json:"barrio,omitempty"`
	Phone        string `json:"telefono,omitempty"`
	Reason       string `json:"motivo,omitempty"`
	Diagnosis    string `json:"diagnostico,omitempty"`
	Treatment    string `json:"tratamiento,omitempty"`
	Referral     string `json:"derivacion,omitempty"`
	Status       string `json:"estado"`
	Observations string `json:"observaciones,omitempty"`
}

func toRecord(v View) record {
	return record{
		ID:           v.ID,
		Number:       v.Number,
		Date:         v.Date.Format(DateLayout),
		Type:         v.Type,
		AnimalName:   v.AnimalName,
		Species:      v.Species,
		Sex:          v.Sex,
		Age:          v.Age,
		TutorID:      v.TutorID,
		TutorName:    v.Tutor.FullName,
		NationalID:   v.Tutor.NationalID,
		Address:      v.Tutor.Address,
		Neighborhood: v.Tutor.Neighborhood,
		Phone:        v.Tutor.Phone,
		Reason:       v.Reason,
		Diagnosis:    v.Diagnosis,
		Treatment:    v.Treatment,
		Referral:     v.Referral,
		Status:       v.Status,
		Observations: v.Observations,
	}
}
