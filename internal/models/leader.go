package models

import "time"

type Origen string

const (
	OrigenNuevo      Origen = "nuevo"
	OrigenPrecargado Origen = "precargado"
)

type Leader struct {
	ID             uint64  `gorm:"primarykey" json:"id"`
	NombresLider   string  `gorm:"type:varchar(255);not null" json:"nombres_lider"`
	ApellidosLider string  `gorm:"type:varchar(255);not null" json:"apellidos_lider"`
	CedulaLider    *string `gorm:"type:varchar(50);uniqueIndex" json:"cedula_lider"`
	Telefono       *string `gorm:"type:varchar(50)" json:"telefono"`
	ZonaBarrio     *string `gorm:"type:varchar(255)" json:"zona_barrio"`
	Notas          *string `gorm:"type:text" json:"notas"`
	Origen         Origen  `gorm:"type:varchar(20);not null;default:'nuevo'" json:"origen"`

	// Normalized shadow copies of the searchable fields. Recomputed on
	// every write, never edited directly.
	NombresNorm    string  `gorm:"type:varchar(255);index" json:"-"`
	ApellidosNorm  string  `gorm:"type:varchar(255);index" json:"-"`
	CedulaNorm     *string `gorm:"type:varchar(50);index" json:"-"`
	TelefonoNorm   *string `gorm:"type:varchar(50)" json:"-"`
	ZonaBarrioNorm *string `gorm:"type:varchar(255)" json:"-"`

	CheckedIn   bool       `gorm:"not null;default:false" json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Voters   []Voter         `gorm:"foreignKey:LeaderID" json:"voters,omitempty"`
	CheckIns []LeaderCheckIn `gorm:"foreignKey:LeaderID" json:"check_ins,omitempty"`
}

// Nombre returns the display name used in listings and exports.
func (l Leader) Nombre() string {
	return l.NombresLider + " " + l.ApellidosLider
}
