package models

import "time"

type Voter struct {
	ID            uint64  `gorm:"primarykey" json:"id"`
	CedulaVotante string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"cedula_votante"`
	Nombres       string  `gorm:"type:varchar(255);not null" json:"nombres"`
	Apellidos     string  `gorm:"type:varchar(255);not null" json:"apellidos"`
	DondeVota     *string `gorm:"type:varchar(255)" json:"donde_vota"`
	MesaVotacion  *string `gorm:"type:varchar(50)" json:"mesa_votacion"`
	LeaderID      *uint64 `gorm:"index" json:"leader_id"`
	Estado        string  `gorm:"type:varchar(50);not null;default:'Votó'" json:"estado"`
	Origen        Origen  `gorm:"type:varchar(20);not null;default:'nuevo'" json:"origen"`

	// Normalized shadow copies, recomputed on every write.
	CedulaNorm       string  `gorm:"type:varchar(50);index" json:"-"`
	NombresNorm      string  `gorm:"type:varchar(255);index" json:"-"`
	ApellidosNorm    string  `gorm:"type:varchar(255);index" json:"-"`
	DondeVotaNorm    *string `gorm:"type:varchar(255);index" json:"-"`
	MesaVotacionNorm *string `gorm:"type:varchar(50);index" json:"-"`

	CheckedIn     bool       `gorm:"not null;default:false" json:"checked_in"`
	CheckedInAt   *time.Time `json:"checked_in_at"`
	FechaRegistro time.Time  `gorm:"autoCreateTime" json:"fecha_registro"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Leader   *Leader        `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	CheckIns []VoterCheckIn `gorm:"foreignKey:VoterID" json:"check_ins,omitempty"`
}
