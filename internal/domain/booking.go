package domain

import "time"

// Booking is a confirmed seat request for one stage. Applicant field names
// follow the public form (and the stage_bookings columns), hence the French.
type Booking struct {
	ID                string
	StageID           string
	Reference         string // BK-YYYY-NNNNNN, unique across all time
	Civilite          string
	Nom               string
	Prenom            string
	DateNaissance     time.Time
	Adresse           string
	CodePostal        string
	Ville             string
	Email             string
	EmailConfirmation string
	TelephoneMobile   string
	GuaranteeSerenite bool
	CGVAccepted       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BookingView is a booking joined with the stage fields a confirmation page
// needs, mirroring the lookup-by-reference query.
type BookingView struct {
	Booking
	StageCity        string
	StageFullAddress string
	StageDateStart   time.Time
	StageDateEnd     time.Time
	StagePrice       float64
}
