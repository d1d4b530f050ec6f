package model

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "masculino"
	GenderFemale Gender = "feminino"
	GenderOther  Gender = "outro"
)

type SmokingHabit string

const (
	SmokingNever   SmokingHabit = "never"
	SmokingFormer  SmokingHabit = "former"
	SmokingCurrent SmokingHabit = "current"
)

type AlcoholHabit string

const (
	AlcoholNever      AlcoholHabit = "never"
	AlcoholOccasional AlcoholHabit = "occasional"
	AlcoholFrequent   AlcoholHabit = "frequent"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

// Patient is the registry record owned by the records service. The
// console never mutates a patient in place; every operation returns a
// fresh snapshot.
type Patient struct {
	ID          int64       `json:"id"`
	FullName    string      `json:"full_name"`
	CPF         string      `json:"cpf"`
	BirthDate   string      `json:"birth_date"`
	Age         int         `json:"age"`
	Gender      Gender      `json:"gender"`
	Phone       string      `json:"phone,omitempty"`
	Email       string      `json:"email,omitempty"`
	Address     Address     `json:"address"`
	MedicalInfo MedicalInfo `json:"medical_info"`
	Lifestyle   Lifestyle   `json:"lifestyle"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Address struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zipcode,omitempty"`
}

type MedicalInfo struct {
	Allergies          []string `json:"allergies"`
	ChronicDiseases    []string `json:"chronic_diseases"`
	PreviousSurgeries  []string `json:"previous_surgeries"`
	FamilyHistory      []string `json:"family_history"`
	CurrentMedications []string `json:"current_medications"`
}

type Lifestyle struct {
	Smoking            SmokingHabit  `json:"smoking"`
	AlcoholConsumption AlcoholHabit  `json:"alcohol_consumption"`
	PhysicalActivity   ActivityLevel `json:"physical_activity"`
}

// AgeAt derives the patient's age in whole years from the birth date.
// Returns 0 when the birth date is absent or malformed.
func (p *Patient) AgeAt(now time.Time) int {
	if p.BirthDate == "" {
		return 0
	}
	born, err := time.Parse("2006-01-02", p.BirthDate)
	if err != nil {
		return 0
	}
	years := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// CreatePatientRequest carries the flat registration form. Field names
// follow the records service contract.
type CreatePatientRequest struct {
	FullName            string   `json:"full_name" binding:"required"`
	CPF                 string   `json:"cpf" binding:"required,cpf"`
	BirthDate           string   `json:"birth_date" binding:"required,datetime=2006-01-02"`
	Gender              string   `json:"gender" binding:"required,oneof=masculino feminino outro"`
	Phone               string   `json:"phone"`
	Email               string   `json:"email" binding:"omitempty,email"`
	AddressStreet       string   `json:"address_street"`
	AddressNumber       string   `json:"address_number"`
	AddressComplement   string   `json:"address_complement"`
	AddressNeighborhood string   `json:"address_neighborhood"`
	AddressCity         string   `json:"address_city"`
	AddressState        string   `json:"address_state"`
	AddressZipCode      string   `json:"address_zipcode"`
	Allergies           []string `json:"allergies"`
	ChronicDiseases     []string `json:"chronic_diseases"`
	PreviousSurgeries   []string `json:"previous_surgeries"`
	FamilyHistory       []string `json:"family_history"`
	CurrentMedications  []string `json:"current_medications"`
	Smoking             string   `json:"smoking" binding:"omitempty,oneof=never former current"`
	AlcoholConsumption  string   `json:"alcohol_consumption" binding:"omitempty,oneof=never occasional frequent"`
	PhysicalActivity    string   `json:"physical_activity" binding:"omitempty,oneof=sedentary moderate active"`
}

// UpdatePatientRequest mirrors the create form; the records service
// treats omitted fields as unchanged.
type UpdatePatientRequest CreatePatientRequest
