package catalog

// Item is a row of a named lookup table.
type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Kind describes one named lookup table exposed under /catalogs/{slug}.
type Kind struct {
	Slug  string
	Table string
	Label string
}

const (
	KindGenders         = "generos"
	KindSpecialties     = "especialidades"
	KindPositions       = "puestos"
	KindPaymentTypes    = "tipos-pago"
	KindStatuses        = "estados-turno"
	KindMedicalHistory  = "antecedentes"
	KindFunctionalTests = "analisis-funcional"
	KindInsurers        = "obras-sociales"
	KindTreatments      = "tratamientos"
	KindTeeth           = "piezas-dentales"
	KindToothFaces      = "caras-dentales"
)

var kinds = map[string]Kind{
	KindGenders:         {Slug: KindGenders, Table: "generos", Label: "gender"},
	KindSpecialties:     {Slug: KindSpecialties, Table: "especialidades", Label: "specialty"},
	KindPositions:       {Slug: KindPositions, Table: "puestos", Label: "position"},
	KindPaymentTypes:    {Slug: KindPaymentTypes, Table: "tipos_pagos", Label: "payment type"},
	KindStatuses:        {Slug: KindStatuses, Table: "estados_turnos", Label: "appointment status"},
	KindMedicalHistory:  {Slug: KindMedicalHistory, Table: "antecedentes", Label: "medical history item"},
	KindFunctionalTests: {Slug: KindFunctionalTests, Table: "analisis_funcional", Label: "functional analysis item"},
	KindInsurers:        {Slug: KindInsurers, Table: "obras_sociales", Label: "health insurer"},
	KindTreatments:      {Slug: KindTreatments, Table: "tratamientos", Label: "treatment"},
	KindTeeth:           {Slug: KindTeeth, Table: "piezas_dentales", Label: "tooth"},
	KindToothFaces:      {Slug: KindToothFaces, Table: "caras_dentales", Label: "tooth face"},
}

// LookupKind returns the kind registered under slug.
func LookupKind(slug string) (Kind, bool) {
	k, ok := kinds[slug]
	return k, ok
}

// Appointment statuses the auditor gives special wording to.
const (
	StatusScheduled = "Agendado"
	StatusAttended  = "Atendido"
	StatusCancelled = "Cancelado"
)

// DefaultGender is assigned to patients created without one.
const DefaultGender = "Otro"

// TimeSlot is a fixed bookable hour (horarios_fijos).
type TimeSlot struct {
	ID   int64  `json:"id"`
	Time string `json:"hora"`
}

// Weekday is a working day (dias_semana), Monday=0 through Friday=4.
type Weekday struct {
	ID     int64  `json:"id"`
	Number int    `json:"numero_dia"`
	Name   string `json:"nombre_dia"`
}

var weekdayNames = [...]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}

// WeekdayName returns the Spanish name of day n, or "Día Desconocido".
func WeekdayName(n int) string {
	if n < 0 || n >= len(weekdayNames) {
		return "Día Desconocido"
	}
	return weekdayNames[n]
}
