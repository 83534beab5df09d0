package model

type DisasterType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PlanSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisasterType string `json:"disaster_type,omitempty"`
}

type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

type Supply struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// DisasterPlan is a generated plan. Every field is optional; the generator
// omits sections it has nothing for.
type DisasterPlan struct {
	Name                 string             `json:"name,omitempty"`
	Description          string             `json:"description,omitempty"`
	CommonRegions        []string           `json:"common_regions,omitempty"`
	PreparationSteps     []string           `json:"preparation_steps,omitempty"`
	ResponseSteps        []string           `json:"response_steps,omitempty"`
	RecoverySteps        []string           `json:"recovery_steps,omitempty"`
	EmergencyContacts    []EmergencyContact `json:"emergency_contacts,omitempty"`
	SuppliesNeeded       []Supply           `json:"supplies_needed,omitempty"`
	TrainingRequirements []string           `json:"training_requirements,omitempty"`
}

// DisplayName falls back to a generic title when the generator left name empty.
func (p DisasterPlan) DisplayName() string {
	if p.Name == "" {
		return "Generated Disaster Plan"
	}
	return p.Name
}
