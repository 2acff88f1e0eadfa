package models

import "time"

type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
	JobPaused JobStatus = "paused"
	JobDraft  JobStatus = "draft"
)

type SalaryRange struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Currency   string  `json:"currency"`
	Period     string  `json:"period"`
	IsEstimate bool    `json:"isEstimate"`
}

type EducationRequirement struct {
	ID           string `json:"id"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	Required     bool   `json:"required"`
}

type LanguageRequirement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
	Required    bool   `json:"required"`
}

type ExperienceRequirement struct {
	Years              int      `json:"years"`
	Skills             []string `json:"skills"`
	IndustryExperience []string `json:"industryExperience"`
}

type Requirements struct {
	Education       []EducationRequirement `json:"education"`
	Experience      ExperienceRequirement  `json:"experience"`
	Skills          []string               `json:"skills"`
	Languages       []LanguageRequirement  `json:"languages"`
	Certifications  []string               `json:"certifications"`
	TechnicalSkills []string               `json:"technicalSkills"`
	SoftSkills      []string               `json:"softSkills"`
}

type Benefits struct {
	HealthInsurance         bool     `json:"healthInsurance"`
	RetirementPlans         bool     `json:"retirementPlans"`
	PaidTimeOff             bool     `json:"paidTimeOff"`
	FlexibleHours           bool     `json:"flexibleHours"`
	RemoteWorkOptions       bool     `json:"remoteWorkOptions"`
	ProfessionalDevelopment bool     `json:"professionalDevelopment"`
	WellnessPrograms        bool     `json:"wellnessPrograms"`
	FamilyBenefits          bool     `json:"familyBenefits"`
	RelocationAssistance    bool     `json:"relocationAssistance"`
	OtherBenefits           []string `json:"otherBenefits"`
}

type CompanyCulture struct {
	Values             []string `json:"values"`
	WorkEnvironment    string   `json:"workEnvironment"`
	DiversityInclusion string   `json:"diversityInclusion"`
}

// Job is a posting owned by the job catalog. ID is the store's document key,
// JobID the zero-padded public identifier.
type Job struct {
	ID    string `json:"id,omitempty"`
	JobID string `json:"jobId"`

	Title               string `json:"title"`
	Description         string `json:"description"`
	DetailedDescription string `json:"detailedDescription,omitempty"`
	CompanyName         string `json:"companyName"`
	CompanyDescription  string `json:"companyDescription,omitempty"`
	CompanyWebsite      string `json:"companyWebsite,omitempty"`
	Logo                string `json:"logo,omitempty"`

	Role            string `json:"role"`
	Category        string `json:"category"`
	SubCategory     string `json:"subCategory,omitempty"`
	JobFunction     string `json:"jobFunction,omitempty"`
	Industry        string `json:"industry,omitempty"`
	ExperienceLevel string `json:"experienceLevel"`
	EmploymentType  string `json:"employmentType"`

	Location           string `json:"location"`
	IsRemote           bool   `json:"isRemote"`
	RemoteAllowed      bool   `json:"remoteAllowed"`
	WorkFromHomePolicy string `json:"workFromHomePolicy,omitempty"`

	Payout         string      `json:"payout,omitempty"`
	SalaryRange    SalaryRange `json:"salaryRange"`
	BonusPotential string      `json:"bonusPotential,omitempty"`
	EquityOffered  bool        `json:"equityOffered"`

	Link                    string   `json:"link,omitempty"`
	ApplicationDeadline     string   `json:"applicationDeadline,omitempty"`
	ApplicationProcess      []string `json:"applicationProcess,omitempty"`
	ApplicationRequirements []string `json:"applicationRequirements,omitempty"`
	RequiredDocuments       []string `json:"requiredDocuments,omitempty"`

	Requirements   Requirements   `json:"requirements"`
	Benefits       Benefits       `json:"benefits"`
	CompanyCulture CompanyCulture `json:"companyCulture"`

	IsSponsored   bool      `json:"isSponsored"`
	SponsoredBy   string    `json:"sponsoredBy,omitempty"`
	DatePosted    string    `json:"datePosted"`
	StartDate     string    `json:"startDate,omitempty"`
	ValidThrough  string    `json:"validThrough,omitempty"`
	HiringManager string    `json:"hiringManager,omitempty"`
	Status        JobStatus `json:"status"`
	Keywords      []string  `json:"keywords,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
