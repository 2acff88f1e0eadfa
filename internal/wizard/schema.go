package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Steps is the number of wizard steps; the last one is review only.
const (
	Steps      = 8
	ReviewStep = Steps
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return validDate(fl.Field().String())
	})
	return v
}

func validDate(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

type roleStep struct {
	Role string `json:"role" validate:"oneof=attachment internship graduate junior mid-level senior expert"`
}

type categoryStep struct {
	Category string `json:"category" validate:"min=2"`
}

type basicsStep struct {
	Title          string `json:"title" validate:"min=3"`
	CompanyName    string `json:"companyName" validate:"min=2"`
	Description    string `json:"description" validate:"min=50"`
	Location       string `json:"location" validate:"min=2"`
	CompanyWebsite string `json:"companyWebsite" validate:"omitempty,url"`
	Logo           string `json:"logo" validate:"omitempty,url"`
}

type detailsStep struct {
	EmploymentType      string `json:"employmentType" validate:"oneof=full-time part-time contract temporary volunteer internship"`
	ExperienceLevel     string `json:"experienceLevel" validate:"oneof=internship entry associate mid-senior director executive"`
	ApplicationDeadline string `json:"applicationDeadline" validate:"omitempty,isodate"`
	IsRemote            bool   `json:"isRemote"`
}

type salary struct {
	Min      float64 `json:"min" validate:"gte=0"`
	Max      float64 `json:"max" validate:"gte=0,gtefield=Min"`
	Currency string  `json:"currency" validate:"required"`
	Period   string  `json:"period" validate:"oneof=hour day week month year"`
}

type compensationStep struct {
	SalaryRange salary `json:"salaryRange"`
}

type education struct {
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
}

type language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency" validate:"oneof=basic conversational professional fluent native"`
}

type requirements struct {
	Education  []education `json:"education" validate:"dive"`
	Experience struct {
		Years int `json:"years" validate:"gte=0"`
	} `json:"experience"`
	Languages []language `json:"languages" validate:"dive"`
}

type requirementsStep struct {
	Requirements requirements `json:"requirements"`
}

type benefitsStep struct {
	Benefits struct {
		OtherBenefits []string `json:"otherBenefits" validate:"dive,required"`
	} `json:"benefits"`
	CompanyCulture struct {
		Values []string `json:"values" validate:"dive,required"`
	} `json:"companyCulture"`
}

// metadata holds the fields only the full schema checks.
type metadata struct {
	Status     string `json:"status" validate:"oneof=open closed paused draft"`
	DatePosted string `json:"datePosted" validate:"required,isodate"`
	Link       string `json:"link" validate:"omitempty,url"`
}

// project extracts the part of the draft a step validates. Step 0 is the
// metadata checked only on submit.
func project(step int, j models.Job) any {
	switch step {
	case 0:
		return metadata{Status: string(j.Status), DatePosted: j.DatePosted, Link: j.Link}
	case 1:
		return roleStep{Role: j.Role}
	case 2:
		return categoryStep{Category: j.Category}
	case 3:
		return basicsStep{
			Title:          j.Title,
			CompanyName:    j.CompanyName,
			Description:    j.Description,
			Location:       j.Location,
			CompanyWebsite: j.CompanyWebsite,
			Logo:           j.Logo,
		}
	case 4:
		return detailsStep{
			EmploymentType:      j.EmploymentType,
			ExperienceLevel:     j.ExperienceLevel,
			ApplicationDeadline: j.ApplicationDeadline,
			IsRemote:            j.IsRemote,
		}
	case 5:
		return compensationStep{SalaryRange: salary{
			Min:      j.SalaryRange.Min,
			Max:      j.SalaryRange.Max,
			Currency: j.SalaryRange.Currency,
			Period:   j.SalaryRange.Period,
		}}
	case 6:
		var r requirements
		for _, e := range j.Requirements.Education {
			r.Education = append(r.Education, education{Degree: e.Degree, FieldOfStudy: e.FieldOfStudy})
		}
		for _, l := range j.Requirements.Languages {
			r.Languages = append(r.Languages, language{Name: l.Name, Proficiency: l.Proficiency})
		}
		r.Experience.Years = j.Requirements.Experience.Years
		return requirementsStep{Requirements: r}
	case 7:
		var b benefitsStep
		b.Benefits.OtherBenefits = j.Benefits.OtherBenefits
		b.CompanyCulture.Values = j.CompanyCulture.Values
		return b
	}
	return nil
}

// ValidationError is the first failure found in a step.
type ValidationError struct {
	Step    int    `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

var ErrUnknownStep = errors.New("unknown wizard step")

// ValidateStep checks the part of draft that step owns. The review step has
// nothing to check.
func ValidateStep(step int, draft models.Job) ([]ValidationError, error) {
	if step < 1 || step > Steps {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	if step == ReviewStep {
		return nil, nil
	}
	return check(step, project(step, draft)), nil
}

// ValidateAll checks every step plus the metadata fields of a finished
// posting.
func ValidateAll(draft models.Job) []ValidationError {
	var out []ValidationError
	for step := 1; step < ReviewStep; step++ {
		out = append(out, check(step, project(step, draft))...)
	}
	return append(out, check(0, project(0, draft))...)
}

func check(step int, v any) []ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Step: step, Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, ValidationError{Step: step, Field: field, Message: message(field, fe.Tag())})
	}
	return out
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

func message(field, tag string) string {
	key := indexPattern.ReplaceAllString(field, "") + "." + tag
	if m, ok := messages[key]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid", field)
}

var messages = map[string]string{
	"role.oneof":                               "Please select a job role",
	"category.min":                             "Please select or enter a category",
	"title.min":                                "Job title must be at least 3 characters",
	"companyName.min":                          "Company name must be at least 2 characters",
	"description.min":                          "Description must be at least 50 characters",
	"location.min":                             "Location is required",
	"companyWebsite.url":                       "Invalid website URL",
	"logo.url":                                 "Invalid logo URL",
	"employmentType.oneof":                     "Please select an employment type",
	"experienceLevel.oneof":                    "Please select an experience level",
	"applicationDeadline.isodate":              "Application deadline must be a valid date",
	"salaryRange.min.gte":                      "Minimum salary must be 0 or greater",
	"salaryRange.max.gte":                      "Maximum salary must be 0 or greater",
	"salaryRange.max.gtefield":                 "Maximum salary must be greater than or equal to minimum salary",
	"salaryRange.currency.required":            "Currency is required",
	"salaryRange.period.oneof":                 "Please select a pay period",
	"requirements.experience.years.gte":        "Years of experience cannot be negative",
	"requirements.languages.proficiency.oneof": "Please select a language proficiency",
	"benefits.otherBenefits.required":          "Benefits cannot be blank",
	"companyCulture.values.required":           "Company values cannot be blank",
	"status.oneof":                             "Invalid job status",
	"datePosted.required":                      "Date posted is required",
	"datePosted.isodate":                       "Date posted must be a valid date",
	"link.url":                                 "Invalid application link",
}
