// pkg/plan/types/types.go

package types

// FormData is the normalized shape of a submitted form, stored as JSON
// text on both the submissions and analyses rows.
type FormData struct {
	ProjectName        string   `json:"project_name"`
	ProjectDescription string   `json:"project_description"`
	KeyPersons         []Person `json:"key_persons"`
	ExternalResources  []string `json:"external_resources,omitempty"`
}

type Person struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Resources []string `json:"resources,omitempty"`
	MakeHappy []string `json:"make_happy,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// Plan is the result payload rendered by the results page. The shape is
// load-bearing: the schema validator enforces it structurally before a
// result is ever persisted as "real".
type Plan struct {
	Overview  Overview   `json:"overview"`
	Pipelines []Pipeline `json:"pipelines"`
}

type Overview struct {
	Situation            string          `json:"situation"`
	CoreInsight          string          `json:"core_insight"`
	Gaps                 []string        `json:"gaps"`
	SuggestedRolesToHunt []RoleCandidate `json:"suggested_roles_to_hunt"`
}

type RoleCandidate struct {
	Role        string `json:"role"`
	Why         string `json:"why"`
	WhereToFind string `json:"where_to_find,omitempty"`
}

type Pipeline struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	IncomeMechanism      IncomeMechanism `json:"income_mechanism"`
	PartiesStructure     []Party         `json:"parties_structure"`
	MVP                  string          `json:"mvp"`
	WeakLink             string          `json:"weak_link"`
	RevenueTrigger       string          `json:"revenue_trigger"`
	AntiBypassStrategies []string        `json:"anti_bypass_strategies"`
	RisksAndPlanB        []Risk          `json:"risks_and_planB"`
	FirstStep            string          `json:"first_step"`
	LaborLoadEstimate    LaborLoad       `json:"labor_load_estimate"`
}

type IncomeMechanism struct {
	Type       string `json:"type"`
	Trigger    string `json:"trigger"`
	Settlement string `json:"settlement"`
}

type Party struct {
	Party         string   `json:"party"`
	RoleType      string   `json:"role_type"`
	Resources     []string `json:"resources"`
	RoleValue     string   `json:"role_value"`
	MakeThemHappy string   `json:"make_them_happy"`
}

type Risk struct {
	Risk       string `json:"risk"`
	Mitigation string `json:"mitigation"`
}

type LaborLoad struct {
	HoursPerWeek string `json:"hours_per_week"`
	Level        string `json:"level"`
	Alternative  string `json:"alternative"`
}
