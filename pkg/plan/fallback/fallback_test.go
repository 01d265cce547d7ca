package fallback

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nolabor/pkg/plan/types"
	"nolabor/pkg/roles"
)

func bonnieForm() *types.FormData {
	return &types.FormData{
		ProjectName:        "Bonnie英语培训管道",
		ProjectDescription: "连接升学规划师与外教，撮合英语培训订单",
		KeyPersons: []types.Person{
			{Name: "王老师", Role: "service_provider", Resources: []string{"教学经验"}, MakeHappy: []string{"bring_leads", "recurring_income"}},
			{Name: "李顾问", Role: "enterprise_owner", Resources: []string{"家长客户"}, MakeHappy: []string{"brand_exposure"}},
		},
	}
}

func partyNames(p types.Pipeline) map[string]string {
	out := map[string]string{}
	for _, pt := range p.PartiesStructure {
		out[pt.Party] = pt.RoleType
	}
	return out
}

func TestGeneratePreservesPersonsAndInjectsCoordinator(t *testing.T) {
	plan := Generate(bonnieForm())

	if len(plan.Pipelines) == 0 {
		t.Fatal("no pipelines")
	}
	parties := partyNames(plan.Pipelines[0])

	if rt, ok := parties["王老师"]; !ok || rt != roles.PartyDelivery {
		t.Errorf("王老师 = %q, %v", rt, ok)
	}
	if rt, ok := parties["李顾问"]; !ok || rt != roles.PartyDemand {
		t.Errorf("李顾问 = %q, %v", rt, ok)
	}
	if rt, ok := parties[CoordinatorName]; !ok || rt != roles.PartyCoordinator {
		t.Errorf("coordinator missing or mistyped: %q, %v", rt, ok)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := json.Marshal(Generate(bonnieForm()))
	b, _ := json.Marshal(Generate(bonnieForm()))
	if string(a) != string(b) {
		t.Fatalf("fallback output not byte-identical:\n%s", cmp.Diff(string(a), string(b)))
	}
}

func TestGenerateEmptyPersonsSynthesizesPlaceholders(t *testing.T) {
	plan := Generate(&types.FormData{ProjectName: "x", ProjectDescription: "x"})

	if len(plan.Overview.SuggestedRolesToHunt) == 0 {
		t.Error("suggested_roles_to_hunt should not be empty with no persons")
	}

	covered := map[string]bool{}
	placeholders := 0
	for _, pt := range plan.Pipelines[0].PartiesStructure {
		covered[pt.RoleType] = true
		if strings.HasPrefix(pt.Party, PlaceholderPrefix) {
			placeholders++
		}
	}
	for _, rt := range []string{roles.PartyDemand, roles.PartyDelivery, roles.PartyCoordinator} {
		if !covered[rt] {
			t.Errorf("role type %s not covered", rt)
		}
	}
	if placeholders < 2 {
		t.Errorf("want demand+delivery placeholders, got %d", placeholders)
	}
}

func TestGenerateFillsMissingDemandSideOnly(t *testing.T) {
	form := &types.FormData{
		ProjectName:        "纯交付团队",
		ProjectDescription: "只有交付能力",
		KeyPersons:         []types.Person{{Name: "小张", Role: "product_provider"}},
	}
	parties := partyNames(Generate(form).Pipelines[0])

	foundDemandPlaceholder := false
	for name, rt := range parties {
		if strings.HasPrefix(name, PlaceholderPrefix) {
			if rt == roles.PartyDemand {
				foundDemandPlaceholder = true
			}
			if rt == roles.PartyDelivery {
				t.Error("delivery placeholder synthesized although 小张 covers delivery")
			}
		}
	}
	if !foundDemandPlaceholder {
		t.Error("missing demand-side placeholder")
	}
}

func TestGenerateUnknownMotivationTagsVerbatim(t *testing.T) {
	form := bonnieForm()
	form.KeyPersons[0].MakeHappy = []string{"wants_a_yacht"}
	plan := Generate(form)
	for _, pt := range plan.Pipelines[0].PartiesStructure {
		if pt.Party == "王老师" && !strings.Contains(pt.MakeThemHappy, "wants_a_yacht") {
			t.Errorf("unknown tag lost: %q", pt.MakeThemHappy)
		}
	}
}
