package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"nolabor/pkg/plan/fallback"
	"nolabor/pkg/plan/types"
)

func validPlanJSON(t *testing.T) []byte {
	t.Helper()
	// the fallback generator's output is the canonical valid shape
	plan := fallback.Generate(&types.FormData{
		ProjectName:        "测试项目",
		ProjectDescription: "描述",
		KeyPersons: []types.Person{
			{Name: "王老师", Role: "service_provider"},
			{Name: "李顾问", Role: "enterprise_owner"},
		},
	})
	raw, err := json.Marshal(plan)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func mutate(t *testing.T, raw []byte, fn func(m map[string]any)) []byte {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	fn(m)
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestValidateAcceptsFullPlan(t *testing.T) {
	p, err := Validate(validPlanJSON(t))
	if err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}
	if len(p.Pipelines) == 0 {
		t.Fatal("decoded plan lost pipelines")
	}
}

func TestValidateRejectsNonJSON(t *testing.T) {
	if _, err := Validate([]byte("好的，我来帮你分析…")); err == nil {
		t.Fatal("prose accepted")
	}
}

func TestValidateRejectsMissingPipelines(t *testing.T) {
	raw := mutate(t, validPlanJSON(t), func(m map[string]any) { delete(m, "pipelines") })
	if _, err := Validate(raw); err == nil || !strings.Contains(err.Error(), "pipelines") {
		t.Fatalf("missing pipelines not caught: %v", err)
	}
}

func TestValidateRejectsEmptyPipelines(t *testing.T) {
	raw := mutate(t, validPlanJSON(t), func(m map[string]any) { m["pipelines"] = []any{} })
	if _, err := Validate(raw); err == nil {
		t.Fatal("empty pipelines accepted")
	}
}

func TestValidateRejectsBadRoleType(t *testing.T) {
	raw := mutate(t, validPlanJSON(t), func(m map[string]any) {
		pipe := m["pipelines"].([]any)[0].(map[string]any)
		party := pipe["parties_structure"].([]any)[0].(map[string]any)
		party["role_type"] = "供应方"
	})
	if _, err := Validate(raw); err == nil || !strings.Contains(err.Error(), "role_type") {
		t.Fatalf("invalid role_type not caught: %v", err)
	}
}

func TestValidateRejectsMistypedField(t *testing.T) {
	raw := mutate(t, validPlanJSON(t), func(m map[string]any) {
		pipe := m["pipelines"].([]any)[0].(map[string]any)
		pipe["anti_bypass_strategies"] = "统一结算"
	})
	if _, err := Validate(raw); err == nil {
		t.Fatal("string where array expected was accepted")
	}
}

func TestValidateRejectsMissingMechanismKey(t *testing.T) {
	raw := mutate(t, validPlanJSON(t), func(m map[string]any) {
		pipe := m["pipelines"].([]any)[0].(map[string]any)
		mech := pipe["income_mechanism"].(map[string]any)
		delete(mech, "settlement")
	})
	if _, err := Validate(raw); err == nil || !strings.Contains(err.Error(), "settlement") {
		t.Fatalf("missing settlement not caught: %v", err)
	}
}

func TestValidateRejectsMissingLaborLoad(t *testing.T) {
	raw := mutate(t, validPlanJSON(t), func(m map[string]any) {
		pipe := m["pipelines"].([]any)[0].(map[string]any)
		delete(pipe, "labor_load_estimate")
	})
	if _, err := Validate(raw); err == nil {
		t.Fatal("missing labor_load_estimate accepted")
	}
}

func TestValidateRejectsMissingOverviewKeys(t *testing.T) {
	raw := mutate(t, validPlanJSON(t), func(m map[string]any) {
		ov := m["overview"].(map[string]any)
		delete(ov, "core_insight")
	})
	if _, err := Validate(raw); err == nil {
		t.Fatal("missing core_insight accepted")
	}
}
