// pkg/plan/schema/schema.go

// Package schema structurally validates LLM output against the plan
// shape the results view depends on. Validation is structural only:
// contents are not re-checked for business plausibility.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"nolabor/pkg/plan/types"
	"nolabor/pkg/roles"
)

// Validate checks raw LLM output and, when it passes, returns the
// decoded plan. Any missing or mistyped field fails.
func Validate(raw []byte) (*types.Plan, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if err := checkObject(m); err != nil {
		return nil, err
	}
	var p types.Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

func checkObject(m map[string]any) error {
	ov, err := obj(m, "overview")
	if err != nil {
		return err
	}
	if err := str(ov, "overview.situation", "situation"); err != nil {
		return err
	}
	if err := str(ov, "overview.core_insight", "core_insight"); err != nil {
		return err
	}
	if err := strSlice(ov, "overview.gaps", "gaps"); err != nil {
		return err
	}
	hunts, err := objSlice(ov, "overview.suggested_roles_to_hunt", "suggested_roles_to_hunt", false)
	if err != nil {
		return err
	}
	for i, h := range hunts {
		if err := str(h, fmt.Sprintf("suggested_roles_to_hunt[%d].role", i), "role"); err != nil {
			return err
		}
	}

	pipes, err := objSlice(m, "pipelines", "pipelines", true)
	if err != nil {
		return err
	}
	for i, p := range pipes {
		if err := checkPipeline(p, fmt.Sprintf("pipelines[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func checkPipeline(p map[string]any, at string) error {
	if err := strNonEmpty(p, at+".id", "id"); err != nil {
		return err
	}
	if err := strNonEmpty(p, at+".name", "name"); err != nil {
		return err
	}

	mech, err := obj(p, at+".income_mechanism")
	if err != nil {
		return err
	}
	for _, k := range []string{"type", "trigger", "settlement"} {
		if err := str(mech, at+".income_mechanism."+k, k); err != nil {
			return err
		}
	}

	parties, err := objSlice(p, at+".parties_structure", "parties_structure", true)
	if err != nil {
		return err
	}
	for i, pt := range parties {
		pat := fmt.Sprintf("%s.parties_structure[%d]", at, i)
		if err := str(pt, pat+".party", "party"); err != nil {
			return err
		}
		if err := str(pt, pat+".role_type", "role_type"); err != nil {
			return err
		}
		if rt := pt["role_type"].(string); !roles.ValidPartyType(rt) {
			return fmt.Errorf("%s.role_type: invalid value %q", pat, rt)
		}
		if err := strSlice(pt, pat+".resources", "resources"); err != nil {
			return err
		}
		if err := str(pt, pat+".role_value", "role_value"); err != nil {
			return err
		}
		if err := str(pt, pat+".make_them_happy", "make_them_happy"); err != nil {
			return err
		}
	}

	for _, k := range []string{"mvp", "weak_link", "revenue_trigger", "first_step"} {
		if err := str(p, at+"."+k, k); err != nil {
			return err
		}
	}
	if err := strSlice(p, at+".anti_bypass_strategies", "anti_bypass_strategies"); err != nil {
		return err
	}

	risks, err := objSlice(p, at+".risks_and_planB", "risks_and_planB", false)
	if err != nil {
		return err
	}
	for i, r := range risks {
		rat := fmt.Sprintf("%s.risks_and_planB[%d]", at, i)
		if err := str(r, rat+".risk", "risk"); err != nil {
			return err
		}
		if err := str(r, rat+".mitigation", "mitigation"); err != nil {
			return err
		}
	}

	load, err := obj(p, at+".labor_load_estimate")
	if err != nil {
		return err
	}
	for _, k := range []string{"hours_per_week", "level", "alternative"} {
		if err := str(load, at+".labor_load_estimate."+k, k); err != nil {
			return err
		}
	}
	return nil
}

func obj(m map[string]any, path string) (map[string]any, error) {
	key := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		key = path[i+1:]
	}
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%s: missing", path)
	}
	o, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: not an object", path)
	}
	return o, nil
}

func objSlice(m map[string]any, path, key string, nonEmpty bool) ([]map[string]any, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%s: missing", path)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: not an array", path)
	}
	if nonEmpty && len(arr) == 0 {
		return nil, fmt.Errorf("%s: empty", path)
	}
	out := make([]map[string]any, 0, len(arr))
	for i, e := range arr {
		o, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: not an object", path, i)
		}
		out = append(out, o)
	}
	return out, nil
}

func str(m map[string]any, path, key string) error {
	v, ok := m[key]
	if !ok {
		return fmt.Errorf("%s: missing", path)
	}
	if _, ok := v.(string); !ok {
		return fmt.Errorf("%s: not a string", path)
	}
	return nil
}

func strNonEmpty(m map[string]any, path, key string) error {
	if err := str(m, path, key); err != nil {
		return err
	}
	if m[key].(string) == "" {
		return fmt.Errorf("%s: empty", path)
	}
	return nil
}

func strSlice(m map[string]any, path, key string) error {
	v, ok := m[key]
	if !ok {
		return fmt.Errorf("%s: missing", path)
	}
	arr, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%s: not an array", path)
	}
	for i, e := range arr {
		if _, ok := e.(string); !ok {
			return fmt.Errorf("%s[%d]: not a string", path, i)
		}
	}
	return nil
}
