package ai

import (
	"context"
	"strings"
	"testing"

	"nolabor/pkg/plan/schema"
)

func TestMockPlanValidAndFreeOfPromptMarkup(t *testing.T) {
	user := "## 项目\n名称：测试\n描述：一段很长的描述\n\n## 关键人\n1. 王老师\n"
	out, err := NewMock().GeneratePlan(context.Background(), "sys", user, "asst", DefaultParams(""))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := schema.Validate(out); err != nil {
		t.Fatalf("mock output failed validation: %v", err)
	}
	// the rendered user section must not leak into display fields
	if strings.Contains(string(out), "## ") {
		t.Fatalf("prompt markup leaked into mock plan:\n%s", out)
	}
}
