// pkg/ai/mock_client.go

package ai

import (
	"context"
	"encoding/json"

	"nolabor/pkg/plan/fallback"
	"nolabor/pkg/plan/types"
)

type mockClient struct{}

// NewMock returns a client that answers with a deterministic, schema-valid
// plan derived from the user section. Handy for local dev without an API
// key (LLM_API_KEY empty).
func NewMock() Client { return &mockClient{} }

func (m *mockClient) GeneratePlan(ctx context.Context, system, user, assistant string, p ModelParams) ([]byte, error) {
	// The mock cannot see the structured form, so it emits the template
	// plan with a generic project shell. The rendered user section stays
	// out of the plan: it is prompt markup, not display text.
	plan := fallback.Generate(&types.FormData{
		ProjectName:        "演示项目",
		ProjectDescription: "本地演示运行（未配置 LLM_API_KEY）",
	})
	return json.Marshal(plan)
}
