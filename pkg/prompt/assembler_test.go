package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"nolabor/pkg/logger"
	"nolabor/pkg/plan/types"
)

func sampleForm() *types.FormData {
	return &types.FormData{
		ProjectName:        "Bonnie英语培训管道",
		ProjectDescription: "连接升学规划师与外教，撮合英语培训订单",
		KeyPersons: []types.Person{
			{Name: "王老师", Role: "service_provider", Resources: []string{"教学经验"}, MakeHappy: []string{"bring_leads", "recurring_income"}},
			{Name: "李顾问", Role: "enterprise_owner", Resources: []string{"家长客户"}, MakeHappy: []string{"brand_exposure"}},
		},
		ExternalResources: []string{"本地家长群"},
	}
}

func TestUserSectionContent(t *testing.T) {
	got := BuildUserSection(sampleForm())

	for _, want := range []string{
		"Bonnie英语培训管道",
		"王老师", "服务提供方", "交付方",
		"李顾问", "企业主", "需求方",
		"带来客源、持续性收入",
		"品牌曝光",
		"本地家长群",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("user section missing %q\n%s", want, got)
		}
	}

	// input order is preserved
	if strings.Index(got, "王老师") > strings.Index(got, "李顾问") {
		t.Error("persons out of input order")
	}
}

func TestUserSectionSizeCeiling(t *testing.T) {
	form := &types.FormData{
		ProjectName:        "大项目",
		ProjectDescription: strings.Repeat("这是一个非常长的项目描述。", 2000),
	}
	for i := 0; i < 10; i++ {
		form.KeyPersons = append(form.KeyPersons, types.Person{
			Name:      fmt.Sprintf("伙伴%d", i),
			Role:      "store_owner",
			Resources: []string{strings.Repeat("资源", 50)},
			MakeHappy: []string{"money", "recognition"},
			Notes:     strings.Repeat("备注", 100),
		})
	}
	got := BuildUserSection(form)
	if len(got) > 8*1024 {
		t.Fatalf("user section %d bytes, want <= 8KB", len(got))
	}
	// truncation must not split a UTF-8 sequence
	if !utf8.ValidString(got) {
		t.Fatal("truncated mid-rune")
	}
}

func TestClipNeverSplitsRunes(t *testing.T) {
	s := strings.Repeat("管", 100)
	// every cut point inside the first few runes, including one byte past
	// a lead byte
	for n := 1; n <= 12; n++ {
		got := clip(s, n)
		if !utf8.ValidString(got) {
			t.Errorf("clip at %d produced invalid UTF-8: %q", n, got)
		}
		if !strings.HasSuffix(got, "…") {
			t.Errorf("clip at %d dropped the ellipsis: %q", n, got)
		}
	}
	if got := clip("短描述", 100); got != "短描述" {
		t.Errorf("clip under the bound changed the string: %q", got)
	}
}

func TestAssembleUsesDiskTemplates(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SystemPromptFile), []byte("SYSTEM FROM DISK"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, AssistantPromptFile), []byte("ASSISTANT FROM DISK"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := New(dir, logger.NewNop())
	system, user, assistant := a.Assemble(sampleForm())
	if system != "SYSTEM FROM DISK" || assistant != "ASSISTANT FROM DISK" {
		t.Fatalf("templates not loaded from disk: %q / %q", system, assistant)
	}
	if user == "" {
		t.Fatal("empty user section")
	}
}

func TestAssembleFallsBackWhenTemplatesMissing(t *testing.T) {
	a := New(t.TempDir(), logger.NewNop())
	system, _, assistant := a.Assemble(sampleForm())
	if system == "" || assistant == "" {
		t.Fatal("built-in fallback prompts must not be empty")
	}
}
