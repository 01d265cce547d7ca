// pkg/prompt/assembler.go

// Package prompt turns a normalized form into the three-part prompt the
// LLM call uses. The plan schema is sensitive to exact section headers and
// party-type labels, so all assembly lives here.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"nolabor/pkg/logger"
	"nolabor/pkg/plan/types"
	"nolabor/pkg/roles"
)

const (
	SystemPromptFile    = "system_prompt.txt"
	AssistantPromptFile = "assistant_prompt.txt"

	// userSectionLimit bounds the assembled user text so ten fully filled
	// persons still fit the provider's context comfortably.
	userSectionLimit = 8 * 1024
)

// Minimal built-ins so the service still works with the template files
// missing from disk.
const (
	fallbackSystemPrompt = "你是非劳动收入管道设计顾问。根据用户项目与关键人信息，输出严格 JSON 的管道方案，包含 overview 与 pipelines 两部分。"

	fallbackAssistantPrompt = "我将只输出一个 JSON 对象，不包含任何解释文字。"
)

type Assembler struct {
	dir string
	log *logger.Logger
}

func New(dir string, log *logger.Logger) *Assembler {
	return &Assembler{dir: dir, log: log}
}

// Assemble produces (system, user, assistant) for one submission.
// Templates are re-read from disk on every call so they stay editable in
// place; missing files fall back to the built-in strings.
func (a *Assembler) Assemble(form *types.FormData) (string, string, string) {
	system := a.loadTemplate(SystemPromptFile, fallbackSystemPrompt)
	assistant := a.loadTemplate(AssistantPromptFile, fallbackAssistantPrompt)
	user := BuildUserSection(form)

	a.log.Info("prompt assembled",
		"project", form.ProjectName,
		"persons", len(form.KeyPersons),
		"system_len", len(system),
		"user_len", len(user),
	)
	return system, user, assistant
}

func (a *Assembler) loadTemplate(name, fallback string) string {
	b, err := os.ReadFile(filepath.Join(a.dir, name))
	if err != nil || len(strings.TrimSpace(string(b))) == 0 {
		a.log.Warn("prompt template missing, using built-in", "file", name, "err", err)
		return fallback
	}
	return string(b)
}

// BuildUserSection renders the user payload in input order. The section
// headers and labels below are part of the prompt contract.
func BuildUserSection(form *types.FormData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 项目\n名称：%s\n描述：%s\n",
		strings.TrimSpace(form.ProjectName),
		clip(strings.TrimSpace(form.ProjectDescription), 4000))

	b.WriteString("\n## 关键人\n")
	if len(form.KeyPersons) == 0 {
		b.WriteString("（暂无，请在方案中给出需要寻找的角色）\n")
	}
	for i, p := range form.KeyPersons {
		fmt.Fprintf(&b, "%d. %s｜角色：%s（%s）\n", i+1, p.Name, roles.Display(p.Role), roles.PartyLabel(p.Role))
		if len(p.Resources) > 0 {
			fmt.Fprintf(&b, "   资源：%s\n", strings.Join(p.Resources, "、"))
		}
		if len(p.MakeHappy) > 0 {
			labels := make([]string, 0, len(p.MakeHappy))
			for _, t := range p.MakeHappy {
				labels = append(labels, roles.MotivationLabel(t))
			}
			fmt.Fprintf(&b, "   让他开心的点：%s\n", strings.Join(labels, "、"))
		}
		if n := strings.TrimSpace(p.Notes); n != "" {
			fmt.Fprintf(&b, "   备注：%s\n", clip(n, 300))
		}
	}

	if len(form.ExternalResources) > 0 {
		b.WriteString("\n## 外部资源\n")
		for _, r := range form.ExternalResources {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	out := b.String()
	if len(out) > userSectionLimit {
		out = cut(out, userSectionLimit)
	}
	return out
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return cut(s, n) + "…"
}

// cut truncates s at the byte bound without splitting a UTF-8 sequence:
// trailing continuation bytes go first, then a dangling lead byte.
func cut(s string, n int) string {
	s = s[:n]
	for len(s) > 0 && (s[len(s)-1]&0xC0) == 0x80 {
		s = s[:len(s)-1]
	}
	if r, size := utf8.DecodeLastRuneInString(s); r == utf8.RuneError && size == 1 {
		s = s[:len(s)-1]
	}
	return s
}
