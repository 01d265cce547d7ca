// pkg/plan/fallback/fallback.go

// Package fallback synthesizes a schema-valid plan from the form payload
// alone. It runs whenever the LLM path fails: timeout, transport fault,
// schema rejection, or any orchestrator panic. The product never shows a
// raw error; a generic plan beats a blank page.
package fallback

import (
	"fmt"
	"strings"

	"nolabor/pkg/plan/types"
	"nolabor/pkg/roles"
)

const (
	// CoordinatorName is the designer party injected into every pipeline.
	CoordinatorName = "设计者（你）"
	// PlaceholderPrefix flags synthesized to-be-recruited parties.
	PlaceholderPrefix = "【待补齐】"
)

// Generate builds the fallback plan. Output is a pure function of the
// form: running it twice on the same input yields identical plans.
func Generate(form *types.FormData) *types.Plan {
	parties := buildParties(form)
	gaps, hunts := buildGaps(form)

	name := strings.TrimSpace(form.ProjectName)
	if name == "" {
		name = "你的项目"
	}

	pipeline := types.Pipeline{
		ID:   "pipeline_1",
		Name: fmt.Sprintf("%s·资源撮合分成管道", name),
		IncomeMechanism: types.IncomeMechanism{
			Type:       "撮合分成",
			Trigger:    "需求方通过你对接的交付方完成一笔交易",
			Settlement: "按单结算，你作为统筹方抽取约定比例的分成",
		},
		PartiesStructure: parties,
		MVP:              fmt.Sprintf("挑一个最小场景：为「%s」促成第一笔需求方与交付方的真实交易，手工对接即可，不做系统", name),
		WeakLink:         "需求方与交付方首次建立信任之前，撮合依赖你个人推动",
		RevenueTrigger:   "交易完成并回款时触发分成",
		AntiBypassStrategies: []string{
			"结算通道由你统一掌握，双方不直接对账",
			"把复购客户沉淀在你的名册里，按名册分成",
			"以书面约定分成规则，先小单验证再放量",
		},
		RisksAndPlanB: []types.Risk{
			{Risk: "双方绕开你私下成交", Mitigation: "前几单让利交换结算权，并用复购资源绑定双方"},
			{Risk: "交付质量不稳导致口碑受损", Mitigation: "先小范围试单，设置退款兜底规则"},
		},
		FirstStep: fmt.Sprintf("本周内分别与关键人各聊一次，确认「%s」里谁出需求、谁出交付、分成怎么算", name),
		LaborLoadEstimate: types.LaborLoad{
			HoursPerWeek: "3-5小时",
			Level:        "低",
			Alternative:  "跑通三单后，把对接话术整理成模板交给协作者执行",
		},
	}

	desc := strings.TrimSpace(form.ProjectDescription)
	if desc == "" {
		desc = "（未填写项目描述）"
	}

	return &types.Plan{
		Overview: types.Overview{
			Situation:            fmt.Sprintf("项目「%s」：%s", name, desc),
			CoreInsight:          "先不建团队、不开发产品，把已有关系里的需求和交付能力撮合起来，用结算权换取非劳动收入",
			Gaps:                 gaps,
			SuggestedRolesToHunt: hunts,
		},
		Pipelines: []types.Pipeline{pipeline},
	}
}

func buildParties(form *types.FormData) []types.Party {
	parties := make([]types.Party, 0, len(form.KeyPersons)+3)
	haveDemand, haveDelivery := false, false

	for _, p := range form.KeyPersons {
		rt := roles.FallbackPartyType(p.Role)
		switch rt {
		case roles.PartyDemand:
			haveDemand = true
		case roles.PartyDelivery:
			haveDelivery = true
		}
		res := p.Resources
		if res == nil {
			res = []string{}
		}
		parties = append(parties, types.Party{
			Party:         p.Name,
			RoleType:      rt,
			Resources:     res,
			RoleValue:     fmt.Sprintf("以%s身份提供%s侧价值", roles.Display(p.Role), sideWord(rt)),
			MakeThemHappy: happyLine(p.MakeHappy),
		})
	}

	if !haveDemand {
		parties = append(parties, types.Party{
			Party:         PlaceholderPrefix + "需求方伙伴",
			RoleType:      roles.PartyDemand,
			Resources:     []string{"稳定的客户或订单来源"},
			RoleValue:     "汇聚需求，决定管道是否有水流过",
			MakeThemHappy: "帮其客户拿到更省心的交付，且不增加其工作量",
		})
	}
	if !haveDelivery {
		parties = append(parties, types.Party{
			Party:         PlaceholderPrefix + "交付方伙伴",
			RoleType:      roles.PartyDelivery,
			Resources:     []string{"可交付的产品或服务能力"},
			RoleValue:     "承接订单并保证交付质量",
			MakeThemHappy: "获得不需要自己获客的稳定订单",
		})
	}

	parties = append(parties, types.Party{
		Party:         CoordinatorName,
		RoleType:      roles.PartyCoordinator,
		Resources:     []string{"规则设计", "双边关系", "结算通道"},
		RoleValue:     "制定分成规则、掌握结算，让交易在你的轨道上发生",
		MakeThemHappy: "用最小劳动换取可持续分成",
	})
	return parties
}

func buildGaps(form *types.FormData) ([]string, []types.RoleCandidate) {
	haveDemand, haveDelivery := false, false
	for _, p := range form.KeyPersons {
		if roles.FallbackPartyType(p.Role) == roles.PartyDemand {
			haveDemand = true
		} else {
			haveDelivery = true
		}
	}

	gaps := []string{}
	hunts := []types.RoleCandidate{}
	if !haveDemand {
		gaps = append(gaps, "缺少稳定的需求来源，管道还没有水")
		hunts = append(hunts, types.RoleCandidate{
			Role:        "需求方（企业主/店主等）",
			Why:         "没有需求侧，交付能力变现不了",
			WhereToFind: "行业社群、老客户转介绍、本地商圈",
		})
	}
	if !haveDelivery {
		gaps = append(gaps, "缺少可托付的交付能力，接到需求也接不住")
		hunts = append(hunts, types.RoleCandidate{
			Role:        "交付方（产品/服务提供者）",
			Why:         "交付质量决定管道能否复购",
			WhereToFind: "同行推荐、供应商目录、自由职业者平台",
		})
	}
	if len(form.KeyPersons) < 2 {
		hunts = append(hunts, types.RoleCandidate{
			Role:        "资金方或背书方",
			Why:         "早期信任不足时，第三方背书能显著降低撮合成本",
			WhereToFind: "行业协会、相识的品牌方",
		})
	}
	return gaps, hunts
}

func sideWord(roleType string) string {
	if roleType == roles.PartyDemand {
		return "需求"
	}
	return "交付"
}

func happyLine(tags []string) string {
	if len(tags) == 0 {
		return "在管道里获得与其投入匹配的稳定回报"
	}
	labels := make([]string, 0, len(tags))
	for _, t := range tags {
		labels = append(labels, roles.MotivationLabel(t))
	}
	return "满足其关心的：" + strings.Join(labels, "、")
}
