// pkg/roles/roles.go

// Package roles holds the closed role taxonomy and the open motivation
// label dictionary. Role identifiers are a fixed enum partitioned into
// demand-side and delivery-side; anything else collapses to "other".
// Motivation tags are open: unknown tags pass through verbatim.
package roles

// Role identifiers.
const (
	EnterpriseOwner = "enterprise_owner"
	StoreOwner      = "store_owner"
	DepartmentHead  = "department_head"
	BrandManager    = "brand_manager"
	ProductProvider = "product_provider"
	ServiceProvider = "service_provider"
	TrafficProvider = "traffic_provider"
	OtherProvider   = "other_provider"
	Other           = "other"
)

// Party role types as they appear inside plan payloads. The set is closed;
// the schema validator rejects anything else.
const (
	PartyDemand      = "需求方"
	PartyDelivery    = "交付方"
	PartyCapital     = "资金方"
	PartyCoordinator = "统筹方"
)

var demandSide = map[string]bool{
	EnterpriseOwner: true,
	StoreOwner:      true,
	DepartmentHead:  true,
	BrandManager:    true,
}

var deliverySide = map[string]bool{
	ProductProvider: true,
	ServiceProvider: true,
	TrafficProvider: true,
	OtherProvider:   true,
}

var displayNames = map[string]string{
	EnterpriseOwner: "企业主",
	StoreOwner:      "门店老板",
	DepartmentHead:  "部门负责人",
	BrandManager:    "品牌经理",
	ProductProvider: "产品提供方",
	ServiceProvider: "服务提供方",
	TrafficProvider: "流量提供方",
	OtherProvider:   "其他资源方",
	Other:           "其他角色",
}

var motivationLabels = map[string]string{
	"recognition":      "被认可",
	"money":            "赚钱",
	"bring_leads":      "带来客源",
	"recurring_income": "持续性收入",
	"brand_exposure":   "品牌曝光",
	"save_time":        "省时间",
	"influence":        "扩大影响力",
	"learn":            "学习成长",
	"connections":      "人脉资源",
}

// Normalize maps any identifier outside the closed enum to Other.
func Normalize(role string) string {
	if demandSide[role] || deliverySide[role] || role == Other {
		return role
	}
	return Other
}

// Display returns the Chinese display name for a role identifier.
func Display(role string) string {
	if n, ok := displayNames[Normalize(role)]; ok {
		return n
	}
	return displayNames[Other]
}

// PartyLabel classifies a role identifier for prompt text:
// 需求方 / 交付方 / 其他.
func PartyLabel(role string) string {
	role = Normalize(role)
	switch {
	case demandSide[role]:
		return PartyDemand
	case deliverySide[role]:
		return PartyDelivery
	default:
		return "其他"
	}
}

// FallbackPartyType is the role→party-type table used by the fallback
// generator, where every party must land on a valid plan role type.
// "other" counts as delivery-side there.
func FallbackPartyType(role string) string {
	if demandSide[Normalize(role)] {
		return PartyDemand
	}
	return PartyDelivery
}

// IsDemandSide reports whether the role sits on the demand side of the
// partition.
func IsDemandSide(role string) bool { return demandSide[Normalize(role)] }

// MotivationLabel translates a motivation tag; unknown tags come back
// unchanged.
func MotivationLabel(tag string) string {
	if l, ok := motivationLabels[tag]; ok {
		return l
	}
	return tag
}

// ValidPartyType reports whether s is one of the four plan role types.
func ValidPartyType(s string) bool {
	switch s {
	case PartyDemand, PartyDelivery, PartyCapital, PartyCoordinator:
		return true
	}
	return false
}
