package roles

import "testing"

func TestPartition(t *testing.T) {
	for _, r := range []string{EnterpriseOwner, StoreOwner, DepartmentHead, BrandManager} {
		if !IsDemandSide(r) {
			t.Errorf("%s should be demand-side", r)
		}
		if PartyLabel(r) != PartyDemand {
			t.Errorf("%s label = %s", r, PartyLabel(r))
		}
	}
	for _, r := range []string{ProductProvider, ServiceProvider, TrafficProvider, OtherProvider} {
		if IsDemandSide(r) {
			t.Errorf("%s should be delivery-side", r)
		}
		if PartyLabel(r) != PartyDelivery {
			t.Errorf("%s label = %s", r, PartyLabel(r))
		}
	}
}

func TestNormalizeUnknownRole(t *testing.T) {
	if got := Normalize("ceo_of_everything"); got != Other {
		t.Fatalf("Normalize(unknown) = %s, want %s", got, Other)
	}
	if got := Display("ceo_of_everything"); got != "其他角色" {
		t.Fatalf("Display(unknown) = %s", got)
	}
	if got := PartyLabel("ceo_of_everything"); got != "其他" {
		t.Fatalf("PartyLabel(unknown) = %s", got)
	}
}

func TestFallbackPartyTypeAlwaysValid(t *testing.T) {
	for _, r := range []string{EnterpriseOwner, ServiceProvider, Other, "garbage", ""} {
		if rt := FallbackPartyType(r); !ValidPartyType(rt) {
			t.Errorf("FallbackPartyType(%q) = %q, not a valid party type", r, rt)
		}
	}
	if FallbackPartyType(StoreOwner) != PartyDemand {
		t.Error("store_owner should map to 需求方")
	}
	if FallbackPartyType(TrafficProvider) != PartyDelivery {
		t.Error("traffic_provider should map to 交付方")
	}
}

func TestMotivationLabelPassthrough(t *testing.T) {
	if got := MotivationLabel("recurring_income"); got != "持续性收入" {
		t.Fatalf("known tag = %s", got)
	}
	if got := MotivationLabel("wants_a_yacht"); got != "wants_a_yacht" {
		t.Fatalf("unknown tag should pass verbatim, got %s", got)
	}
}

func TestValidPartyType(t *testing.T) {
	for _, v := range []string{PartyDemand, PartyDelivery, PartyCapital, PartyCoordinator} {
		if !ValidPartyType(v) {
			t.Errorf("%s should be valid", v)
		}
	}
	if ValidPartyType("供应方") {
		t.Error("供应方 should be invalid")
	}
}
