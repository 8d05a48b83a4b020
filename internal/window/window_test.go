package window

import "testing"

func TestRuleMatchesClassCaseInsensitive(t *testing.T) {
	rule := Rule{Kind: RuleClass, Pattern: "Pavucontrol"}
	w := Window{Class: "pavucontrol"}

	if !rule.Matches(w) {
		t.Fatalf("expected class rule to match case-insensitively")
	}
}

func TestRuleMatchesTitleSubstring(t *testing.T) {
	rule := Rule{Kind: RuleTitle, Pattern: "preferences"}
	w := Window{Title: "Firefox Preferences — General"}

	if !rule.Matches(w) {
		t.Fatalf("expected title rule to match as a substring")
	}
}

func TestRuleDoesNotMatchUnrelatedWindow(t *testing.T) {
	rule := Rule{Kind: RuleExe, Pattern: "gimp"}
	w := Window{Exe: "firefox"}

	if rule.Matches(w) {
		t.Fatalf("did not expect exe rule to match unrelated window")
	}
}

func TestApplyFloatRulesSetsFloatingOnMatch(t *testing.T) {
	w := Window{Class: "Peek"}
	rules := []Rule{{Kind: RuleClass, Pattern: "peek"}}

	if !ApplyFloatRules(&w, rules) {
		t.Fatalf("expected ApplyFloatRules to report a match")
	}
	if !w.Flags.Floating {
		t.Fatalf("expected window to be marked floating")
	}
}

func TestApplyFloatRulesLeavesUnmatchedWindowTiling(t *testing.T) {
	w := Window{Class: "kitty"}
	rules := []Rule{{Kind: RuleClass, Pattern: "peek"}}

	if ApplyFloatRules(&w, rules) {
		t.Fatalf("did not expect a match")
	}
	if w.Flags.Floating {
		t.Fatalf("did not expect window to be marked floating")
	}
}
