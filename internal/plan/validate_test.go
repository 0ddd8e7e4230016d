package plan

import (
	"encoding/json"
	"testing"

	"cruxy/internal/guild"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return raw
}

func hasCode(vs Violations, code ViolationCode) bool {
	for _, v := range vs {
		if v.Code == code {
			return true
		}
	}
	return false
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"general-chat", true},
		{"general", true},
		{"room-2", true},
		{"General Chat", false},
		{"general_chat", false},
		{"general chat!", false},
		{"-general", false},
		{"general-", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidSlug(tt.name); got != tt.ok {
			t.Errorf("ValidSlug(%q) = %v, want %v", tt.name, got, tt.ok)
		}
	}
}

func TestDecodeBuildPlan_Valid(t *testing.T) {
	raw := decode(t, `{
		"roles": ["Fan", "Moderator"],
		"plan": [
			{"task": "create_category", "name": "Main"},
			{"task": "create_channel", "name": "chat", "category": "Main", "channel_type": "text", "permissions": "public", "topic": "hang out", "message": "welcome!"},
			{"task": "create_channel", "name": "mod-only", "category": "Main", "channel_type": "text", "permissions": {"type": "restricted", "allow": ["Moderator"]}},
			{"task": "create_channel", "name": "voice-lounge", "category": "Main", "channel_type": "voice"}
		]
	}`)

	p, vs := DecodeBuildPlan(raw)
	if vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if len(p.Roles) != 2 || len(p.Tasks) != 4 {
		t.Fatalf("got %d roles, %d tasks", len(p.Roles), len(p.Tasks))
	}
	chat := p.Tasks[1]
	if chat.Kind != TaskCreateChannel || chat.Category != "Main" || chat.Topic != "hang out" || chat.Message != "welcome!" {
		t.Errorf("chat task decoded wrong: %+v", chat)
	}
	if chat.Permissions.Kind != PermissionPublic {
		t.Errorf("chat permissions = %v, want public", chat.Permissions.Kind)
	}
	restricted := p.Tasks[2].Permissions
	if restricted.Kind != PermissionRestricted || len(restricted.Allow) != 1 || restricted.Allow[0] != "Moderator" {
		t.Errorf("restricted permissions decoded wrong: %+v", restricted)
	}
	if p.Tasks[3].ChannelKind != guild.KindVoice {
		t.Errorf("voice channel kind = %v", p.Tasks[3].ChannelKind)
	}
}

func TestDecodeBuildPlan_EmptyPlanRejected(t *testing.T) {
	// an empty plan is a synthesis failure, never a valid no-op
	p, vs := DecodeBuildPlan(decode(t, `{"roles": [], "plan": []}`))
	if p != nil {
		t.Fatal("empty plan must be rejected")
	}
	if !hasCode(vs, EmptyPlan) {
		t.Fatalf("want EmptyPlan, got %v", vs)
	}
}

func TestDecodeBuildPlan_MissingPlan(t *testing.T) {
	_, vs := DecodeBuildPlan(decode(t, `{"roles": ["Fan"]}`))
	if !hasCode(vs, MissingField) {
		t.Fatalf("want MissingField, got %v", vs)
	}
}

func TestDecodeBuildPlan_BadSlug(t *testing.T) {
	for _, name := range []string{"General Chat", "general_chat", "general chat!"} {
		raw := decode(t, `{"plan": [{"task": "create_channel", "name": "`+name+`"}]}`)
		_, vs := DecodeBuildPlan(raw)
		if !hasCode(vs, BadSlug) {
			t.Errorf("name %q: want BadSlug, got %v", name, vs)
		}
	}
}

func TestDecodeBuildPlan_DanglingRoleRef(t *testing.T) {
	raw := decode(t, `{
		"roles": ["Fan"],
		"plan": [
			{"task": "create_category", "name": "Main"},
			{"task": "create_channel", "name": "vip", "category": "Main", "permissions": {"type": "restricted", "allow": ["VIP"]}}
		]
	}`)
	_, vs := DecodeBuildPlan(raw)
	if !hasCode(vs, DanglingRoleRef) {
		t.Fatalf("want DanglingRoleRef, got %v", vs)
	}
	for _, v := range vs {
		if v.Code == DanglingRoleRef && v.Task != 1 {
			t.Errorf("violation must identify task 1, got task %d", v.Task)
		}
	}
}

func TestDecodeBuildPlan_DanglingCategoryRef(t *testing.T) {
	// a channel may only reference a category declared earlier in the plan
	raw := decode(t, `{
		"plan": [
			{"task": "create_channel", "name": "chat", "category": "Main"},
			{"task": "create_category", "name": "Main"}
		]
	}`)
	_, vs := DecodeBuildPlan(raw)
	if !hasCode(vs, DanglingCategoryRef) {
		t.Fatalf("want DanglingCategoryRef, got %v", vs)
	}
}

func TestDecodeBuildPlan_UnknownTaskKind(t *testing.T) {
	_, vs := DecodeBuildPlan(decode(t, `{"plan": [{"task": "create_webhook", "name": "x"}]}`))
	if !hasCode(vs, UnknownTaskKind) {
		t.Fatalf("want UnknownTaskKind, got %v", vs)
	}
}

func TestDecodeBuildPlan_DuplicateName(t *testing.T) {
	raw := decode(t, `{
		"plan": [
			{"task": "create_category", "name": "Main"},
			{"task": "create_channel", "name": "chat", "category": "Main"},
			{"task": "create_channel", "name": "chat", "category": "Main"}
		]
	}`)
	_, vs := DecodeBuildPlan(raw)
	if !hasCode(vs, DuplicateName) {
		t.Fatalf("want DuplicateName, got %v", vs)
	}
}

func TestDecodeBuildPlan_CollectsAllViolations(t *testing.T) {
	// the validator reports every failure, not just the first
	raw := decode(t, `{
		"plan": [
			{"task": "create_channel", "name": "Bad Name", "category": "Nowhere"},
			{"task": "explode", "name": "x"},
			{"task": "create_channel", "name": "ok-name", "permissions": {"type": "restricted", "allow": ["Ghost"]}}
		]
	}`)
	_, vs := DecodeBuildPlan(raw)
	for _, code := range []ViolationCode{BadSlug, DanglingCategoryRef, UnknownTaskKind, DanglingRoleRef} {
		if !hasCode(vs, code) {
			t.Errorf("missing %s in %v", code, vs)
		}
	}
}

func TestDecodeBuildPlan_TopLevelShape(t *testing.T) {
	for _, src := range []string{`[]`, `"plan"`, `42`} {
		p, vs := DecodeBuildPlan(decode(t, src))
		if p != nil || !hasCode(vs, WrongType) {
			t.Errorf("source %s: want WrongType rejection, got plan=%v vs=%v", src, p, vs)
		}
	}
}

func TestDecodeEditPlan_Valid(t *testing.T) {
	snap := guild.Snapshot{Categories: []string{"Main"}}
	raw := decode(t, `{
		"plan": [
			{"action": "rename_channel", "current_name": "general", "new_name": "lounge"},
			{"action": "delete_channel", "name": "art-gallery"},
			{"action": "create_channel", "name": "news", "category": "Main", "type": "text"},
			{"action": "rename_category", "current_name": "Main", "new_name": "Hub"},
			{"action": "delete_category", "name": "Old"}
		]
	}`)
	p, vs := DecodeEditPlan(raw, snap)
	if vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if len(p.Actions) != 5 {
		t.Fatalf("got %d actions", len(p.Actions))
	}
	if p.Actions[0].CurrentName != "general" || p.Actions[0].NewName != "lounge" {
		t.Errorf("rename decoded wrong: %+v", p.Actions[0])
	}
	if p.Actions[2].ChannelKind != guild.KindText {
		t.Errorf("create kind = %v", p.Actions[2].ChannelKind)
	}
}

func TestDecodeEditPlan_EmptyIsLegal(t *testing.T) {
	p, vs := DecodeEditPlan(decode(t, `{"plan": []}`), guild.Snapshot{})
	if vs != nil || p == nil {
		t.Fatalf("empty edit plan must be accepted, got %v", vs)
	}
	if len(p.Actions) != 0 {
		t.Fatalf("got %d actions", len(p.Actions))
	}
}

func TestDecodeEditPlan_CategoryMustExist(t *testing.T) {
	raw := decode(t, `{"plan": [{"action": "create_channel", "name": "news", "category": "Ghost"}]}`)
	_, vs := DecodeEditPlan(raw, guild.Snapshot{Categories: []string{"Main"}})
	if !hasCode(vs, DanglingCategoryRef) {
		t.Fatalf("want DanglingCategoryRef, got %v", vs)
	}
}

func TestDecodeEditPlan_AcceptsBuildTypeSpelling(t *testing.T) {
	raw := decode(t, `{"plan": [{"action": "create_channel", "name": "hangout", "channel_type": "voice"}]}`)
	p, vs := DecodeEditPlan(raw, guild.Snapshot{})
	if vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if p.Actions[0].ChannelKind != guild.KindVoice {
		t.Errorf("kind = %v, want voice", p.Actions[0].ChannelKind)
	}
}
