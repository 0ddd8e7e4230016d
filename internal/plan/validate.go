package plan

import (
	"regexp"

	"cruxy/internal/guild"
)

// slugPattern is the channel-name constraint: lowercase hyphen-separated
// words, nothing else. Category and role names are not constrained.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether a channel name satisfies the naming constraint.
func ValidSlug(name string) bool {
	return slugPattern.MatchString(name)
}

// stringAt reads a string field from a decoded JSON object. The two booleans
// report presence and type correctness separately so callers can distinguish
// MissingField from WrongType.
func stringAt(obj map[string]any, key string) (val string, present, isString bool) {
	v, ok := obj[key]
	if !ok {
		return "", false, false
	}
	s, ok := v.(string)
	return s, true, ok
}

func stringList(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// DecodeBuildPlan turns raw parsed JSON into a typed BuildPlan, or reports
// every violated constraint. The checks run in priority order but none of
// them short-circuits the rest, so the caller sees the full picture at once.
func DecodeBuildPlan(raw any) (*BuildPlan, Violations) {
	var vs Violations

	obj, ok := raw.(map[string]any)
	if !ok {
		vs.add(-1, "", WrongType, "top-level value must be an object")
		return nil, vs
	}

	out := &BuildPlan{}

	if rolesRaw, present := obj["roles"]; present {
		roles, ok := stringList(rolesRaw)
		if !ok {
			vs.add(-1, "roles", WrongType, "roles must be an array of strings")
		} else {
			out.Roles = roles
		}
	}
	roleSet := make(map[string]bool, len(out.Roles))
	for _, r := range out.Roles {
		roleSet[r] = true
	}

	planRaw, present := obj["plan"]
	if !present {
		vs.add(-1, "plan", MissingField, "plan array is required")
		return nil, vs
	}
	taskList, ok := planRaw.([]any)
	if !ok {
		vs.add(-1, "plan", WrongType, "plan must be an array")
		return nil, vs
	}
	if len(taskList) == 0 {
		vs.add(-1, "plan", EmptyPlan, "plan must contain at least one task")
		return nil, vs
	}

	declaredCategories := make(map[string]bool)
	seenNames := map[TaskKind]map[string]bool{
		TaskCreateCategory: {},
		TaskCreateChannel:  {},
	}

	for i, taskRaw := range taskList {
		taskObj, ok := taskRaw.(map[string]any)
		if !ok {
			vs.add(i, "", WrongType, "task must be an object")
			continue
		}

		kindStr, present, isString := stringAt(taskObj, "task")
		if !present {
			vs.add(i, "task", MissingField, "task kind is required")
			continue
		}
		if !isString {
			vs.add(i, "task", WrongType, "task kind must be a string")
			continue
		}
		kind := TaskKind(kindStr)
		if kind != TaskCreateCategory && kind != TaskCreateChannel {
			vs.add(i, "task", UnknownTaskKind, "unknown task kind %q", kindStr)
			continue
		}

		name, present, isString := stringAt(taskObj, "name")
		if !present {
			vs.add(i, "name", MissingField, "name is required")
			continue
		}
		if !isString || name == "" {
			vs.add(i, "name", WrongType, "name must be a non-empty string")
			continue
		}

		if seenNames[kind][name] {
			vs.add(i, "name", DuplicateName, "%q is declared more than once", name)
		}
		seenNames[kind][name] = true

		task := Task{Kind: kind, Name: name}

		switch kind {
		case TaskCreateCategory:
			declaredCategories[name] = true

		case TaskCreateChannel:
			if !ValidSlug(name) {
				vs.add(i, "name", BadSlug, "channel name %q must be lowercase hyphen-separated words", name)
			}

			task.ChannelKind = guild.KindText
			if kindVal, present, isString := stringAt(taskObj, "channel_type"); present {
				switch {
				case !isString:
					vs.add(i, "channel_type", WrongType, "channel_type must be a string")
				case kindVal == string(guild.KindText) || kindVal == string(guild.KindVoice):
					task.ChannelKind = guild.ChannelKind(kindVal)
				default:
					vs.add(i, "channel_type", WrongType, "channel_type must be %q or %q", guild.KindText, guild.KindVoice)
				}
			}

			if cat, present, isString := stringAt(taskObj, "category"); present {
				if !isString {
					vs.add(i, "category", WrongType, "category must be a string")
				} else {
					task.Category = cat
					if !declaredCategories[cat] {
						vs.add(i, "category", DanglingCategoryRef, "category %q is not declared by an earlier create_category task", cat)
					}
				}
			}

			perm, permVs := decodePermissions(i, taskObj, roleSet)
			task.Permissions = perm
			vs = append(vs, permVs...)

			if topic, present, isString := stringAt(taskObj, "topic"); present {
				if !isString {
					vs.add(i, "topic", WrongType, "topic must be a string")
				} else {
					task.Topic = topic
				}
			}
			if msg, present, isString := stringAt(taskObj, "message"); present {
				if !isString {
					vs.add(i, "message", WrongType, "message must be a string")
				} else {
					task.Message = msg
				}
			}
		}

		out.Tasks = append(out.Tasks, task)
	}

	if len(vs) > 0 {
		return nil, vs
	}
	return out, nil
}

// decodePermissions parses the permissions field of a create_channel task.
// Absent means public.
func decodePermissions(task int, obj map[string]any, roleSet map[string]bool) (PermissionSpec, Violations) {
	var vs Violations

	permRaw, present := obj["permissions"]
	if !present {
		return PermissionSpec{Kind: PermissionPublic}, nil
	}

	switch v := permRaw.(type) {
	case string:
		switch PermissionKind(v) {
		case PermissionPublic:
			return PermissionSpec{Kind: PermissionPublic}, nil
		case PermissionReadOnly:
			return PermissionSpec{Kind: PermissionReadOnly}, nil
		default:
			vs.add(task, "permissions", WrongType, "unknown permission %q", v)
			return PermissionSpec{}, vs
		}

	case map[string]any:
		typ, _, isString := stringAt(v, "type")
		if !isString || typ != string(PermissionRestricted) {
			vs.add(task, "permissions", WrongType, "permission object must have type %q", PermissionRestricted)
			return PermissionSpec{}, vs
		}
		allowRaw, present := v["allow"]
		if !present {
			vs.add(task, "permissions", MissingField, "restricted permission requires an allow list")
			return PermissionSpec{}, vs
		}
		allow, ok := stringList(allowRaw)
		if !ok {
			vs.add(task, "permissions", WrongType, "allow must be an array of strings")
			return PermissionSpec{}, vs
		}
		for _, role := range allow {
			if !roleSet[role] {
				vs.add(task, "permissions", DanglingRoleRef, "role %q is not declared in the plan's roles list", role)
			}
		}
		if len(vs) > 0 {
			return PermissionSpec{}, vs
		}
		return PermissionSpec{Kind: PermissionRestricted, Allow: allow}, nil

	default:
		vs.add(task, "permissions", WrongType, "permissions must be a string or an object")
		return PermissionSpec{}, vs
	}
}

// DecodeEditPlan turns raw parsed JSON into a typed EditPlan. Category
// references must name categories that already exist in the snapshot; there
// is no intra-plan creation ordering for edits.
func DecodeEditPlan(raw any, snap guild.Snapshot) (*EditPlan, Violations) {
	var vs Violations

	obj, ok := raw.(map[string]any)
	if !ok {
		vs.add(-1, "", WrongType, "top-level value must be an object")
		return nil, vs
	}

	planRaw, present := obj["plan"]
	if !present {
		vs.add(-1, "plan", MissingField, "plan array is required")
		return nil, vs
	}
	actionList, ok := planRaw.([]any)
	if !ok {
		vs.add(-1, "plan", WrongType, "plan must be an array")
		return nil, vs
	}

	out := &EditPlan{}
	for i, actionRaw := range actionList {
		actionObj, ok := actionRaw.(map[string]any)
		if !ok {
			vs.add(i, "", WrongType, "action must be an object")
			continue
		}

		kindStr, present, isString := stringAt(actionObj, "action")
		if !present {
			vs.add(i, "action", MissingField, "action kind is required")
			continue
		}
		if !isString {
			vs.add(i, "action", WrongType, "action kind must be a string")
			continue
		}
		kind := ActionKind(kindStr)

		action := Action{Kind: kind}
		switch kind {
		case ActionRenameChannel, ActionRenameCategory:
			action.CurrentName = requireString(&vs, i, actionObj, "current_name")
			action.NewName = requireString(&vs, i, actionObj, "new_name")

		case ActionDeleteChannel, ActionDeleteCategory:
			action.Name = requireString(&vs, i, actionObj, "name")

		case ActionCreateChannel:
			action.Name = requireString(&vs, i, actionObj, "name")
			action.ChannelKind = guild.KindText
			// the synthesizer is prompted to emit "type" here; accept the
			// build-plan spelling as well since models mix them up
			for _, key := range []string{"type", "channel_type"} {
				if kindVal, present, isString := stringAt(actionObj, key); present {
					switch {
					case !isString:
						vs.add(i, key, WrongType, "%s must be a string", key)
					case kindVal == string(guild.KindText) || kindVal == string(guild.KindVoice):
						action.ChannelKind = guild.ChannelKind(kindVal)
					default:
						vs.add(i, key, WrongType, "%s must be %q or %q", key, guild.KindText, guild.KindVoice)
					}
					break
				}
			}
			if cat, present, isString := stringAt(actionObj, "category"); present {
				if !isString {
					vs.add(i, "category", WrongType, "category must be a string")
				} else {
					action.Category = cat
					if !snap.HasCategory(cat) {
						vs.add(i, "category", DanglingCategoryRef, "category %q does not exist", cat)
					}
				}
			}

		default:
			vs.add(i, "action", UnknownTaskKind, "unknown action kind %q", kindStr)
			continue
		}

		out.Actions = append(out.Actions, action)
	}

	if len(vs) > 0 {
		return nil, vs
	}
	return out, nil
}

func requireString(vs *Violations, task int, obj map[string]any, key string) string {
	val, present, isString := stringAt(obj, key)
	if !present {
		vs.add(task, key, MissingField, "%s is required", key)
		return ""
	}
	if !isString || val == "" {
		vs.add(task, key, WrongType, "%s must be a non-empty string", key)
		return ""
	}
	return val
}
