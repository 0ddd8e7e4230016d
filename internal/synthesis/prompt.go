package synthesis

import (
	"encoding/json"
	"fmt"

	"cruxy/internal/guild"
)

// snapshotDoc is the structural serialization of a snapshot embedded into
// prompts. Field order is fixed so identical snapshots render identically.
type snapshotDoc struct {
	Categories    []string `json:"categories"`
	TextChannels  []string `json:"text_channels"`
	VoiceChannels []string `json:"voice_channels"`
}

func renderSnapshot(snap guild.Snapshot) string {
	doc := snapshotDoc{
		Categories:    append([]string{}, snap.Categories...),
		TextChannels:  snap.ChannelNames(guild.KindText),
		VoiceChannels: snap.ChannelNames(guild.KindVoice),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		// a slice-of-strings struct cannot fail to marshal
		return "{}"
	}
	return string(data)
}

// BuildPrompt renders the server-build instruction for a theme. Identical
// (snapshot, theme) inputs render identical instructions.
func BuildPrompt(snap guild.Snapshot, theme string) string {
	return fmt.Sprintf(`You are a machine that generates a JSON object for building a chat server. Your response MUST be a single, raw, valid JSON object and nothing else. Do not include any commentary, explanations, or markdown formatting.

**CURRENT SERVER STRUCTURE:**
%s

**USER REQUEST:** "Build a server for %s"

**CRITICAL RULES:**
1.  Your entire response must be a single JSON object.
2.  The `+"`plan`"+` array MUST NOT be empty. A minimal plan is not acceptable.
3.  Channel names (`+"`name`"+` key) MUST be lowercase, use hyphens for spaces, and contain no special characters (e.g., "general-chat", "user-guides").
4.  Role names (`+"`roles`"+` key) can contain spaces and uppercase letters (e.g., "Team Captain").
5.  For `+"`permissions`"+` of type "restricted", the roles listed in the `+"`allow`"+` array MUST be present in the top-level `+"`roles`"+` array.

**JSON SCHEMA & LOGIC:**
- `+"`roles`"+`: (Optional) `+"`Array<String>`"+`. A list of role names to create.
- `+"`plan`"+`: (Required) `+"`Array<Object>`"+`. A non-empty list of tasks.
  - `+"`task`"+`: `+"`String`"+`. Must be "create_category" or "create_channel".
  - `+"`name`"+`: `+"`String`"+`. The name of the category or channel. Must follow naming rules.
  - `+"`category`"+`: `+"`String`"+`. (Required for "create_channel") The `+"`name`"+` of a previously defined "create_category" task.
  - `+"`channel_type`"+`: `+"`String`"+`. (Required for "create_channel") Must be "text" or "voice".
  - `+"`permissions`"+`: `+"`String`"+` ("public" or "read-only") OR `+"`Object`"+` (`+"`{\"type\": \"restricted\", \"allow\": Array<String>}`"+`).
  - `+"`topic`"+`: `+"`String`"+`. (Optional, for `+"`channel_type: \"text\"`"+`) A short description. `+"`voice`"+` channels MUST NOT have this key.
  - `+"`message`"+`: `+"`String`"+`. (Optional, for `+"`channel_type: \"text\"`"+`) A welcome message. `+"`voice`"+` channels MUST NOT have this key.

**VALIDATION:** Before generating your final response, mentally validate your output against all rules and the schema above.

Generate the JSON object now.
`, renderSnapshot(snap), theme)
}

// EditPrompt renders the server-edit instruction for a natural-language
// request against the current structure.
func EditPrompt(snap guild.Snapshot, request string) string {
	return fmt.Sprintf(`You are a server management API that translates natural language requests into a structured JSON plan for managing channels and categories. Your only output must be a raw JSON object.

**CURRENT SERVER STRUCTURE:**
%s

**USER REQUEST:** "%s"

**TASK:** Analyze the user's request and the current server structure. Generate a JSON plan with a list of actions under the "plan" key.

**VALID ACTIONS & SCHEMA:**
- `+"`{\"action\": \"rename_channel\", \"current_name\": \"old-name\", \"new_name\": \"new-name\"}`"+`
- `+"`{\"action\": \"delete_channel\", \"name\": \"channel-to-delete\"}`"+`
- `+"`{\"action\": \"create_channel\", \"name\": \"new-channel-name\", \"category\": \"Category Name\", \"type\": \"text_or_voice\"}`"+`
- `+"`{\"action\": \"rename_category\", \"current_name\": \"Old Name\", \"new_name\": \"New Name\"}`"+`
- `+"`{\"action\": \"delete_category\", \"name\": \"category-to-delete\"}`"+`

**CRITICAL RULE:**
For `+"`create_channel`"+`, the `+"`type`"+` key must be either "text" or "voice".

**EXAMPLE:**
If the request is "change general to lounge and delete the art-gallery channel", the output should be:
{
    "plan": [
        {"action": "rename_channel", "current_name": "general", "new_name": "lounge"},
        {"action": "delete_channel", "name": "art-gallery"}
    ]
}

Generate the JSON plan now.
`, renderSnapshot(snap), request)
}
