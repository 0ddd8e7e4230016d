package synthesis

// ExtractJSONObject locates the first balanced top-level JSON object in a
// free-text response. Models wrap their output in commentary or markdown
// fences often enough that going straight to json.Unmarshal is not an option.
// Returns the object substring and whether one was found.
func ExtractJSONObject(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start = i
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	// opened but never closed
	return "", false
}
