package profile

// DefaultProfileName is the active profile when the user has not chosen one.
const DefaultProfileName = "developer"

// builtinProfiles returns the built-in archetypes. These mirror the
// setup questionnaire: what the user works on, their background, what to
// focus on, and what to keep away from.
func builtinProfiles() []Profile {
	return []Profile{
		{
			Name:    "developer",
			BuiltIn: true,
			Criteria: []string{
				"Writing or reading code in an editor or IDE",
				"Terminal sessions, build output, and debugging",
				"Technical documentation, API references, and Stack Overflow",
				"Code review and issue trackers",
			},
			Blocklist: []string{"steam", "discord", "spotify"},
			Allowlist: []string{"code", "goland", "vim", "terminal", "wezterm", "alacritty"},
		},
		{
			Name:    "student",
			BuiltIn: true,
			Criteria: []string{
				"Lecture notes, slides, and course material",
				"Reading papers, textbooks, or an e-reader",
				"Writing assignments or working through problem sets",
				"Educational videos directly related to coursework",
			},
			Blocklist: []string{"steam", "discord"},
			Allowlist: []string{"anki", "zotero", "obsidian"},
		},
		{
			Name:    "writer",
			BuiltIn: true,
			Criteria: []string{
				"Drafting or editing prose in a word processor",
				"Research for the current piece",
				"Reference material, dictionaries, and style guides",
			},
			Blocklist: []string{"steam", "discord", "spotify"},
			Allowlist: []string{"scrivener", "obsidian", "typora"},
		},
	}
}
