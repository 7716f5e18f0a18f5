package classifier

import (
	"fmt"
	"strings"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
)

// buildPrompt renders the profile criteria and capture context into the
// instruction sent to the model. The reply is constrained to a one-word
// label so parsing stays trivial.
func buildPrompt(capture model.Capture, profile model.ProfileSnapshot) string {
	var b strings.Builder

	b.WriteString("You are judging whether a computer user is currently productive.\n\n")

	if len(profile.Criteria) > 0 {
		b.WriteString("The user considers the following activities productive:\n")
		for _, c := range profile.Criteria {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if capture.WindowTitle != "" {
		fmt.Fprintf(&b, "The foreground window title is %q.\n", capture.WindowTitle)
	}
	if capture.Process != "" {
		fmt.Fprintf(&b, "The foreground process is %q.\n", capture.Process)
	}
	if len(capture.Payload) > 0 {
		b.WriteString("A screenshot of the screen is attached.\n")
	}

	b.WriteString("\nIMPORTANT: Searching the web is usually relevant to the user's work. ")
	b.WriteString("Social media, video feeds, and games are not.\n\n")
	b.WriteString(`Is the user distracted? Answer with one word: "Distracted" or "Normal".`)

	return b.String()
}
