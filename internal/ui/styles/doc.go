// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the showcase-chat TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. Terminal capability detection goes through termenv.

# Color System (colors.go)

  - Purple - Assistant messages and the active conversation
  - Cyan - Brand color and user highlights
  - Emerald - Success states
  - Amber - Pending work ("Processing...", "Typing...")
  - Rose - Errors and the delete confirmation

Status indicators are ASCII ([OK], [X], [!], [i]) so that state is never
conveyed by color alone.

# Theme (theme.go)

	theme := styles.NewTheme()
	theme.SetSize(width, height)
	header := theme.Header.Render("AI chat")

# Spinners (animations.go)

TypingSpinner is the frame set shown next to the "Typing..." indicator.
*/
package styles
