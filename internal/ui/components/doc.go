// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the presentational pieces of the freecom panel.

Components never talk to the network or the widget controller. They are fed
values with Set* methods and render with View().

# Components

ListHeader (header.go) - Company name banner above the conversation list.
ChatHeader (header.go) - Partner name, relative time and back button.
ConversationList (list.go) - Selectable list of conversations with previews.
Transcript (transcript.go) - Message bubbles, optionally rendered as markdown.
ToggleButton (toggle.go) - The always-visible open/close button.
ErrorLine (errorline.go) - One-line visible error with a dismiss hint.
*/
package components
