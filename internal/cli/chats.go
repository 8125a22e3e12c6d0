// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats.go - list, show and delete.

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
	"github.com/jeranaias/showcase-chat/internal/util"
)

// =============================================================================
// LIST
// =============================================================================

// HandleList prints the user's conversations in backend order.
func (a *App) HandleList(ctx context.Context) error {
	client, err := a.Client()
	if err != nil {
		return err
	}
	convs, err := client.ListConversations(ctx)
	if err != nil {
		return requestFailed("list", "Failed to load chat history", err)
	}

	if a.Args.JSON {
		return a.printJSON("list", convs)
	}
	if len(convs) == 0 {
		a.hint(`No chats yet. Start one with: showcase-chat ask "Hello"`)
		return nil
	}

	idWidth := util.StringWidth("ID")
	for _, c := range convs {
		idWidth = max(idWidth, util.StringWidth(c.ID.String()))
	}
	titleWidth := max(a.Width-idWidth-2, 10)

	if !a.Args.Quiet {
		fmt.Fprintf(a.Stdout, "%s  %s\n", TitleStyle.Render(util.PadWidth("ID", idWidth)), TitleStyle.Render("TITLE"))
	}
	for _, c := range convs {
		fmt.Fprintf(a.Stdout, "%s  %s\n",
			util.PadWidth(c.ID.String(), idWidth),
			util.TruncateWidth(c.DisplayTitle(), titleWidth))
	}
	return nil
}

// =============================================================================
// SHOW
// =============================================================================

// HandleShow prints a conversation's history, paired into turns.
func (a *App) HandleShow(ctx context.Context) error {
	client, err := a.Client()
	if err != nil {
		return err
	}
	id := model.ID(a.Args.ChatID)
	msgs, err := client.GetMessages(ctx, id)
	if err != nil {
		return requestFailed("show", "Failed to load messages", err)
	}

	if a.Args.JSON {
		return a.printJSON("show", model.SortByID(msgs))
	}
	a.printHistory(msgs)
	return nil
}

func (a *App) printHistory(msgs []model.Message) {
	if len(msgs) == 0 {
		a.hint("This chat has no messages yet.")
		return
	}
	for i, turn := range model.PairHistory(msgs) {
		if i > 0 && a.Pretty {
			fmt.Fprintln(a.Stdout, RenderSeparator(min(a.Width, 60)))
		}
		for _, msg := range turn.Messages() {
			a.printMessage(msg)
		}
	}
}

// =============================================================================
// DELETE
// =============================================================================

// HandleDelete removes a conversation after confirmation.
func (a *App) HandleDelete(ctx context.Context) error {
	client, err := a.Client()
	if err != nil {
		return err
	}
	id := model.ID(a.Args.ChatID)

	details := [][2]string{{"Chat", id.String()}}
	if a.Interactive && !a.Args.Yes && !a.Args.JSON {
		if title, ok := lookupTitle(ctx, client, id); ok {
			details = append(details, [2]string{"Title", title})
		}
	}

	confirmed, err := RequireConfirmation(fmt.Sprintf("delete chat %s", id), a.confirmOptions(details...))
	if err != nil {
		return err
	}
	if !confirmed {
		a.hint("Cancelled.")
		return nil
	}

	if err := client.DeleteConversation(ctx, id); err != nil {
		return requestFailed("delete", "Failed to delete chat", err)
	}
	if a.Args.JSON {
		return a.printJSON("delete", map[string]interface{}{"deleted": id})
	}
	a.ok("Deleted chat %s", id)
	return nil
}

// lookupTitle finds a conversation's title in the list. Failures are
// treated as "unknown".
func lookupTitle(ctx context.Context, client *transport.Client, id model.ID) (string, bool) {
	convs, err := client.ListConversations(ctx)
	if err != nil {
		return "", false
	}
	if i := model.IndexOf(convs, id); i >= 0 {
		return convs[i].DisplayTitle(), true
	}
	return "", false
}
